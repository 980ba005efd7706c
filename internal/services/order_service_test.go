// internal/services/order_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/storefront/storefront-backend/internal/models"
)

type OrderServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *OrderService
	user    *models.User
	product *models.Product
}

func (suite *OrderServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.service = NewOrderService(suite.db)
	suite.user = createTestUser(suite.T(), suite.db, "orders@example.com", false)
	suite.product = createTestProduct(suite.T(), suite.db, "Webcam", 80, 20)
}

func (suite *OrderServiceTestSuite) lineItems(qty int) []models.OrderItem {
	return []models.OrderItem{{
		ProductID: suite.product.ID.String(),
		Name:      suite.product.Name,
		Qty:       qty,
		Price:     suite.product.Price,
	}}
}

func (suite *OrderServiceTestSuite) TestCreateUnpaidOrder() {
	order, err := suite.service.Create(nil, suite.user.ID, suite.lineItems(2), validAddress(), "cash_on_delivery", 160, nil)
	suite.NoError(err)
	suite.False(order.IsPaid)
	suite.Nil(order.PaidAt)
	suite.Len(order.Items, 1)
	suite.Equal(suite.product.ID.String(), order.Items[0].ProductID)
}

func (suite *OrderServiceTestSuite) TestCreatePaidOrderFromOutcome() {
	outcome := &PaymentOutcome{PaymentID: "pay_123", Status: models.PaymentStatusSucceeded}

	order, err := suite.service.Create(nil, suite.user.ID, suite.lineItems(1), validAddress(), "card", 80, outcome)
	suite.NoError(err)
	suite.True(order.IsPaid)
	suite.NotNil(order.PaidAt)
	suite.Equal("pay_123", order.PaymentID)
	suite.Equal(models.PaymentStatusSucceeded, order.PaymentStatus)
}

func (suite *OrderServiceTestSuite) TestCreateRejectsEmptyItems() {
	_, err := suite.service.Create(nil, suite.user.ID, nil, validAddress(), "card", 0, nil)
	suite.ErrorIs(err, ErrValidation)
}

func (suite *OrderServiceTestSuite) TestListForUserReturnsOwnOrdersOldestFirst() {
	first, err := suite.service.Create(nil, suite.user.ID, suite.lineItems(1), validAddress(), "card", 80, nil)
	suite.Require().NoError(err)
	second, err := suite.service.Create(nil, suite.user.ID, suite.lineItems(2), validAddress(), "card", 160, nil)
	suite.Require().NoError(err)

	other := createTestUser(suite.T(), suite.db, "other@example.com", false)
	_, err = suite.service.Create(nil, other.ID, suite.lineItems(1), validAddress(), "card", 80, nil)
	suite.Require().NoError(err)

	orders, err := suite.service.ListForUser(suite.user.ID)
	suite.NoError(err)
	suite.Len(orders, 2)
	suite.Equal(first.ID, orders[0].ID)
	suite.Equal(second.ID, orders[1].ID)
}

func (suite *OrderServiceTestSuite) TestGetEnforcesOwnership() {
	order, err := suite.service.Create(nil, suite.user.ID, suite.lineItems(1), validAddress(), "card", 80, nil)
	suite.Require().NoError(err)

	other := createTestUser(suite.T(), suite.db, "other@example.com", false)

	_, err = suite.service.GetByID(order.ID, other.ID, false)
	suite.ErrorIs(err, ErrForbidden)

	// Admin sees everything
	fetched, err := suite.service.GetByID(order.ID, other.ID, true)
	suite.NoError(err)
	suite.Equal(order.ID, fetched.ID)
}

func (suite *OrderServiceTestSuite) TestGetUnknownOrderNotFound() {
	_, err := suite.service.GetByID(uuid.New(), suite.user.ID, false)
	suite.ErrorIs(err, ErrNotFound)
}

func (suite *OrderServiceTestSuite) TestSetDelivered() {
	order, err := suite.service.Create(nil, suite.user.ID, suite.lineItems(1), validAddress(), "card", 80, nil)
	suite.Require().NoError(err)

	delivered, err := suite.service.SetDelivered(order.ID, true)
	suite.NoError(err)
	suite.True(delivered.IsDelivered)
	suite.NotNil(delivered.DeliveredAt)

	reverted, err := suite.service.SetDelivered(order.ID, false)
	suite.NoError(err)
	suite.False(reverted.IsDelivered)
	suite.Nil(reverted.DeliveredAt)
}

func TestOrderServiceSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}
