// internal/services/cart_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/storefront/storefront-backend/internal/models"
)

type CartServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *CartService
	user    *models.User
	product *models.Product
}

func (suite *CartServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.service = NewCartService(suite.db)
	suite.user = createTestUser(suite.T(), suite.db, "cart@example.com", false)
	suite.product = createTestProduct(suite.T(), suite.db, "Keyboard", 50, 10)
}

func (suite *CartServiceTestSuite) TestGetReturnsEmptyCartForNewUser() {
	cart, err := suite.service.Get(suite.user.ID)
	suite.NoError(err)
	suite.Empty(cart.Items)
	suite.Equal(0.0, cart.Total())
}

func (suite *CartServiceTestSuite) TestAddItemStoresCatalogPrice() {
	cart, err := suite.service.UpsertItem(suite.user.ID, &UpsertItemRequest{
		ProductID: suite.product.ID,
		Qty:       2,
		Price:     50,
	})
	suite.NoError(err)
	suite.Len(cart.Items, 1)
	suite.Equal(2, cart.Items[0].Qty)
	suite.Equal(50.0, cart.Items[0].Price)
	suite.Equal(100.0, cart.Total())
}

func (suite *CartServiceTestSuite) TestAddSameProductOverwritesQuantity() {
	_, err := suite.service.UpsertItem(suite.user.ID, &UpsertItemRequest{
		ProductID: suite.product.ID, Qty: 2, Price: 50,
	})
	suite.NoError(err)

	cart, err := suite.service.UpsertItem(suite.user.ID, &UpsertItemRequest{
		ProductID: suite.product.ID, Qty: 5, Price: 50,
	})
	suite.NoError(err)

	// Overwrite, not accumulate
	suite.Len(cart.Items, 1)
	suite.Equal(5, cart.Items[0].Qty)
}

func (suite *CartServiceTestSuite) TestAddRejectsMismatchedPrice() {
	_, err := suite.service.UpsertItem(suite.user.ID, &UpsertItemRequest{
		ProductID: suite.product.ID, Qty: 1, Price: 1,
	})
	suite.ErrorIs(err, ErrValidation)
}

func (suite *CartServiceTestSuite) TestAddRejectsUnknownProduct() {
	_, err := suite.service.UpsertItem(suite.user.ID, &UpsertItemRequest{
		ProductID: uuid.New(), Qty: 1, Price: 50,
	})
	suite.ErrorIs(err, ErrNotFound)
}

func (suite *CartServiceTestSuite) TestAddRejectsNonPositiveQty() {
	_, err := suite.service.UpsertItem(suite.user.ID, &UpsertItemRequest{
		ProductID: suite.product.ID, Qty: 0, Price: 50,
	})
	suite.ErrorIs(err, ErrValidation)
}

func (suite *CartServiceTestSuite) TestRemoveAbsentItemIsNoOp() {
	_, err := suite.service.UpsertItem(suite.user.ID, &UpsertItemRequest{
		ProductID: suite.product.ID, Qty: 2, Price: 50,
	})
	suite.NoError(err)

	cart, err := suite.service.RemoveItem(suite.user.ID, uuid.New())
	suite.NoError(err)
	suite.Len(cart.Items, 1)
}

func (suite *CartServiceTestSuite) TestRemoveThenReAdd() {
	_, err := suite.service.UpsertItem(suite.user.ID, &UpsertItemRequest{
		ProductID: suite.product.ID, Qty: 2, Price: 50,
	})
	suite.NoError(err)

	cart, err := suite.service.RemoveItem(suite.user.ID, suite.product.ID)
	suite.NoError(err)
	suite.Empty(cart.Items)

	cart, err = suite.service.UpsertItem(suite.user.ID, &UpsertItemRequest{
		ProductID: suite.product.ID, Qty: 3, Price: 50,
	})
	suite.NoError(err)
	suite.Len(cart.Items, 1)
	suite.Equal(3, cart.Items[0].Qty)
}

func (suite *CartServiceTestSuite) TestClearIsIdempotent() {
	_, err := suite.service.UpsertItem(suite.user.ID, &UpsertItemRequest{
		ProductID: suite.product.ID, Qty: 2, Price: 50,
	})
	suite.NoError(err)

	suite.NoError(suite.service.Clear(suite.user.ID))
	suite.NoError(suite.service.Clear(suite.user.ID))

	cart, err := suite.service.Get(suite.user.ID)
	suite.NoError(err)
	suite.Empty(cart.Items)
}

func (suite *CartServiceTestSuite) TestCartsAreIsolatedPerUser() {
	other := createTestUser(suite.T(), suite.db, "other@example.com", false)

	_, err := suite.service.UpsertItem(suite.user.ID, &UpsertItemRequest{
		ProductID: suite.product.ID, Qty: 2, Price: 50,
	})
	suite.NoError(err)

	cart, err := suite.service.Get(other.ID)
	suite.NoError(err)
	suite.Empty(cart.Items)
}

func TestCartServiceSuite(t *testing.T) {
	suite.Run(t, new(CartServiceTestSuite))
}
