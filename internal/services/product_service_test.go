// internal/services/product_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/storefront/storefront-backend/internal/models"
	"github.com/storefront/storefront-backend/internal/utils"
)

type ProductServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *ProductService
	user    *models.User
	product *models.Product
}

func (suite *ProductServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.service = NewProductService(suite.db)
	suite.user = createTestUser(suite.T(), suite.db, "buyer@example.com", false)
	suite.product = createTestProduct(suite.T(), suite.db, "Monitor", 150, 5)
}

func (suite *ProductServiceTestSuite) TestCreateAndGet() {
	created, err := suite.service.Create(&CreateProductRequest{
		Name:         "Mouse",
		Description:  "wireless",
		Category:     "peripherals",
		Price:        25,
		CountInStock: 30,
	})
	suite.NoError(err)
	suite.NotEqual(uuid.Nil, created.ID)

	fetched, err := suite.service.GetByID(created.ID)
	suite.NoError(err)
	suite.Equal("Mouse", fetched.Name)
	suite.Equal(25.0, fetched.Price)
}

func (suite *ProductServiceTestSuite) TestGetUnknownProductNotFound() {
	_, err := suite.service.GetByID(uuid.New())
	suite.ErrorIs(err, ErrNotFound)
}

func (suite *ProductServiceTestSuite) TestPartialUpdate() {
	newPrice := 175.0
	updated, err := suite.service.Update(suite.product.ID, &UpdateProductRequest{
		Price: &newPrice,
	})
	suite.NoError(err)
	suite.Equal(175.0, updated.Price)
	suite.Equal("Monitor", updated.Name)
}

func (suite *ProductServiceTestSuite) TestListFiltersByCategory() {
	createTestProduct(suite.T(), suite.db, "Desk", 300, 2)
	suite.db.Model(&models.Product{}).Where("name = ?", "Desk").Update("category", "furniture")

	params := utils.PaginationParams{Page: 1, Limit: 10, Category: "furniture"}
	products, total, err := suite.service.List(params)
	suite.NoError(err)
	suite.Equal(int64(1), total)
	suite.Len(products, 1)
	suite.Equal("Desk", products[0].Name)
}

func (suite *ProductServiceTestSuite) TestDeleteUnreferencedProduct() {
	suite.NoError(suite.service.Delete(suite.product.ID))

	_, err := suite.service.GetByID(suite.product.ID)
	suite.ErrorIs(err, ErrNotFound)
}

func (suite *ProductServiceTestSuite) TestDeleteReferencedProductConflicts() {
	createPaidOrder(suite.T(), suite.db, suite.user.ID, suite.product.ID, 1, 150)

	err := suite.service.Delete(suite.product.ID)
	suite.ErrorIs(err, ErrConflict)

	// Product survives the refused delete
	_, err = suite.service.GetByID(suite.product.ID)
	suite.NoError(err)
}

func (suite *ProductServiceTestSuite) TestReviewRequiresPurchase() {
	err := suite.service.AddReview(suite.product.ID, suite.user.ID, suite.user.Name, &AddReviewRequest{
		Rating: 5, Comment: "great",
	})
	suite.ErrorIs(err, ErrForbidden)
}

func (suite *ProductServiceTestSuite) TestReviewAfterPaidPurchase() {
	createPaidOrder(suite.T(), suite.db, suite.user.ID, suite.product.ID, 1, 150)

	err := suite.service.AddReview(suite.product.ID, suite.user.ID, suite.user.Name, &AddReviewRequest{
		Rating: 4, Comment: "solid",
	})
	suite.NoError(err)

	product, err := suite.service.GetByID(suite.product.ID)
	suite.NoError(err)
	suite.Equal(1, product.NumReviews)
	suite.Equal(4.0, product.Rating)
	suite.Len(product.Reviews, 1)
}

func (suite *ProductServiceTestSuite) TestDuplicateReviewConflicts() {
	createPaidOrder(suite.T(), suite.db, suite.user.ID, suite.product.ID, 1, 150)

	err := suite.service.AddReview(suite.product.ID, suite.user.ID, suite.user.Name, &AddReviewRequest{
		Rating: 4, Comment: "solid",
	})
	suite.NoError(err)

	err = suite.service.AddReview(suite.product.ID, suite.user.ID, suite.user.Name, &AddReviewRequest{
		Rating: 1, Comment: "changed my mind",
	})
	suite.ErrorIs(err, ErrConflict)

	product, err := suite.service.GetByID(suite.product.ID)
	suite.NoError(err)
	suite.Equal(1, product.NumReviews)
	suite.Equal(4.0, product.Rating)
}

func (suite *ProductServiceTestSuite) TestRatingAveragesAcrossReviewers() {
	second := createTestUser(suite.T(), suite.db, "second@example.com", false)
	createPaidOrder(suite.T(), suite.db, suite.user.ID, suite.product.ID, 1, 150)
	createPaidOrder(suite.T(), suite.db, second.ID, suite.product.ID, 1, 150)

	suite.NoError(suite.service.AddReview(suite.product.ID, suite.user.ID, suite.user.Name, &AddReviewRequest{
		Rating: 5, Comment: "great",
	}))
	suite.NoError(suite.service.AddReview(suite.product.ID, second.ID, second.Name, &AddReviewRequest{
		Rating: 2, Comment: "meh",
	}))

	product, err := suite.service.GetByID(suite.product.ID)
	suite.NoError(err)
	suite.Equal(2, product.NumReviews)
	suite.Equal(3.5, product.Rating)
}

func (suite *ProductServiceTestSuite) TestUnpaidOrderDoesNotUnlockReview() {
	order := &models.Order{
		UserID:        suite.user.ID,
		PaymentMethod: "card",
		TotalPrice:    150,
	}
	suite.NoError(suite.db.Create(order).Error)
	suite.NoError(suite.db.Create(&models.OrderItem{
		OrderID:   order.ID,
		ProductID: suite.product.ID.String(),
		Name:      suite.product.Name,
		Qty:       1,
		Price:     150,
	}).Error)

	err := suite.service.AddReview(suite.product.ID, suite.user.ID, suite.user.Name, &AddReviewRequest{
		Rating: 5, Comment: "great",
	})
	suite.ErrorIs(err, ErrForbidden)
}

func (suite *ProductServiceTestSuite) TestReviewRatingBounds() {
	createPaidOrder(suite.T(), suite.db, suite.user.ID, suite.product.ID, 1, 150)

	err := suite.service.AddReview(suite.product.ID, suite.user.ID, suite.user.Name, &AddReviewRequest{
		Rating: 6, Comment: "too good",
	})
	suite.ErrorIs(err, ErrValidation)
}

func (suite *ProductServiceTestSuite) TestReviewUniquenessEnforcedByIndex() {
	review := models.Review{
		ProductID: suite.product.ID,
		UserID:    suite.user.ID,
		Name:      suite.user.Name,
		Rating:    5,
	}
	suite.Require().NoError(suite.db.Create(&review).Error)

	// A second row for the same (product, user) pair is rejected by
	// the unique index even when inserted outside the service
	duplicate := models.Review{
		ProductID: suite.product.ID,
		UserID:    suite.user.ID,
		Name:      suite.user.Name,
		Rating:    1,
	}
	suite.Error(suite.db.Create(&duplicate).Error)
}

func TestProductServiceSuite(t *testing.T) {
	suite.Run(t, new(ProductServiceTestSuite))
}
