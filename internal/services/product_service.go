// internal/services/product_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/storefront-backend/internal/models"
	"github.com/storefront/storefront-backend/internal/utils"
)

type ProductService struct {
	db *gorm.DB
}

type CreateProductRequest struct {
	Name         string  `json:"name" validate:"required,min=2,max=255"`
	Description  string  `json:"description"`
	Category     string  `json:"category"`
	Price        float64 `json:"price" validate:"required,gt=0"`
	Image        string  `json:"image"`
	CountInStock int     `json:"count_in_stock" validate:"min=0"`
}

type UpdateProductRequest struct {
	Name         string   `json:"name,omitempty" validate:"omitempty,min=2,max=255"`
	Description  *string  `json:"description,omitempty"`
	Category     *string  `json:"category,omitempty"`
	Price        *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	Image        *string  `json:"image,omitempty"`
	CountInStock *int     `json:"count_in_stock,omitempty" validate:"omitempty,min=0"`
}

type AddReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

func (s *ProductService) List(params utils.PaginationParams) ([]models.Product, int64, error) {
	query := s.db.Model(&models.Product{})

	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	allowedSortFields := []string{"created_at", "name", "price", "rating"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}

func (s *ProductService) GetByID(id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.Preload("Reviews").Where("id = ?", id).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product", ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &product, nil
}

func (s *ProductService) Create(req *CreateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	product := &models.Product{
		Name:         req.Name,
		Description:  req.Description,
		Category:     req.Category,
		Price:        req.Price,
		Image:        req.Image,
		CountInStock: req.CountInStock,
	}

	if err := s.db.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

func (s *ProductService) Update(id uuid.UUID, req *UpdateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	product, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Image != nil {
		updates["image"] = *req.Image
	}
	if req.CountInStock != nil {
		updates["count_in_stock"] = *req.CountInStock
	}

	if len(updates) > 0 {
		if err := s.db.Model(product).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update product: %w", err)
		}
	}

	return s.GetByID(id)
}

// Delete refuses to remove a product that historical orders still
// reference; otherwise the product is soft-deleted, so dangling cart
// entries resolve to "not found" rather than pointing nowhere.
func (s *ProductService) Delete(id uuid.UUID) error {
	product, err := s.GetByID(id)
	if err != nil {
		return err
	}

	var refs int64
	if err := s.db.Model(&models.OrderItem{}).
		Where("product_id = ?", id.String()).
		Count(&refs).Error; err != nil {
		return fmt.Errorf("failed to check order references: %w", err)
	}
	if refs > 0 {
		return fmt.Errorf("%w: product is referenced by existing orders", ErrConflict)
	}

	if err := s.db.Delete(product).Error; err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

// AddReview appends a purchase-gated review and recomputes the
// product's aggregates from the full review list, not incrementally.
func (s *ProductService) AddReview(productID, userID uuid.UUID, userName string, req *AddReviewRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Where("id = ?", productID).First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: product", ErrNotFound)
			}
			return fmt.Errorf("database error: %w", err)
		}

		var existing int64
		if err := tx.Model(&models.Review{}).
			Where("product_id = ? AND user_id = ?", productID, userID).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("database error: %w", err)
		}
		if existing > 0 {
			return fmt.Errorf("%w: product already reviewed by this user", ErrConflict)
		}

		// Review gate: at least one paid order containing this product
		var purchased int64
		if err := tx.Model(&models.Order{}).
			Joins("JOIN order_items ON order_items.order_id = orders.id").
			Where("orders.user_id = ? AND orders.is_paid = ? AND order_items.product_id = ?",
				userID, true, productID.String()).
			Count(&purchased).Error; err != nil {
			return fmt.Errorf("database error: %w", err)
		}
		if purchased == 0 {
			return fmt.Errorf("%w: you can only review products you have purchased", ErrForbidden)
		}

		review := models.Review{
			ProductID: productID,
			UserID:    userID,
			Name:      userName,
			Rating:    req.Rating,
			Comment:   req.Comment,
		}
		if err := tx.Create(&review).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: product already reviewed by this user", ErrConflict)
			}
			return fmt.Errorf("failed to create review: %w", err)
		}

		var reviews []models.Review
		if err := tx.Where("product_id = ?", productID).Find(&reviews).Error; err != nil {
			return fmt.Errorf("failed to load reviews: %w", err)
		}

		return tx.Model(&product).Updates(map[string]interface{}{
			"num_reviews": len(reviews),
			"rating":      models.AverageRating(reviews),
		}).Error
	})
}

// SetImage stores the uploaded image reference on the product.
func (s *ProductService) SetImage(id uuid.UUID, imageURL string) (*models.Product, error) {
	product, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(product).Update("image", imageURL).Error; err != nil {
		return nil, fmt.Errorf("failed to update product image: %w", err)
	}
	product.Image = imageURL
	return product, nil
}
