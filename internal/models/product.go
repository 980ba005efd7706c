// internal/models/product.go
package models

import (
	"github.com/google/uuid"
)

type Product struct {
	BaseModel
	Name         string   `json:"name" gorm:"size:255;not null"`
	Description  string   `json:"description" gorm:"type:text"`
	Category     string   `json:"category" gorm:"size:100;index"`
	Price        float64  `json:"price" gorm:"type:decimal(10,2);not null"`
	Image        string   `json:"image" gorm:"size:512"`
	CountInStock int      `json:"count_in_stock" gorm:"default:0"`
	Rating       float64  `json:"rating" gorm:"type:decimal(3,2);default:0"`
	NumReviews   int      `json:"num_reviews" gorm:"default:0"`
	Reviews      []Review `json:"reviews,omitempty" gorm:"foreignKey:ProductID"`
}

// Review is a purchase-gated product review. A user appears at most
// once per product; rating/num_reviews on the product are recomputed
// from the full list on every append.
type Review struct {
	BaseModel
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;uniqueIndex:idx_reviews_product_user"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_reviews_product_user"`
	Name      string    `json:"name" gorm:"size:100"`
	Rating    int       `json:"rating" gorm:"not null"`
	Comment   string    `json:"comment" gorm:"type:text"`
}

// AverageRating is the mean of the given review ratings, 0 if none.
func AverageRating(reviews []Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	var sum int
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews))
}
