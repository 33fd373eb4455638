package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category groups catalog products.
type Category struct {
	ID    int    `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name  string `json:"name" gorm:"type:varchar(100)" validate:"required,max=100"`
	Slug  string `json:"slug" gorm:"type:varchar(100)"`
	Image string `json:"image"`
}

// Product represents a catalog product as served by the catalog source.
type Product struct {
	ID          int             `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Title       string          `json:"title" gorm:"type:varchar(200)" validate:"required,max=200"`
	Slug        string          `json:"slug" gorm:"type:varchar(200)"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2)"`
	Description string          `json:"description" validate:"omitempty,max=2000"`
	Images      []string        `json:"images" gorm:"serializer:json"`
	CategoryID  int             `json:"-"`
	Category    Category        `json:"category" gorm:"foreignKey:CategoryID"`
	CreationAt  time.Time       `json:"creationAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// PrimaryImage returns the first image of the product, or an empty string.
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
