package migrations

import (
	"time"

	"gorm.io/gorm"
)

// Run applies the storefront schema. Adapters do not automigrate.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(&wishlistRecord{})
}

// Wishlist schema mirrors the wishlist Postgres adapter.
type wishlistRecord struct {
	UserID    int64     `gorm:"primaryKey;column:user_id;autoIncrement:false"`
	ProductID int64     `gorm:"primaryKey;column:product_id;autoIncrement:false"`
	Name      string    `gorm:"column:name"`
	Price     float64   `gorm:"column:price"`
	ImageURL  string    `gorm:"column:image_url"`
	CreatedAt time.Time `gorm:"column:created_at;index"`
}

func (wishlistRecord) TableName() string { return "wishlist_items" }
