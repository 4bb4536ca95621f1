package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/llmndev/perfume-storefront/internal/domains/wishlist/domain"
	"github.com/llmndev/perfume-storefront/internal/domains/wishlist/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists wishlists in PostgreSQL using GORM. Schema is owned by
// internal/platform/migrations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// wishlistRecord is one saved product; the composite key keeps products unique per user.
type wishlistRecord struct {
	UserID    int64     `gorm:"primaryKey;column:user_id;autoIncrement:false"`
	ProductID int64     `gorm:"primaryKey;column:product_id;autoIncrement:false"`
	Name      string    `gorm:"column:name"`
	Price     float64   `gorm:"column:price"`
	ImageURL  string    `gorm:"column:image_url"`
	CreatedAt time.Time `gorm:"column:created_at;index"`
}

func (wishlistRecord) TableName() string { return "wishlist_items" }

// Add inserts the item; an existing row for the product is left untouched.
func (r *Repository) Add(ctx context.Context, userID int64, item domain.Item) (bool, error) {
	if err := r.ensureDB(); err != nil {
		return false, err
	}
	record := toRecord(userID, item)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoNothing: true,
		}).Create(&record)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) Remove(ctx context.Context, userID, productID int64) (bool, error) {
	if err := r.ensureDB(); err != nil {
		return false, err
	}
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&wishlistRecord{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Toggle flips membership inside one transaction. A transaction-scoped advisory
// lock on the user serializes concurrent toggles of the same list.
func (r *Repository) Toggle(ctx context.Context, userID int64, item domain.Item) (bool, error) {
	if err := r.ensureDB(); err != nil {
		return false, err
	}
	var present bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", userID).Error; err != nil {
			return err
		}
		deleted := tx.Where("user_id = ? AND product_id = ?", userID, item.ProductID).Delete(&wishlistRecord{})
		if deleted.Error != nil {
			return deleted.Error
		}
		if deleted.RowsAffected > 0 {
			present = false
			return nil
		}
		record := toRecord(userID, item)
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoNothing: true,
		}).Create(&record).Error; err != nil {
			return err
		}
		present = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return present, nil
}

func (r *Repository) List(ctx context.Context, userID int64) ([]domain.Item, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []wishlistRecord
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at, product_id").
		Find(&records).Error; err != nil {
		return nil, err
	}
	items := make([]domain.Item, 0, len(records))
	for i := range records {
		items = append(items, records[i].toDomain())
	}
	return items, nil
}

func (r *Repository) Contains(ctx context.Context, userID int64, productIDs []int64) (map[int64]bool, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	present := make(map[int64]bool, len(productIDs))
	for _, id := range productIDs {
		present[id] = false
	}
	if len(productIDs) == 0 {
		return present, nil
	}
	var found []int64
	if err := r.db.WithContext(ctx).
		Model(&wishlistRecord{}).
		Where("user_id = ? AND product_id = ANY(?)", userID, pq.Array(productIDs)).
		Pluck("product_id", &found).Error; err != nil {
		return nil, err
	}
	for _, id := range found {
		present[id] = true
	}
	return present, nil
}

func (r *Repository) Clear(ctx context.Context, userID int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&wishlistRecord{}).Error
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres wishlist repository not configured")
	}
	return nil
}

func toRecord(userID int64, item domain.Item) wishlistRecord {
	return wishlistRecord{
		UserID:    userID,
		ProductID: item.ProductID,
		Name:      item.Name,
		Price:     item.Price,
		ImageURL:  item.ImageURL,
		CreatedAt: item.AddedAt,
	}
}

func (r wishlistRecord) toDomain() domain.Item {
	return domain.Item{
		ProductID: r.ProductID,
		Name:      r.Name,
		Price:     r.Price,
		ImageURL:  r.ImageURL,
		AddedAt:   r.CreatedAt,
	}
}
