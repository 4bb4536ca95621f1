package mapper

import (
	"time"

	"github.com/llmndev/perfume-storefront/internal/domains/wishlist/domain"
)

type Item struct {
	ProductID int64     `json:"productId"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	AddedAt   time.Time `json:"addedAt"`
}

type Wishlist struct {
	UserID int64  `json:"userId"`
	Items  []Item `json:"items"`
	Count  int    `json:"count"`
}

// ItemRequest is the body of the add and toggle endpoints. Name is only
// needed when the product is being added.
type ItemRequest struct {
	ProductID int64   `json:"productId" binding:"required"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	ImageURL  string  `json:"imageUrl"`
}

func (r ItemRequest) ToDomain() domain.Item {
	return domain.Item{
		ProductID: r.ProductID,
		Name:      r.Name,
		Price:     r.Price,
		ImageURL:  r.ImageURL,
	}
}

type ToggleResponse struct {
	ProductID  int64 `json:"productId"`
	InWishlist bool  `json:"inWishlist"`
}

// ContainsResponse maps product ids to membership; JSON object keys are the ids as strings.
type ContainsResponse struct {
	Products map[int64]bool `json:"products"`
}

func FromWishlist(list *domain.Wishlist) Wishlist {
	out := Wishlist{Items: []Item{}}
	if list == nil {
		return out
	}
	out.UserID = list.UserID
	out.Count = list.Len()
	for _, item := range list.Items {
		out.Items = append(out.Items, Item{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			ImageURL:  item.ImageURL,
			AddedAt:   item.AddedAt,
		})
	}
	return out
}
