package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestItem_Validate(t *testing.T) {
	tests := []struct {
		name string
		item Item
		err  error
	}{
		{name: "valid", item: Item{ProductID: 1, Name: "Oud Noir", Price: 100}},
		{name: "free sample", item: Item{ProductID: 2, Name: "Sample", Price: 0}},
		{name: "missing product", item: Item{Name: "Oud Noir"}, err: ErrInvalidProductID},
		{name: "blank name", item: Item{ProductID: 1, Name: "  "}, err: ErrMissingName},
		{name: "negative price", item: Item{ProductID: 1, Name: "Oud Noir", Price: -1}, err: ErrInvalidPrice},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.item.Validate()
			if tc.err == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.err)
		})
	}
}

func TestWishlist_Contains(t *testing.T) {
	var empty *Wishlist
	require.False(t, empty.Contains(1))
	require.Zero(t, empty.Len())

	w := &Wishlist{UserID: 1, Items: []Item{{ProductID: 4}, {ProductID: 9}}}
	require.True(t, w.Contains(9))
	require.False(t, w.Contains(5))
	require.Equal(t, 2, w.Len())
}
