package storeapi_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/llmndev/perfume-storefront/internal/clients/http/storeapi"
	"github.com/llmndev/perfume-storefront/internal/clients/http/storeapi/storeapitest"
	cartstoreapi "github.com/llmndev/perfume-storefront/internal/domains/cart/adapters/storeapi"
	"github.com/llmndev/perfume-storefront/internal/domains/cart/application"
	"github.com/llmndev/perfume-storefront/internal/domains/cart/ports"
)

func newRemote(t *testing.T) (*cartstoreapi.Remote, *storeapitest.Server) {
	t.Helper()
	fake := storeapitest.NewServer()
	t.Cleanup(fake.Close)
	fake.AddProduct(storeapi.Product{ID: 1, Name: "Oud Noir", Price: 100})
	fake.AddProduct(storeapi.Product{ID: 2, Name: "Rose Absolue", Price: 45.5, ImageURL: "/img/rose.png"})
	client, err := storeapi.NewClient(fake.URL())
	require.NoError(t, err)
	return cartstoreapi.NewRemote(client), fake
}

func TestRemote_MissingCartMapsToErrCartNotFound(t *testing.T) {
	remote, _ := newRemote(t)

	_, err := remote.GetCartByUser(context.Background(), 4)
	require.ErrorIs(t, err, ports.ErrCartNotFound)
}

func TestRemote_OtherFailuresAreNotMissingCart(t *testing.T) {
	remote, fake := newRemote(t)
	fake.Fail("GET /cart/by-user/:userId", http.StatusInternalServerError)

	_, err := remote.GetCartByUser(context.Background(), 4)
	require.Error(t, err)
	require.NotErrorIs(t, err, ports.ErrCartNotFound)
}

func TestRemote_MapsItemsToDomain(t *testing.T) {
	ctx := context.Background()
	remote, _ := newRemote(t)

	cart, err := remote.CreateCart(ctx, 4)
	require.NoError(t, err)
	require.Equal(t, int64(4), cart.UserID)

	created, err := remote.CreateItem(ctx, cart.ID, 2, 3)
	require.NoError(t, err)
	require.Equal(t, 3, created.Quantity)
	require.Equal(t, "Rose Absolue", created.Product.Name)
	require.Equal(t, 45.5, created.Product.UnitPrice)
	require.Equal(t, "/img/rose.png", created.Product.ImageURL)

	items, err := remote.ListItems(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, *created, items[0])
}

func TestSynchronizer_OverStoreAPI(t *testing.T) {
	ctx := context.Background()
	remote, fake := newRemote(t)
	s, err := application.NewSynchronizer(remote, 8)
	require.NoError(t, err)

	require.NoError(t, s.Refresh(ctx))
	require.Equal(t, 1, fake.Count("POST /cart"))

	require.NoError(t, s.AddItem(ctx, 1, 1))
	require.NoError(t, s.AddItem(ctx, 1, 2))
	require.NoError(t, s.AddItem(ctx, 2, 2))
	require.Equal(t, 2, fake.Count("POST /cart-items"))
	require.Equal(t, 1, fake.Count("PUT /cart-items/:id"))
	require.Equal(t, "391.00", s.Subtotal().StringFixed(2))

	require.NoError(t, s.Clear(ctx))
	require.Equal(t, 2, fake.Count("DELETE /cart-items/:id"))
	require.Zero(t, s.ItemCount())
	require.Empty(t, fake.Items(s.Cart().ID))
}

func TestSynchronizer_ItemListFailureKeepsCart(t *testing.T) {
	ctx := context.Background()
	remote, fake := newRemote(t)
	fake.SeedCart(8)
	fake.Fail("GET /cart-items/by-cart/:cartId", http.StatusBadGateway)
	s, err := application.NewSynchronizer(remote, 8)
	require.NoError(t, err)

	require.NoError(t, s.Refresh(ctx))
	require.NotNil(t, s.Cart())
	require.Empty(t, s.Cart().Items)

	fake.Fail("GET /cart/by-user/:userId", http.StatusInternalServerError)
	require.ErrorIs(t, s.Refresh(ctx), application.ErrRemote)
	require.Nil(t, s.Cart())
}
