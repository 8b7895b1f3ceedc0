package service

import (
	"context"
	"testing"

	"github.com/example/fooddash/pkg/apperr"
	"github.com/example/fooddash/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newCartFixture() (*CartService, *memCarts, *memCatalog) {
	carts := newMemCarts()
	catalog := newMemCatalog()
	return NewCartService(carts, catalog, zap.NewNop()), carts, catalog
}

func TestGetCart_ProvisionsOnceAndIsStable(t *testing.T) {
	svc, carts, _ := newCartFixture()
	ctx := context.Background()

	first, err := svc.GetCart(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, first.Items)
	assert.False(t, first.ID.IsZero())

	second, err := svc.GetCart(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, carts.saves)
}

func TestAddItem(t *testing.T) {
	svc, carts, catalog := newCartFixture()
	ctx := context.Background()
	p := catalog.add("Momo", 120, true)

	view, err := svc.AddItem(ctx, "user-1", p.ID.Hex(), 1)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 120.0, view.Items[0].Price)
	assert.Equal(t, "Momo", view.Items[0].Product.Name)

	view, err = svc.AddItem(ctx, "user-1", p.ID.Hex(), 2)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 3, view.Items[0].Quantity)
	assert.Equal(t, 3, view.TotalItems)
	assert.Equal(t, 360.0, view.TotalAmount)

	stored := carts.items("user-1")
	require.NotNil(t, stored[0].Price)
	assert.Equal(t, 120.0, *stored[0].Price)
}

func TestAddItem_KeepsFirstPriceSnapshot(t *testing.T) {
	svc, carts, catalog := newCartFixture()
	ctx := context.Background()
	p := catalog.add("Momo", 120, true)

	_, err := svc.AddItem(ctx, "user-1", p.ID.Hex(), 1)
	require.NoError(t, err)
	p.Price = 150
	view, err := svc.AddItem(ctx, "user-1", p.ID.Hex(), 1)
	require.NoError(t, err)

	assert.Equal(t, 120.0, view.Items[0].Price)
	assert.Equal(t, 120.0, *carts.items("user-1")[0].Price)
}

func TestAddItem_Rejections(t *testing.T) {
	svc, carts, catalog := newCartFixture()
	ctx := context.Background()
	off := catalog.add("Sekuwa", 200, false)

	_, err := svc.AddItem(ctx, "user-1", off.ID.Hex(), 1)
	requireKind(t, err, apperr.KindInvalidState, apperr.CodeProductUnavailable)
	assert.Equal(t, "Product is not available", err.Error())
	assert.Empty(t, carts.items("user-1"))

	_, err = svc.AddItem(ctx, "user-1", primitive.NewObjectID().Hex(), 1)
	requireKind(t, err, apperr.KindNotFound, "")

	_, err = svc.AddItem(ctx, "user-1", "bogus", 1)
	requireKind(t, err, apperr.KindNotFound, "")

	_, err = svc.AddItem(ctx, "user-1", off.ID.Hex(), 0)
	requireKind(t, err, apperr.KindValidation, apperr.CodeInvalidArgument)
}

func TestUpdateItem(t *testing.T) {
	svc, carts, catalog := newCartFixture()
	ctx := context.Background()
	p := catalog.add("Momo", 100, true)
	other := catalog.add("Lassi", 80, true)

	_, err := svc.UpdateItem(ctx, "user-1", p.ID.Hex(), 2)
	requireKind(t, err, apperr.KindNotFound, "")
	assert.Equal(t, "Cart not found", err.Error())

	carts.put("user-1", cartLine(p, 1, models.PriceSnapshot(100)))

	view, err := svc.UpdateItem(ctx, "user-1", p.ID.Hex(), 5)
	require.NoError(t, err)
	assert.Equal(t, 5, view.Items[0].Quantity)

	_, err = svc.UpdateItem(ctx, "user-1", other.ID.Hex(), 2)
	requireKind(t, err, apperr.KindNotFound, "")

	_, err = svc.UpdateItem(ctx, "user-1", p.ID.Hex(), 0)
	requireKind(t, err, apperr.KindValidation, apperr.CodeInvalidArgument)
	assert.Equal(t, 5, carts.items("user-1")[0].Quantity)
}

func TestRemoveItem_IsIdempotent(t *testing.T) {
	svc, carts, catalog := newCartFixture()
	ctx := context.Background()
	p := catalog.add("Momo", 100, true)
	q := catalog.add("Lassi", 80, true)
	carts.put("user-1", cartLine(p, 1, nil), cartLine(q, 2, nil))

	view, err := svc.RemoveItem(ctx, "user-1", p.ID.Hex())
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, q.ID, view.Items[0].ProductID)
	assert.Equal(t, 80.0, view.Items[0].Price)

	view, err = svc.RemoveItem(ctx, "user-1", p.ID.Hex())
	require.NoError(t, err)
	assert.Len(t, view.Items, 1)

	_, err = svc.RemoveItem(ctx, "user-1", "bogus")
	require.NoError(t, err)
}

func TestClear_KeepsCartRecord(t *testing.T) {
	svc, carts, catalog := newCartFixture()
	ctx := context.Background()
	p := catalog.add("Momo", 100, true)
	carts.put("user-1", cartLine(p, 3, nil))
	id := carts.carts["user-1"].ID

	view, err := svc.Clear(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Equal(t, id, view.ID)
	assert.Equal(t, id, carts.carts["user-1"].ID)
	assert.NotNil(t, carts.items("user-1"))
}

func TestCartView_DeletedProduct(t *testing.T) {
	svc, carts, _ := newCartFixture()
	gone := primitive.NewObjectID()
	carts.put("user-1", models.CartItem{ProductID: gone, Quantity: 2, Price: models.PriceSnapshot(40)})

	view, err := svc.GetCart(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Nil(t, view.Items[0].Product)
	assert.Equal(t, 80.0, view.TotalAmount)
}
