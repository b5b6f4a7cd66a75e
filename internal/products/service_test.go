package product

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/phoneshop-backend/pkg/db/dbtest"
	pkgerrors "github.com/angelmondragon/phoneshop-backend/pkg/errors"
	"github.com/angelmondragon/phoneshop-backend/pkg/pagination"
)

func newTestService(t *testing.T) (Service, *Repository) {
	t.Helper()
	repo := NewRepository(dbtest.Open(t))
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc, repo
}

func createInput(name string, price string, stock int) CreateProductInput {
	return CreateProductInput{
		Name:         name,
		Manufacturer: "Acme",
		Price:        decimal.RequireFromString(price),
		Stock:        stock,
		Available:    true,
	}
}

func TestNewServiceRequiresRepo(t *testing.T) {
	_, err := NewService(nil)
	require.Error(t, err)
}

func TestCreateProductDerivesUniqueSlug(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.CreateProduct(ctx, createInput("Pixel 8 Pro", "899.00", 5))
	require.NoError(t, err)
	assert.Equal(t, "pixel-8-pro", first.Slug)
	assert.True(t, first.Price.Equal(decimal.RequireFromString("899")))

	second, err := svc.CreateProduct(ctx, createInput("Pixel 8 Pro", "899.00", 5))
	require.NoError(t, err)
	assert.Equal(t, "pixel-8-pro-2", second.Slug)
}

func TestCreateProductValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, createInput("Free Phone", "0", 1))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.CreateProduct(ctx, createInput("Tiny", "0.004", 1))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "sub-cent price rounds to zero: %v", err)

	_, err = svc.CreateProduct(ctx, createInput("Negative Stock", "10", -1))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.CreateProduct(ctx, createInput("   ", "10", 1))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestCreateProductUnavailable(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	input := createInput("Hidden Phone", "100", 3)
	input.Available = false
	created, err := svc.CreateProduct(ctx, input)
	require.NoError(t, err)

	stored, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, stored.Available)
}

func TestCreateUnavailableProductIsASingleInsert(t *testing.T) {
	conn := dbtest.Open(t)
	require.NoError(t, conn.Callback().Update().Before("gorm:update").Register("reject_updates", func(tx *gorm.DB) {
		tx.AddError(errors.New("updates disabled"))
	}))
	repo := NewRepository(conn)
	svc, err := NewService(repo)
	require.NoError(t, err)
	ctx := context.Background()

	input := createInput("Preorder Phone", "500", 0)
	input.Available = false
	created, err := svc.CreateProduct(ctx, input)
	require.NoError(t, err)
	assert.False(t, created.Available)

	stored, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, stored.Available)
}

func TestGetProductRequiresAvailableAndMatchingSlug(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, createInput("Galaxy S24", "799.99", 2))
	require.NoError(t, err)

	got, err := svc.GetProduct(ctx, created.ID, "galaxy-s24")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.True(t, got.InStock)

	_, err = svc.GetProduct(ctx, created.ID, "wrong-slug")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.GetProduct(ctx, uuid.New(), "")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	unavailable := false
	_, err = svc.UpdateProduct(ctx, created.ID, UpdateProductInput{Available: &unavailable})
	require.NoError(t, err)

	_, err = svc.GetProduct(ctx, created.ID, "galaxy-s24")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestUpdateProduct(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, createInput("Moto G", "199", 4))
	require.NoError(t, err)

	price := decimal.RequireFromString("149.50")
	stock := 9
	name := "Moto G Power"
	slug := "Moto G Power"
	updated, err := svc.UpdateProduct(ctx, created.ID, UpdateProductInput{
		Name:  &name,
		Slug:  &slug,
		Price: &price,
		Stock: &stock,
	})
	require.NoError(t, err)
	assert.Equal(t, "Moto G Power", updated.Name)
	assert.Equal(t, "moto-g-power", updated.Slug)
	assert.True(t, updated.Price.Equal(price))
	assert.Equal(t, 9, updated.Stock)

	subCent := decimal.RequireFromString("0.001")
	_, err = svc.UpdateProduct(ctx, created.ID, UpdateProductInput{Price: &subCent})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	rounded := decimal.RequireFromString("0.005")
	updated, err = svc.UpdateProduct(ctx, created.ID, UpdateProductInput{Price: &rounded})
	require.NoError(t, err)
	assert.Equal(t, "0.01", updated.Price.StringFixed(2))

	negative := -2
	_, err = svc.UpdateProduct(ctx, created.ID, UpdateProductInput{Stock: &negative})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.UpdateProduct(ctx, uuid.New(), UpdateProductInput{Stock: &stock})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestListProductsPaginatesAvailableOnly(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"Phone A", "Phone B", "Phone C"} {
		_, err := svc.CreateProduct(ctx, createInput(name, "10", 1))
		require.NoError(t, err)
	}
	hidden := createInput("Phone Hidden", "10", 1)
	hidden.Available = false
	_, err := svc.CreateProduct(ctx, hidden)
	require.NoError(t, err)

	first, err := svc.ListProducts(ctx, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Products, 2)
	require.NotEmpty(t, first.NextCursor)

	second, err := svc.ListProducts(ctx, pagination.Params{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Products, 1)
	assert.Empty(t, second.NextCursor)

	seen := map[uuid.UUID]bool{}
	for _, p := range append(first.Products, second.Products...) {
		assert.NotEqual(t, "Phone Hidden", p.Name)
		assert.False(t, seen[p.ID], "product listed twice")
		seen[p.ID] = true
	}

	_, err = svc.ListProducts(ctx, pagination.Params{Cursor: "%%%"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDecrementStockGuards(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, createInput("Nokia 3310", "49", 2))
	require.NoError(t, err)

	ok, err := repo.DecrementStock(ctx, created.ID, 3)
	require.NoError(t, err)
	assert.False(t, ok, "cannot take more than stock")

	ok, err = repo.DecrementStock(ctx, created.ID, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	stored, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Stock)

	_, err = repo.DecrementStock(ctx, created.ID, 0)
	assert.Error(t, err)
}
