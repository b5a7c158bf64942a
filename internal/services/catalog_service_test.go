package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/storefront-backend/internal/testutil"
)

func TestCategoryTreeIsOneLevelDeep(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewCategoryService(db)
	ctx := context.Background()

	root, err := svc.Create(ctx, &CategoryRequest{Name: "Ev Dekorasyonu"})
	require.NoError(t, err)
	assert.Equal(t, "ev-dekorasyonu", root.Slug)

	child, err := svc.Create(ctx, &CategoryRequest{Name: "Vazolar", ParentID: &root.ID})
	require.NoError(t, err)

	_, err = svc.Create(ctx, &CategoryRequest{Name: "Grandchild", ParentID: &child.ID})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, &CategoryRequest{Name: "Orphan", ParentID: uuidPtr(uuid.New())})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Update(ctx, root.ID, &CategoryRequest{Name: "Self", ParentID: &root.ID})
	assert.ErrorIs(t, err, ErrInvalidInput)

	tree, err := svc.Tree(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, child.ID, tree[0].Children[0].ID)
}

func TestCategorySlugConflict(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewCategoryService(db)
	ctx := context.Background()

	_, err := svc.Create(ctx, &CategoryRequest{Name: "Lamps", Slug: "lamps"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, &CategoryRequest{Name: "Other Lamps", Slug: "Lamps"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCategoryDeleteDetachesProducts(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewCategoryService(db)
	products := NewProductService(db)
	ctx := context.Background()

	category, err := svc.Create(ctx, &CategoryRequest{Name: "Mugs"})
	require.NoError(t, err)
	product, err := products.Create(ctx, &ProductRequest{Name: "Mug", Price: dec("10"), Stock: 1, IsActive: true, CategoryID: &category.ID})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, category.ID))
	assert.ErrorIs(t, svc.Delete(ctx, category.ID), ErrNotFound)

	loaded, err := products.Get(ctx, product.ID, false)
	require.NoError(t, err)
	assert.Nil(t, loaded.CategoryID)
}

func TestCollections(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewCollectionService(db)
	ctx := context.Background()

	active := createProduct(t, db, "Shown", "10", 1)
	hidden := createProduct(t, db, "Hidden", "10", 1)
	require.NoError(t, db.Model(hidden).Update("is_active", false).Error)

	collection, err := svc.Create(ctx, &CollectionRequest{
		Name:       "Yaz Koleksiyonu",
		IsActive:   true,
		ProductIDs: []uuid.UUID{active.ID, hidden.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "yaz-koleksiyonu", collection.Slug)
	assert.Len(t, collection.Products, 2)

	public, err := svc.GetBySlug(ctx, "yaz-koleksiyonu")
	require.NoError(t, err)
	require.Len(t, public.Products, 1)
	assert.Equal(t, active.ID, public.Products[0].ID)

	updated, err := svc.Update(ctx, collection.ID, &CollectionRequest{Name: "Yaz Koleksiyonu", IsActive: false, ProductIDs: []uuid.UUID{}})
	require.NoError(t, err)
	assert.Empty(t, updated.Products)

	_, err = svc.GetBySlug(ctx, "yaz-koleksiyonu")
	assert.ErrorIs(t, err, ErrNotFound)

	listed, err := svc.List(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, listed)

	listed, err = svc.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	require.NoError(t, svc.Delete(ctx, collection.ID))
	assert.ErrorIs(t, svc.Delete(ctx, collection.ID), ErrNotFound)
}
