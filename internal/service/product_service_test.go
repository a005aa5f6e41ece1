package service

import (
	"testing"

	"scriptaffiliator/internal/model"
	"scriptaffiliator/internal/repository"
	"scriptaffiliator/internal/testdb"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func createUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()
	u := &model.User{Email: email, Name: "Tester"}
	require.NoError(t, repository.NewUserRepo(db).Create(u))
	return u
}

func TestBulkCreate(t *testing.T) {
	db := testdb.New(t)
	repo := repository.NewProductRepo(db)
	svc := NewProductService(repo, nil, zap.NewNop())
	user := createUser(t, db, "seller@example.com")

	created, err := svc.BulkCreate(&CreateProductsRequest{
		UserID: user.ID.String(),
		Products: []ProductInput{
			{Name: "Widget", Price: decimal.NewFromInt(100), AffiliateFee: decimal.NewFromInt(5)},
			{Name: "Gizmo", Description: strPtr("")},
		},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Nil(t, created[1].Description, "empty description is stored as null")

	t.Run("collision inside the batch", func(t *testing.T) {
		_, err := svc.BulkCreate(&CreateProductsRequest{
			UserID:   user.ID.String(),
			Products: []ProductInput{{Name: "Lamp"}, {Name: "LAMP"}},
		})
		var dup *DuplicateNamesError
		require.ErrorAs(t, err, &dup)
		assert.True(t, dup.InBatch)
		assert.Equal(t, []string{"lamp"}, dup.Names)
	})

	t.Run("collision with stored names rejects everything", func(t *testing.T) {
		_, err := svc.BulkCreate(&CreateProductsRequest{
			UserID:   user.ID.String(),
			Products: []ProductInput{{Name: "Fresh"}, {Name: "wIdGeT"}},
		})
		var dup *DuplicateNamesError
		require.ErrorAs(t, err, &dup)
		assert.False(t, dup.InBatch)
		assert.Equal(t, "products with these names already exist: widget", dup.Error())

		all, err := svc.List(user.ID.String())
		require.NoError(t, err)
		assert.Len(t, all, 2, "Fresh must not be inserted")
	})

	t.Run("invalid payloads", func(t *testing.T) {
		_, err := svc.BulkCreate(&CreateProductsRequest{UserID: user.ID.String()})
		assert.ErrorIs(t, err, ErrInvalidPayload)
		_, err = svc.BulkCreate(&CreateProductsRequest{UserID: "nope", Products: []ProductInput{{Name: "x"}}})
		assert.ErrorIs(t, err, ErrInvalidPayload)
		_, err = svc.BulkCreate(&CreateProductsRequest{UserID: user.ID.String(), Products: []ProductInput{{Name: "  "}}})
		assert.ErrorIs(t, err, ErrInvalidPayload)
		_, err = svc.BulkCreate(&CreateProductsRequest{UserID: user.ID.String(), Products: []ProductInput{{Name: "x", CategoryID: strPtr("bad")}}})
		assert.ErrorIs(t, err, ErrInvalidCategory)
	})
}

func TestUpdateProduct(t *testing.T) {
	db := testdb.New(t)
	svc := NewProductService(repository.NewProductRepo(db), nil, zap.NewNop())
	user := createUser(t, db, "seller@example.com")

	created, err := svc.BulkCreate(&CreateProductsRequest{
		UserID:   user.ID.String(),
		Products: []ProductInput{{Name: "Widget"}, {Name: "Gizmo"}},
	})
	require.NoError(t, err)

	updated, err := svc.Update(&UpdateProductRequest{
		ID:           created[0].ID.String(),
		ProductInput: ProductInput{Name: "Widget Pro", Price: decimal.RequireFromString("9.99"), CategoryID: strPtr("")},
	})
	require.NoError(t, err)
	assert.Equal(t, "Widget Pro", updated.Name)
	assert.Nil(t, updated.CategoryID)

	_, err = svc.Update(&UpdateProductRequest{ID: created[0].ID.String(), ProductInput: ProductInput{Name: "gizmo"}})
	var dup *DuplicateNamesError
	assert.ErrorAs(t, err, &dup)

	_, err = svc.Update(&UpdateProductRequest{ID: uuid.NewString(), ProductInput: ProductInput{Name: "x"}})
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = svc.Update(&UpdateProductRequest{ProductInput: ProductInput{Name: "x"}})
	assert.ErrorIs(t, err, ErrProductIDRequired)
}

func TestHooksAndCategories(t *testing.T) {
	db := testdb.New(t)
	hooks := NewHookService(repository.NewHookRepo(db), zap.NewNop())
	a := createUser(t, db, "a@example.com")
	b := createUser(t, db, "b@example.com")

	global, err := hooks.Create("  Wait for it  ", "")
	require.NoError(t, err)
	assert.Equal(t, "Wait for it", global.Title)
	assert.Nil(t, global.UserID)

	_, err = hooks.Create("Mine", a.ID.String())
	require.NoError(t, err)

	_, err = hooks.Create("   ", a.ID.String())
	assert.ErrorIs(t, err, ErrTitleRequired)

	forA, err := hooks.List(a.ID.String())
	require.NoError(t, err)
	assert.Len(t, forA, 2)

	forB, err := hooks.List(b.ID.String())
	require.NoError(t, err)
	assert.Len(t, forB, 1)

	_, err = hooks.List("")
	assert.ErrorIs(t, err, ErrMissingUserID)

	cats := NewCategoryService(repository.NewCategoryRepo(db), zap.NewNop())
	list, err := cats.List()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func strPtr(s string) *string { return &s }
