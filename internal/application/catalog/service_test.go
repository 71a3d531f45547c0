package catalog

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/exportdesk/backend/internal/domain/catalog"
	"github.com/exportdesk/backend/internal/domain/shared"
	"github.com/exportdesk/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc      *ProductService
	repo     *testutil.MockProductRepository
	storage  *testutil.MockImageStorage
	urlCache *testutil.MockStringCache
}

func newFixture() *fixture {
	f := &fixture{
		repo:     new(testutil.MockProductRepository),
		storage:  new(testutil.MockImageStorage),
		urlCache: new(testutil.MockStringCache),
	}
	f.svc = NewProductService(f.repo, f.storage, f.urlCache)
	return f
}

func tea(t *testing.T) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(catalog.Details{SKU: "TEA-01", Name: "Green tea", Price: decimal.NewFromInt(4), Active: true})
	require.NoError(t, err)
	return p
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to active", func(t *testing.T) {
		f := newFixture()
		f.repo.On("FindBySKU", ctx, "TEA-02").Return(nil, shared.ErrNotFound)
		f.repo.On("Save", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)

		resp, err := f.svc.Create(ctx, ProductRequest{SKU: "tea-02", Name: "Black tea", Price: decimal.RequireFromString("6.5")})

		require.NoError(t, err)
		assert.Equal(t, "TEA-02", resp.SKU)
		assert.True(t, resp.Active)
		assert.Equal(t, "USD", resp.Currency)
	})

	t.Run("duplicate sku", func(t *testing.T) {
		f := newFixture()
		f.repo.On("FindBySKU", ctx, "TEA-01").Return(tea(t), nil)

		_, err := f.svc.Create(ctx, ProductRequest{SKU: "TEA-01", Name: "Copy"})

		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
		f.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestProductService_Replace_KeepsOwnSKU(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	p := tea(t)
	inactive := false
	f.repo.On("FindByID", ctx, p.ID).Return(p, nil)
	f.repo.On("FindBySKU", ctx, "TEA-01").Return(p, nil)
	f.repo.On("Save", ctx, p).Return(nil)

	resp, err := f.svc.Replace(ctx, p.ID, ProductRequest{SKU: "TEA-01", Name: "Sencha", Price: decimal.NewFromInt(5), Active: &inactive})

	require.NoError(t, err)
	assert.Equal(t, "Sencha", resp.Name)
	assert.False(t, resp.Active)
	assert.Equal(t, 2, resp.Version)
}

func TestProductService_GetByID_ImageURL(t *testing.T) {
	ctx := context.Background()
	p := tea(t)
	p.ImageKey = catalog.ImageObjectKey(p.ID, "front.jpg")
	cacheKey := imageURLKeyPrefix + p.ImageKey

	t.Run("presigns and caches on miss", func(t *testing.T) {
		f := newFixture()
		f.repo.On("FindByID", ctx, p.ID).Return(p, nil)
		f.urlCache.On("Get", ctx, cacheKey).Return("", false, nil)
		f.storage.On("PresignGet", ctx, p.ImageKey, presignTTL).Return("https://cdn.example/signed", time.Now(), nil)
		f.urlCache.On("Set", ctx, cacheKey, "https://cdn.example/signed", ImageURLCacheTTL).Return(nil)

		resp, err := f.svc.GetByID(ctx, p.ID)

		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example/signed", resp.ImageURL)
		f.urlCache.AssertExpectations(t)
	})

	t.Run("reuses cached url", func(t *testing.T) {
		f := newFixture()
		f.repo.On("FindByID", ctx, p.ID).Return(p, nil)
		f.urlCache.On("Get", ctx, cacheKey).Return("https://cdn.example/cached", true, nil)

		resp, err := f.svc.GetByID(ctx, p.ID)

		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example/cached", resp.ImageURL)
		f.storage.AssertNotCalled(t, "PresignGet", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("presign failure leaves url empty", func(t *testing.T) {
		f := newFixture()
		f.repo.On("FindByID", ctx, p.ID).Return(p, nil)
		f.urlCache.On("Get", ctx, cacheKey).Return("", false, nil)
		f.storage.On("PresignGet", ctx, p.ImageKey, presignTTL).Return("", time.Time{}, errors.New("no credentials"))

		resp, err := f.svc.GetByID(ctx, p.ID)

		require.NoError(t, err)
		assert.Empty(t, resp.ImageURL)
	})
}

func TestProductService_UploadImage(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		contentType string
		size        int64
		wantCode    string
	}{
		{name: "pdf rejected", contentType: "application/pdf", size: 10, wantCode: "INVALID_CONTENT_TYPE"},
		{name: "empty file", contentType: "image/png", size: 0, wantCode: "INVALID_INPUT"},
		{name: "too large", contentType: "image/png", size: DefaultMaxImageSize + 1, wantCode: "IMAGE_TOO_LARGE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			p := tea(t)

			_, err := f.svc.UploadImage(ctx, p.ID, ImageUpload{Filename: "a.png", ContentType: tt.contentType, Size: tt.size, Body: bytes.NewReader(nil)})

			var de *shared.DomainError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.wantCode, de.Code)
			f.storage.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}

	t.Run("stores and replaces previous image", func(t *testing.T) {
		f := newFixture()
		p := tea(t)
		oldKey := catalog.ImageObjectKey(p.ID, "old.jpg")
		p.ImageKey = oldKey
		newKey := catalog.ImageObjectKey(p.ID, "front.png")
		body := bytes.NewReader([]byte("png"))

		f.repo.On("FindByID", ctx, p.ID).Return(p, nil)
		f.storage.On("Put", ctx, newKey, body, int64(3), "image/png").Return(nil)
		f.repo.On("Save", ctx, p).Return(nil)
		f.urlCache.On("Delete", ctx, mock.Anything).Return(nil)
		f.storage.On("Delete", ctx, oldKey).Return(nil)
		f.urlCache.On("Get", ctx, imageURLKeyPrefix+newKey).Return("", false, nil)
		f.storage.On("PresignGet", ctx, newKey, presignTTL).Return("https://cdn.example/front", time.Now(), nil)
		f.urlCache.On("Set", ctx, imageURLKeyPrefix+newKey, "https://cdn.example/front", ImageURLCacheTTL).Return(nil)

		resp, err := f.svc.UploadImage(ctx, p.ID, ImageUpload{Filename: "front.png", ContentType: "image/png; charset=binary", Size: 3, Body: body})

		require.NoError(t, err)
		assert.Equal(t, newKey, resp.ImageKey)
		assert.Equal(t, "https://cdn.example/front", resp.ImageURL)
		f.storage.AssertExpectations(t)
	})

	t.Run("without storage", func(t *testing.T) {
		svc := NewProductService(new(testutil.MockProductRepository), nil, nil)

		_, err := svc.UploadImage(ctx, tea(t).ID, ImageUpload{ContentType: "image/png", Size: 1})

		assert.ErrorIs(t, err, catalog.ErrStorageNotConfigured)
	})
}
