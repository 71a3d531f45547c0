package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/exportdesk/backend/internal/domain/catalog"
	"github.com/exportdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultMaxImageSize applies when no limit is configured
	DefaultMaxImageSize int64 = 5 << 20

	// ImageURLCacheTTL is how long a presigned image URL is reused
	ImageURLCacheTTL = time.Hour

	// presigned URLs outlive their cache entry so a cached URL never points at an expired signature
	presignTTL = 2 * ImageURLCacheTTL

	imageURLKeyPrefix = "product_image_url:"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// ProductService handles product catalog operations
type ProductService struct {
	productRepo  catalog.ProductRepository
	storage      catalog.ImageStorage
	urlCache     shared.StringCache
	maxImageSize int64
	logger       *zap.Logger
}

// NewProductService creates a new ProductService.
// storage and urlCache may be nil; image URLs are then omitted or not cached.
func NewProductService(productRepo catalog.ProductRepository, storage catalog.ImageStorage, urlCache shared.StringCache) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		storage:      storage,
		urlCache:     urlCache,
		maxImageSize: DefaultMaxImageSize,
		logger:       zap.NewNop(),
	}
}

// SetMaxImageSize sets the upload limit in bytes
func (s *ProductService) SetMaxImageSize(n int64) {
	if n > 0 {
		s.maxImageSize = n
	}
}

// SetLogger sets the logger
func (s *ProductService) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Create adds a product
func (s *ProductService) Create(ctx context.Context, req ProductRequest) (*ProductResponse, error) {
	if err := s.ensureSKUFree(ctx, req.SKU, uuid.Nil); err != nil {
		return nil, err
	}

	p, err := catalog.NewProduct(req.details())
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, p); err != nil {
		return nil, err
	}

	response := ToProductResponse(p)
	return &response, nil
}

// GetByID retrieves a product with a presigned image URL
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	response := ToProductResponse(p)
	response.ImageURL = s.imageURL(ctx, p.ImageKey)
	return &response, nil
}

// List retrieves products sorted by SKU by default
func (s *ProductService) List(ctx context.Context, filter ListFilter) ([]ProductResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "sku"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.Active != nil {
		domainFilter.Filters["active"] = *filter.Active
	}
	if filter.Synced != nil {
		domainFilter.Filters["synced"] = *filter.Synced
	}

	products, err := s.productRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.productRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductResponse(&products[i])
		out[i].ImageURL = s.imageURL(ctx, products[i].ImageKey)
	}
	return out, total, nil
}

// Replace overwrites every editable field of a product
func (s *ProductService) Replace(ctx context.Context, id uuid.UUID, req ProductRequest) (*ProductResponse, error) {
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureSKUFree(ctx, req.SKU, p.ID); err != nil {
		return nil, err
	}
	if err := p.Replace(req.details()); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, p); err != nil {
		return nil, err
	}

	response := ToProductResponse(p)
	response.ImageURL = s.imageURL(ctx, p.ImageKey)
	return &response, nil
}

// UploadImage stores a product image and points the product at it.
// A previous image under a different key is removed afterwards.
func (s *ProductService) UploadImage(ctx context.Context, id uuid.UUID, upload ImageUpload) (*ProductResponse, error) {
	if s.storage == nil {
		return nil, catalog.ErrStorageNotConfigured
	}
	contentType := strings.ToLower(strings.TrimSpace(strings.SplitN(upload.ContentType, ";", 2)[0]))
	if !allowedImageTypes[contentType] {
		return nil, shared.NewDomainError("INVALID_CONTENT_TYPE",
			fmt.Sprintf("Content type %q is not an accepted image type", upload.ContentType))
	}
	if upload.Size <= 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Image file is empty")
	}
	if upload.Size > s.maxImageSize {
		return nil, shared.NewDomainError("IMAGE_TOO_LARGE",
			fmt.Sprintf("Image exceeds the %d byte limit", s.maxImageSize))
	}

	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	key := catalog.ImageObjectKey(p.ID, upload.Filename)
	if err := s.storage.Put(ctx, key, upload.Body, upload.Size, contentType); err != nil {
		return nil, fmt.Errorf("store product image: %w", err)
	}

	previous := p.ImageKey
	p.SetImage(key)
	if err := s.productRepo.Save(ctx, p); err != nil {
		return nil, err
	}

	s.forgetURL(ctx, key)
	if previous != "" && previous != key {
		s.forgetURL(ctx, previous)
		if err := s.storage.Delete(ctx, previous); err != nil {
			s.logger.Warn("Failed to delete replaced product image",
				zap.String("product_id", p.ID.String()),
				zap.String("key", previous),
				zap.Error(err),
			)
		}
	}

	response := ToProductResponse(p)
	response.ImageURL = s.imageURL(ctx, key)
	return &response, nil
}

func (s *ProductService) ensureSKUFree(ctx context.Context, sku string, self uuid.UUID) error {
	existing, err := s.productRepo.FindBySKU(ctx, strings.ToUpper(strings.TrimSpace(sku)))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != self {
		return shared.NewDomainError("ALREADY_EXISTS", "A product with this SKU already exists")
	}
	return nil
}

// imageURL presigns key, reusing a cached URL when there is one.
// Failures leave the URL empty; a missing image never fails a read.
func (s *ProductService) imageURL(ctx context.Context, key string) string {
	if key == "" || s.storage == nil {
		return ""
	}
	if s.urlCache != nil {
		if url, ok, err := s.urlCache.Get(ctx, imageURLKeyPrefix+key); err == nil && ok {
			return url
		}
	}

	url, _, err := s.storage.PresignGet(ctx, key, presignTTL)
	if err != nil {
		s.logger.Warn("Failed to presign product image", zap.String("key", key), zap.Error(err))
		return ""
	}
	if s.urlCache != nil {
		if err := s.urlCache.Set(ctx, imageURLKeyPrefix+key, url, ImageURLCacheTTL); err != nil {
			s.logger.Debug("Failed to cache image URL", zap.String("key", key), zap.Error(err))
		}
	}
	return url
}

func (s *ProductService) forgetURL(ctx context.Context, key string) {
	if s.urlCache == nil {
		return
	}
	if err := s.urlCache.Delete(ctx, imageURLKeyPrefix+key); err != nil {
		s.logger.Debug("Failed to drop cached image URL", zap.String("key", key), zap.Error(err))
	}
}
