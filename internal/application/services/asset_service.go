package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"social-campaign-backend/internal/application/ports"
	"social-campaign-backend/internal/domain/asset"
	"social-campaign-backend/internal/domain/shared"
	apperrors "social-campaign-backend/internal/errors"
	"social-campaign-backend/internal/repository"

	"go.uber.org/zap"
)

// UploadRecorder counts stored uploads.
type UploadRecorder interface {
	RecordAssetUpload()
}

// UploadInput is one brand asset upload.
type UploadInput struct {
	BrandID     string
	FileName    string
	ContentType string
	Size        int64
	Category    asset.Category
	Tags        []string
	Body        io.Reader
}

// AssetService keeps asset metadata in the table and asset bytes in the
// object store. The two are written separately; Upload and Delete order the
// writes so that a failure never leaves metadata pointing at nothing.
type AssetService struct {
	assets   repository.AssetRepository
	brands   repository.BrandRepository
	objects  ports.ObjectStore
	maxSize  int64
	recorder UploadRecorder
	logger   *zap.Logger
}

// NewAssetService creates an asset service. maxSize <= 0 disables the size
// limit; recorder may be nil.
func NewAssetService(
	assets repository.AssetRepository,
	brands repository.BrandRepository,
	objects ports.ObjectStore,
	maxSize int64,
	recorder UploadRecorder,
	logger *zap.Logger,
) *AssetService {
	return &AssetService{
		assets:   assets,
		brands:   brands,
		objects:  objects,
		maxSize:  maxSize,
		recorder: recorder,
		logger:   logger.Named("asset_service"),
	}
}

// Upload checks that the brand exists, stores the bytes and then the
// metadata. When the metadata write fails the object is removed again.
func (s *AssetService) Upload(ctx context.Context, tenantID string, in UploadInput) (*asset.Asset, error) {
	fileName := cleanFileName(in.FileName)
	if fileName == "" {
		return nil, apperrors.NewValidation("invalid asset", map[string]string{"fileName": "required"})
	}
	if in.Size < 0 || (s.maxSize > 0 && in.Size > s.maxSize) {
		return nil, apperrors.NewValidation("invalid asset",
			map[string]string{"size": fmt.Sprintf("must be between 0 and %d bytes", s.maxSize)})
	}
	if in.Body == nil {
		return nil, apperrors.NewValidation("invalid asset", map[string]string{"body": "required"})
	}
	if _, err := s.brands.Get(ctx, tenantID, in.BrandID); err != nil {
		return nil, err
	}

	id := shared.NewID()
	key := asset.ObjectKeyFor(tenantID, in.BrandID, id, fileName)
	if err := s.objects.Put(ctx, key, in.Body, in.Size, in.ContentType); err != nil {
		return nil, apperrors.NewUnavailable("failed to store asset object", err)
	}

	created, err := s.assets.Create(ctx, tenantID, &asset.Asset{
		Meta:        shared.Meta{ID: id},
		BrandID:     in.BrandID,
		FileName:    fileName,
		ContentType: in.ContentType,
		Size:        in.Size,
		ObjectKey:   key,
		Category:    in.Category,
		Tags:        in.Tags,
	})
	if err != nil {
		if delErr := s.objects.Delete(ctx, key); delErr != nil {
			s.logger.Error("failed to remove object after metadata write failed",
				zap.String("tenant_id", tenantID),
				zap.String("object_key", key),
				zap.Error(delErr))
		}
		return nil, err
	}

	if s.recorder != nil {
		s.recorder.RecordAssetUpload()
	}
	s.logger.Info("asset uploaded",
		zap.String("tenant_id", tenantID),
		zap.String("brand_id", in.BrandID),
		zap.String("asset_id", id),
		zap.Int64("size", in.Size))
	return created, nil
}

func (s *AssetService) Get(ctx context.Context, tenantID, brandID, assetID string) (*asset.Asset, error) {
	return s.assets.Get(ctx, tenantID, brandID, assetID)
}

func (s *AssetService) Update(ctx context.Context, tenantID, brandID, assetID string, patch asset.Patch, opts ...repository.WriteOption) (*asset.Asset, error) {
	return s.assets.Update(ctx, tenantID, brandID, assetID, patch, opts...)
}

// Delete removes the object first and the metadata second. If the object
// cannot be removed the metadata stays, so the delete can be retried. An
// object that is already gone counts as removed.
func (s *AssetService) Delete(ctx context.Context, tenantID, brandID, assetID string) error {
	a, err := s.assets.Get(ctx, tenantID, brandID, assetID)
	if err != nil {
		return err
	}
	if err := s.objects.Delete(ctx, a.ObjectKey); err != nil && !errors.Is(err, ports.ErrObjectNotFound) {
		return apperrors.NewUnavailable("failed to delete asset object", err)
	}
	return s.assets.Delete(ctx, tenantID, brandID, assetID)
}

// Stat returns the stored object behind an asset. A missing object is
// NOT_FOUND.
func (s *AssetService) Stat(ctx context.Context, tenantID, brandID, assetID string) (*ports.ObjectInfo, error) {
	a, err := s.assets.Get(ctx, tenantID, brandID, assetID)
	if err != nil {
		return nil, err
	}
	info, err := s.objects.Head(ctx, a.ObjectKey)
	if errors.Is(err, ports.ErrObjectNotFound) {
		return nil, apperrors.NewNotFound("asset object", assetID)
	}
	if err != nil {
		return nil, apperrors.NewUnavailable("failed to read asset object", err)
	}
	return info, nil
}

func (s *AssetService) ListByBrand(ctx context.Context, tenantID, brandID string, q repository.AssetQuery) (*repository.Page[*asset.Asset], error) {
	return s.assets.ListByBrand(ctx, tenantID, brandID, q)
}

func (s *AssetService) List(ctx context.Context, tenantID string, q repository.AssetQuery) (*repository.Page[*asset.Asset], error) {
	return s.assets.List(ctx, tenantID, q)
}

// cleanFileName keeps only the last path element of name.
func cleanFileName(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	if name == "" {
		return ""
	}
	base := path.Base(name)
	if base == "." || base == "/" || base == ".." {
		return ""
	}
	return base
}
