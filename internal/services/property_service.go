package services

import (
	"context"
	"errors"
	"time"

	apperrors "property-catalog/internal/errors"
	"property-catalog/internal/models"
	"property-catalog/internal/query"
	"property-catalog/internal/repositories"
	"property-catalog/internal/utils"
	"property-catalog/internal/validators"
	"property-catalog/pkg/logger"
)

// ImageStore persists uploaded image bytes and returns their relative path.
type ImageStore interface {
	Save(ctx context.Context, data []byte) (string, error)
	Delete(path string) error
}

type PropertyService struct {
	repo      repositories.PropertyRepository
	cache     repositories.PropertyCache
	validator validators.PropertyValidator
	images    ImageStore
	reclaimer *ImageReclaimer
	bounds    query.Bounds
	now       func() time.Time
}

func NewPropertyService(
	repo repositories.PropertyRepository,
	cache repositories.PropertyCache,
	validator validators.PropertyValidator,
	images ImageStore,
	reclaimer *ImageReclaimer,
	bounds query.Bounds,
) *PropertyService {
	return &PropertyService{
		repo:      repo,
		cache:     cache,
		validator: validator,
		images:    images,
		reclaimer: reclaimer,
		bounds:    bounds,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// List returns one page of properties matching criteria. A page with no
// records yields apperrors.ErrNoContent.
func (s *PropertyService) List(ctx context.Context, criteria query.Criteria) (*models.PropertyPage, error) {
	q, err := query.Parse(criteria, s.bounds)
	if err != nil {
		return nil, err
	}

	if page, ok := s.cache.GetPage(ctx, q); ok {
		if len(page.Properties) == 0 {
			return nil, apperrors.ErrNoContent
		}
		return page, nil
	}

	gen := s.cache.Generation()
	properties, total, err := s.repo.Find(ctx, q)
	if err != nil {
		return nil, err
	}

	page := &models.PropertyPage{
		Properties: properties,
		TotalPages: q.TotalPages(total),
		TotalCount: total,
		Page:       q.Page,
		Limit:      q.Limit,
	}
	s.cache.SetPage(ctx, gen, q, page)

	if len(properties) == 0 {
		return nil, apperrors.ErrNoContent
	}
	return page, nil
}

func (s *PropertyService) GetByID(ctx context.Context, id string) (*models.Property, error) {
	if property, ok := s.cache.GetProperty(ctx, id); ok {
		return property, nil
	}

	gen := s.cache.Generation()
	property, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.SetProperty(ctx, gen, property)
	return property, nil
}

// Create validates input and image, stores the image and inserts the record.
// The stored image is removed again when the insert fails.
func (s *PropertyService) Create(ctx context.Context, input *models.PropertyInput, image *models.ImageUpload) (*models.Property, error) {
	if err := s.validator.ValidateCreate(input); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateImage(image); err != nil {
		return nil, err
	}

	now := s.now()
	property := &models.Property{
		Name:        input.Name,
		Type:        models.PropertyType(input.Type),
		Location:    input.Location,
		Price:       *input.Price,
		Description: input.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if image != nil {
		path, err := s.storeImage(ctx, image)
		if err != nil {
			return nil, err
		}
		property.ImagePath = &path
	}

	if err := s.repo.Create(ctx, property); err != nil {
		s.discardImage(property.ImagePath)
		return nil, err
	}

	s.cache.Invalidate(ctx, "")
	logger.GlobalLogger.Printf("created property %s", property.ID.Hex())
	return property, nil
}

// Update applies patch and, when image is given, swaps the record's image.
// The replaced image is reclaimed in the background after the write commits.
// The returned property is the stored document read back after the write.
func (s *PropertyService) Update(ctx context.Context, id string, patch *models.PropertyPatch, image *models.ImageUpload) (*models.Property, error) {
	if patch == nil {
		patch = &models.PropertyPatch{}
	}
	if err := s.validator.ValidateUpdate(patch, image); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateImage(image); err != nil {
		return nil, err
	}

	// Fail before touching the file store when the record is gone.
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}

	var newPath *string
	if image != nil {
		path, err := s.storeImage(ctx, image)
		if err != nil {
			return nil, err
		}
		newPath = &path
	}

	now := s.now()
	previous, err := s.repo.Update(ctx, id, patch, newPath, now)
	if err != nil {
		s.discardImage(newPath)
		s.cache.Invalidate(ctx, id)
		return nil, err
	}

	if newPath != nil && previous.ImagePath != nil && *previous.ImagePath != *newPath {
		s.reclaimer.Reclaim(*previous.ImagePath)
	}
	s.cache.Invalidate(ctx, id)
	logger.GlobalLogger.Printf("updated property %s", id)

	stored, err := s.repo.FindByID(ctx, id)
	if err == nil {
		return stored, nil
	}
	// The write committed; answer with what it set when the record cannot be re-read.
	logger.GlobalLogger.Warnf("re-reading updated property %s: %v", id, err)
	updated := *previous
	patch.Apply(&updated)
	if newPath != nil {
		updated.ImagePath = newPath
	}
	updated.UpdatedAt = now
	return &updated, nil
}

// Delete removes the record and reclaims the image it referenced.
func (s *PropertyService) Delete(ctx context.Context, id string) (*models.Property, error) {
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	if removed.ImagePath != nil {
		s.reclaimer.Reclaim(*removed.ImagePath)
	}

	s.cache.Invalidate(ctx, id)
	logger.GlobalLogger.Printf("deleted property %s", id)
	return removed, nil
}

func (s *PropertyService) storeImage(ctx context.Context, image *models.ImageUpload) (string, error) {
	path, err := s.images.Save(ctx, image.Data)
	utils.RecordFileStoreOperation("save", err)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		return "", apperrors.NewStorageError("save image", err)
	}
	return path, nil
}

// discardImage synchronously removes an image whose record write failed.
func (s *PropertyService) discardImage(path *string) {
	if path == nil {
		return
	}
	err := s.images.Delete(*path)
	utils.RecordFileStoreOperation("compensate", err)
	if err != nil {
		logger.GlobalLogger.Errorf("failed to remove image %s after failed write: %v", *path, err)
	}
}
