package repositories

import (
	"context"
	"time"

	"property-catalog/internal/models"
	"property-catalog/internal/query"
)

// PropertyRepository is the document store for properties. Lookups of ids
// that are malformed or absent return apperrors.ErrNotFound.
type PropertyRepository interface {
	// Find returns one page of matches plus the total match count.
	Find(ctx context.Context, q *query.Query) ([]models.Property, int64, error)
	FindByID(ctx context.Context, id string) (*models.Property, error)
	// Create assigns ID and persists the property.
	Create(ctx context.Context, property *models.Property) error
	// Update applies patch (and imagePath when non-nil) atomically and
	// returns the document as it was before the write.
	Update(ctx context.Context, id string, patch *models.PropertyPatch, imagePath *string, now time.Time) (*models.Property, error)
	// Delete removes the property and returns the removed document.
	Delete(ctx context.Context, id string) (*models.Property, error)
	// ImagePaths lists every image path referenced by a stored property.
	ImagePaths(ctx context.Context) ([]string, error)
}

// PropertyCache is a best-effort read-through cache. Failures are logged
// and behave as misses.
//
// Writes carry the Generation observed before the backing read. A write whose
// generation has since been passed by Invalidate is dropped, so a read racing
// a mutation in this process cannot repopulate stale data. The counter is
// per process: a stale write from another instance lives until its TTL.
type PropertyCache interface {
	Generation() uint64
	GetProperty(ctx context.Context, id string) (*models.Property, bool)
	SetProperty(ctx context.Context, gen uint64, property *models.Property)
	GetPage(ctx context.Context, q *query.Query) (*models.PropertyPage, bool)
	SetPage(ctx context.Context, gen uint64, q *query.Query, page *models.PropertyPage)
	// Invalidate evicts the property and every cached listing page.
	Invalidate(ctx context.Context, id string)
}
