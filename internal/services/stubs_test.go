package services

import (
	"context"
	"sync"
	"time"

	apperrors "property-catalog/internal/errors"
	"property-catalog/internal/models"
	"property-catalog/internal/query"
	"property-catalog/internal/repositories"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memoryRepo is an in-process PropertyRepository ordered by insertion.
type memoryRepo struct {
	mu         sync.Mutex
	items      []models.Property
	createErr  error
	updateErr  error
	findCalled int
	// afterUpdate runs on the stored slice once Update has written, standing
	// in for a concurrent writer.
	afterUpdate func(items *[]models.Property, i int)
}

func (r *memoryRepo) index(id string) int {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return -1
	}
	for i := range r.items {
		if r.items[i].ID == oid {
			return i
		}
	}
	return -1
}

func (r *memoryRepo) Find(_ context.Context, q *query.Query) ([]models.Property, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findCalled++

	var matched []models.Property
	for _, p := range r.items {
		p := p
		if q.Matches(&p) {
			matched = append(matched, p)
		}
	}
	total := int64(len(matched))
	start := q.Skip()
	if start > total {
		start = total
	}
	end := start + q.LimitN()
	if end > total {
		end = total
	}
	return append([]models.Property{}, matched[start:end]...), total, nil
}

func (r *memoryRepo) FindByID(_ context.Context, id string) (*models.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(id)
	if i < 0 {
		return nil, apperrors.ErrNotFound
	}
	p := r.items[i]
	return &p, nil
}

func (r *memoryRepo) Create(_ context.Context, property *models.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	property.ID = primitive.NewObjectID()
	r.items = append(r.items, *property)
	return nil
}

func (r *memoryRepo) Update(_ context.Context, id string, patch *models.PropertyPatch, imagePath *string, now time.Time) (*models.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	i := r.index(id)
	if i < 0 {
		return nil, apperrors.ErrNotFound
	}
	previous := r.items[i]
	patch.Apply(&r.items[i])
	if imagePath != nil {
		path := *imagePath
		r.items[i].ImagePath = &path
	}
	r.items[i].UpdatedAt = now
	if r.afterUpdate != nil {
		r.afterUpdate(&r.items, i)
	}
	return &previous, nil
}

func (r *memoryRepo) Delete(_ context.Context, id string) (*models.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(id)
	if i < 0 {
		return nil, apperrors.ErrNotFound
	}
	removed := r.items[i]
	r.items = append(r.items[:i], r.items[i+1:]...)
	return &removed, nil
}

func (r *memoryRepo) ImagePaths(context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var paths []string
	for _, p := range r.items {
		if p.ImagePath != nil {
			paths = append(paths, *p.ImagePath)
		}
	}
	return paths, nil
}

var _ repositories.PropertyRepository = (*memoryRepo)(nil)

// spyCache never hits and records invalidations.
type spyCache struct {
	mu          sync.Mutex
	invalidated []string
}

func (c *spyCache) Generation() uint64                                           { return 0 }
func (c *spyCache) GetProperty(context.Context, string) (*models.Property, bool) { return nil, false }
func (c *spyCache) SetProperty(context.Context, uint64, *models.Property)        {}
func (c *spyCache) GetPage(context.Context, *query.Query) (*models.PropertyPage, bool) {
	return nil, false
}
func (c *spyCache) SetPage(context.Context, uint64, *query.Query, *models.PropertyPage) {}
func (c *spyCache) Invalidate(_ context.Context, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, id)
}

var _ repositories.PropertyCache = (*spyCache)(nil)
