package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	apperrors "property-catalog/internal/errors"
	"property-catalog/internal/models"
	"property-catalog/internal/query"
	"property-catalog/internal/validators"
	"property-catalog/pkg/filestore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const maxImageBytes = 200 * 1024

var (
	pngImage = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	gifImage = []byte("GIF89a\x01\x00\x01\x00\x80\x00\x00\xff\xff\xff\x00\x00\x00!\xf9\x04\x01\x00\x00\x00\x00,")
)

type fixture struct {
	svc       *PropertyService
	repo      *memoryRepo
	cache     *spyCache
	store     *filestore.Store
	reclaimer *ImageReclaimer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := filestore.New(t.TempDir(), "uploads")
	require.NoError(t, err)

	f := &fixture{
		repo:      &memoryRepo{},
		cache:     &spyCache{},
		store:     store,
		reclaimer: NewImageReclaimer(store),
	}
	f.svc = NewPropertyService(f.repo, f.cache, validators.NewPropertyValidator(maxImageBytes), store, f.reclaimer, query.DefaultBounds)
	return f
}

func (f *fixture) drain(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, f.reclaimer.Wait(ctx))
}

func (f *fixture) storedFiles(t *testing.T) []string {
	t.Helper()
	files, err := f.store.List()
	require.NoError(t, err)
	paths := make([]string, 0, len(files))
	for _, file := range files {
		paths = append(paths, file.Path)
	}
	return paths
}

func amount(v float64) *float64 { return &v }

func input(name, typ, location string, price float64) *models.PropertyInput {
	return &models.PropertyInput{
		Name:        name,
		Type:        typ,
		Location:    location,
		Price:       amount(price),
		Description: "listing " + name,
	}
}

func upload(data []byte, contentType string) *models.ImageUpload {
	return &models.ImageUpload{Filename: "photo", ContentType: contentType, Size: int64(len(data)), Data: data}
}

func TestCreateThenGetReturnsSameFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, input("Lakeview", "Commercial", "Austin", 250000), upload(pngImage, "image/png"))
	require.NoError(t, err)
	require.False(t, created.ID.IsZero())
	require.NotNil(t, created.ImagePath)
	assert.True(t, f.store.Exists(*created.ImagePath))

	got, err := f.svc.GetByID(ctx, created.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, created.Name, got.Name)
	assert.Equal(t, created.Type, got.Type)
	assert.Equal(t, created.Location, got.Location)
	assert.Equal(t, created.Price, got.Price)
	assert.Equal(t, created.Description, got.Description)
	assert.Equal(t, *created.ImagePath, *got.ImagePath)
	assert.Contains(t, f.cache.invalidated, "")
}

func TestCreateWithoutImage(t *testing.T) {
	f := newFixture(t)

	created, err := f.svc.Create(context.Background(), input("Old Barn", "Land", "Waco", 90000), nil)
	require.NoError(t, err)
	assert.Nil(t, created.ImagePath)
	assert.Empty(t, f.storedFiles(t))
}

func TestListLakeviewExample(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, input("Lakeview", "Commercial", "Austin", 250000), nil)
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, input("Hill House", "Residential", "Austin", 400000), nil)
	require.NoError(t, err)

	page, err := f.svc.List(ctx, query.Criteria{Location: "Austin", Type: "Commercial"})
	require.NoError(t, err)
	require.Len(t, page.Properties, 1)
	assert.Equal(t, "Lakeview", page.Properties[0].Name)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, int64(1), page.TotalCount)
}

func TestListPriceRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i, price := range []float64{90000, 150000, 250000, 400000} {
		_, err := f.svc.Create(ctx, input(fmt.Sprintf("Unit %d", i), "Residential", "Austin", price), nil)
		require.NoError(t, err)
	}

	page, err := f.svc.List(ctx, query.Criteria{MinPrice: "100000", MaxPrice: "300000"})
	require.NoError(t, err)
	require.Len(t, page.Properties, 2)
	assert.Equal(t, 150000.0, page.Properties[0].Price)
	assert.Equal(t, 250000.0, page.Properties[1].Price)
	assert.Equal(t, 1, page.TotalPages)
}

func TestListEveryItemSatisfiesCriteria(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	types := []string{"Residential", "Commercial", "Industrial", "Land"}
	locations := []string{"Austin", "Waco"}
	for i := 0; i < 24; i++ {
		_, err := f.svc.Create(ctx, input(fmt.Sprintf("Lot %02d", i), types[i%4], locations[i%2], float64(i)*10000), nil)
		require.NoError(t, err)
	}

	names := func(page *models.PropertyPage) []string {
		out := make([]string, 0, len(page.Properties))
		for _, p := range page.Properties {
			assert.Equal(t, "Austin", p.Location, p.Name)
			assert.GreaterOrEqual(t, p.Price, 20000.0, p.Name)
			out = append(out, p.Name)
		}
		return out
	}

	criteria := query.Criteria{Location: "Austin", MinPrice: "20000", Search: "lot", Limit: "3"}
	page, err := f.svc.List(ctx, criteria)
	require.NoError(t, err)
	assert.Equal(t, []string{"Lot 02", "Lot 04", "Lot 06"}, names(page))
	assert.Equal(t, int64(11), page.TotalCount)
	assert.Equal(t, 4, page.TotalPages)

	criteria.Page = "4"
	last, err := f.svc.List(ctx, criteria)
	require.NoError(t, err)
	assert.Equal(t, []string{"Lot 20", "Lot 22"}, names(last))
	assert.Equal(t, 4, last.Page)
}

func TestListEmptyIsNoContent(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.List(context.Background(), query.Criteria{Location: "Nowhere"})
	assert.ErrorIs(t, err, apperrors.ErrNoContent)
}

func TestListRejectsMalformedCriteria(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.List(context.Background(), query.Criteria{MinPrice: "abc"})
	assert.True(t, apperrors.IsValidation(err))
	assert.Zero(t, f.repo.findCalled)
}

func TestDeletedPropertyIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, input("Lakeview", "Commercial", "Austin", 250000), upload(pngImage, "image/png"))
	require.NoError(t, err)
	imagePath := *created.ImagePath

	removed, err := f.svc.Delete(ctx, created.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, created.ID, removed.ID)
	f.drain(t)
	assert.False(t, f.store.Exists(imagePath), "image of deleted record must be reclaimed")

	_, err = f.svc.GetByID(ctx, created.ID.Hex())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = f.svc.Update(ctx, created.ID.Hex(), &models.PropertyPatch{Price: amount(1)}, nil)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = f.svc.Delete(ctx, created.ID.Hex())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUnknownIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, id := range []string{"not-hex", "64b7f0c2a1b2c3d4e5f60718"} {
		_, err := f.svc.GetByID(ctx, id)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		_, err = f.svc.Delete(ctx, id)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	}
}

func TestUpdateReplacesImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, input("Lakeview", "Commercial", "Austin", 250000), upload(pngImage, "image/png"))
	require.NoError(t, err)
	oldPath := *created.ImagePath

	name := "Lakeview Towers"
	updated, err := f.svc.Update(ctx, created.ID.Hex(), &models.PropertyPatch{Name: &name}, upload(gifImage, "image/gif"))
	require.NoError(t, err)
	f.drain(t)

	require.NotNil(t, updated.ImagePath)
	newPath := *updated.ImagePath
	assert.NotEqual(t, oldPath, newPath)
	assert.Equal(t, "Lakeview Towers", updated.Name)
	assert.Equal(t, 250000.0, updated.Price, "fields outside the patch are unchanged")
	assert.True(t, f.store.Exists(newPath))
	assert.False(t, f.store.Exists(oldPath))
	assert.Equal(t, []string{newPath}, f.storedFiles(t))

	got, err := f.svc.GetByID(ctx, created.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, newPath, *got.ImagePath)
	assert.Contains(t, f.cache.invalidated, created.ID.Hex())
}

func TestUpdateFieldsKeepsImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, input("Lakeview", "Commercial", "Austin", 250000), upload(pngImage, "image/png"))
	require.NoError(t, err)

	typ := "Industrial"
	updated, err := f.svc.Update(ctx, created.ID.Hex(), &models.PropertyPatch{Type: &typ}, nil)
	require.NoError(t, err)
	f.drain(t)

	assert.Equal(t, models.Industrial, updated.Type)
	assert.Equal(t, *created.ImagePath, *updated.ImagePath)
	assert.True(t, f.store.Exists(*created.ImagePath))
}

func TestUpdateRequiresChanges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, input("Lakeview", "Commercial", "Austin", 250000), nil)
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, created.ID.Hex(), &models.PropertyPatch{}, nil)
	assert.True(t, apperrors.IsValidation(err))
}

func TestUpdateMissingRecordStoresNothing(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Update(context.Background(), "64b7f0c2a1b2c3d4e5f60718", &models.PropertyPatch{}, upload(pngImage, "image/png"))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Empty(t, f.storedFiles(t))
}

func TestOversizedImageRejectedCitingSize(t *testing.T) {
	f := newFixture(t)

	data := append(append([]byte{}, pngImage...), bytes.Repeat([]byte{0}, 250*1024)...)
	_, err := f.svc.Create(context.Background(), input("Lakeview", "Commercial", "Austin", 250000), upload(data, "image/png"))

	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Error(), "size")
	assert.Empty(t, f.storedFiles(t))
	assert.Empty(t, f.repo.items)
}

func TestNonImageRejectedCitingType(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), input("Lakeview", "Commercial", "Austin", 250000), upload([]byte("plain text"), "text/plain"))

	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Error(), "type")
	assert.Empty(t, f.storedFiles(t))
	assert.Empty(t, f.repo.items)
}

func TestCreateRemovesImageWhenInsertFails(t *testing.T) {
	f := newFixture(t)
	f.repo.createErr = apperrors.NewStorageError("insert property", errors.New("connection reset"))

	_, err := f.svc.Create(context.Background(), input("Lakeview", "Commercial", "Austin", 250000), upload(pngImage, "image/png"))

	var storageErr *apperrors.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Empty(t, f.storedFiles(t))
}

func TestUpdateRemovesNewImageWhenWriteFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, input("Lakeview", "Commercial", "Austin", 250000), upload(pngImage, "image/png"))
	require.NoError(t, err)

	f.repo.updateErr = apperrors.NewStorageError("update property", errors.New("connection reset"))
	_, err = f.svc.Update(ctx, created.ID.Hex(), &models.PropertyPatch{}, upload(gifImage, "image/gif"))
	require.Error(t, err)
	f.drain(t)

	assert.Equal(t, []string{*created.ImagePath}, f.storedFiles(t), "only the original image remains")
}

type failingStore struct{}

func (failingStore) Save(context.Context, []byte) (string, error) {
	return "", errors.New("disk full")
}
func (failingStore) Delete(string) error { return nil }

func TestCreateImageStoreFailure(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewPropertyService(repo, &spyCache{}, validators.NewPropertyValidator(maxImageBytes), failingStore{}, NewImageReclaimer(failingStore{}), query.DefaultBounds)

	_, err := svc.Create(context.Background(), input("Lakeview", "Commercial", "Austin", 250000), upload(pngImage, "image/png"))

	var storageErr *apperrors.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Empty(t, repo.items, "no record is written when the image cannot be stored")
}

func TestUpdateReturnsStoredDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, input("Lakeview", "Commercial", "Austin", 250000), nil)
	require.NoError(t, err)

	f.repo.afterUpdate = func(items *[]models.Property, i int) {
		(*items)[i].Description = "edited concurrently"
	}
	newName := "Lakeview Plaza"
	updated, err := f.svc.Update(ctx, created.ID.Hex(), &models.PropertyPatch{Name: &newName}, nil)
	require.NoError(t, err)

	stored, err := f.repo.FindByID(ctx, created.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, stored, updated)
	assert.Equal(t, "Lakeview Plaza", updated.Name)
	assert.Equal(t, "edited concurrently", updated.Description)
}

func TestUpdateFallsBackWhenRecordVanishes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, input("Lakeview", "Commercial", "Austin", 250000), nil)
	require.NoError(t, err)

	f.repo.afterUpdate = func(items *[]models.Property, i int) {
		*items = append((*items)[:i], (*items)[i+1:]...)
	}
	newPrice := 260000.0
	updated, err := f.svc.Update(ctx, created.ID.Hex(), &models.PropertyPatch{Price: &newPrice}, nil)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, 260000.0, updated.Price)
	assert.Equal(t, "Lakeview", updated.Name)
}
