package services

import (
	"context"
	"errors"
	"io/fs"
	"sync"

	"property-catalog/internal/utils"
	"property-catalog/pkg/logger"
)

// ImageDeleter removes a stored image by relative path.
type ImageDeleter interface {
	Delete(path string) error
}

// ImageReclaimer deletes images that no record references any more. Deletes
// run in the background, detached from the request that triggered them.
type ImageReclaimer struct {
	images ImageDeleter
	wg     sync.WaitGroup
}

func NewImageReclaimer(images ImageDeleter) *ImageReclaimer {
	return &ImageReclaimer{images: images}
}

// Reclaim schedules path for deletion. Failures are logged, never returned.
func (r *ImageReclaimer) Reclaim(path string) {
	if path == "" {
		return
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		err := r.images.Delete(path)
		if errors.Is(err, fs.ErrNotExist) {
			logger.GlobalLogger.Debugf("image %s already gone", path)
			err = nil
		}
		utils.RecordFileStoreOperation("reclaim", err)
		if err != nil {
			logger.GlobalLogger.Warnf("failed to reclaim image %s: %v", path, err)
			return
		}
		logger.GlobalLogger.Debugf("reclaimed image %s", path)
	}()
}

// Wait blocks until every scheduled delete has finished or ctx is done.
func (r *ImageReclaimer) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
