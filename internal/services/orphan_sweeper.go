package services

import (
	"context"
	"fmt"
	"time"

	"property-catalog/internal/utils"
	"property-catalog/pkg/filestore"
	"property-catalog/pkg/logger"
	"property-catalog/pkg/metrics"
)

// ImagePathSource reports every image path still referenced by a record.
type ImagePathSource interface {
	ImagePaths(ctx context.Context) ([]string, error)
}

// ImageInventory lists and deletes stored images.
type ImageInventory interface {
	List() ([]filestore.FileInfo, error)
	Delete(path string) error
}

// SweepResult summarises one orphan sweep.
type SweepResult struct {
	Scanned    int           `json:"scanned"`
	Referenced int           `json:"referenced"`
	Deleted    []string      `json:"deleted"`
	Skipped    int           `json:"skipped"`
	Errors     []string      `json:"errors,omitempty"`
	DryRun     bool          `json:"dryRun"`
	Duration   time.Duration `json:"duration"`
}

// OrphanSweeper removes stored images that no record references. Files
// younger than the grace period are left alone so uploads whose record
// insert is still in flight survive.
type OrphanSweeper struct {
	paths  ImagePathSource
	files  ImageInventory
	grace  time.Duration
	dryRun bool
	now    func() time.Time
}

func NewOrphanSweeper(paths ImagePathSource, files ImageInventory, grace time.Duration, dryRun bool) *OrphanSweeper {
	return &OrphanSweeper{
		paths:  paths,
		files:  files,
		grace:  grace,
		dryRun: dryRun,
		now:    time.Now,
	}
}

func (s *OrphanSweeper) Sweep(ctx context.Context) (*SweepResult, error) {
	started := s.now()
	result := &SweepResult{DryRun: s.dryRun, Deleted: []string{}}

	referenced, err := s.paths.ImagePaths(ctx)
	if err != nil {
		return nil, utils.WrapError(err, "failed to load referenced images")
	}
	inUse := make(map[string]struct{}, len(referenced))
	for _, p := range referenced {
		inUse[p] = struct{}{}
	}

	files, err := s.files.List()
	if err != nil {
		return nil, utils.WrapError(err, "failed to list stored images")
	}

	cutoff := started.Add(-s.grace)
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Scanned++
		if _, ok := inUse[f.Path]; ok {
			result.Referenced++
			continue
		}
		if f.ModTime.After(cutoff) {
			result.Skipped++
			continue
		}
		if s.dryRun {
			result.Deleted = append(result.Deleted, f.Path)
			continue
		}
		err := s.files.Delete(f.Path)
		utils.RecordFileStoreOperation("sweep", err)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", f.Path, err))
			continue
		}
		metrics.OrphanedImagesDeletedTotal.Inc()
		result.Deleted = append(result.Deleted, f.Path)
	}

	result.Duration = s.now().Sub(started)
	logger.GlobalLogger.Printf("orphan sweep: scanned=%d referenced=%d deleted=%d skipped=%d errors=%d dry_run=%t",
		result.Scanned, result.Referenced, len(result.Deleted), result.Skipped, len(result.Errors), s.dryRun)
	return result, nil
}
