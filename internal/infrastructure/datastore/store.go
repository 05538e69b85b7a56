package datastore

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"golang.org/x/sync/errgroup"

	"github.com/turtacn/riskboard/internal/domain/models"
	"github.com/turtacn/riskboard/pkg/errors"
)

// Store is the dataset registry over one directory of CSV files.
type Store struct {
	dir         string
	cache       *TableCache
	concurrency int
}

// NewStore creates a store reading dir through cache.
func NewStore(dir string, cache *TableCache, concurrency int) *Store {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Store{dir: dir, cache: cache, concurrency: concurrency}
}

// Dir returns the data directory.
func (s *Store) Dir() string {
	return s.dir
}

// Names lists the dataset names in the directory, sorted.
func (s *Store) Names() ([]string, error) {
	files, err := ListCSVFiles(s.dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = DatasetName(f)
	}
	sort.Strings(names)
	return names, nil
}

// Get loads the named dataset. Unknown or invalid names are not found.
func (s *Store) Get(ctx context.Context, name string) (*models.Dataset, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		return nil, errors.ErrDatasetNotFound(name)
	}
	ds, err := s.cache.Get(ctx, filepath.Join(s.dir, name+".csv"))
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.ErrDatasetNotFound(name)
		}
		return nil, errors.Wrap(err, "load dataset")
	}
	return ds, nil
}

// Frame returns the named table, or an empty one when it cannot be loaded.
func (s *Store) Frame(ctx context.Context, name string) dataframe.DataFrame {
	ds, err := s.Get(ctx, name)
	if err != nil {
		return dataframe.DataFrame{}
	}
	return ds.Frame
}

// List loads every dataset in the directory concurrently, in name order.
func (s *Store) List(ctx context.Context) ([]*models.Dataset, error) {
	names, err := s.Names()
	if err != nil {
		return nil, err
	}

	out := make([]*models.Dataset, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, name := range names {
		g.Go(func() error {
			ds, err := s.Get(gctx, name)
			if err != nil {
				return err
			}
			out[i] = ds
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Check verifies the data directory is readable.
func (s *Store) Check() error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("data dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data dir %s is not a directory", s.dir)
	}
	return nil
}
