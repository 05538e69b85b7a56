// Package datastore discovers and loads the CSV tables the dashboard reads.
// Tables are cached per path and reloaded when the file changes on disk.
package datastore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-gota/gota/dataframe"
	"golang.org/x/sync/errgroup"

	"github.com/turtacn/riskboard/internal/domain/models"
	"github.com/turtacn/riskboard/pkg/logger"
)

// Recorder receives load and cache outcomes. *monitoring.Metrics satisfies it.
type Recorder interface {
	RecordDatasetLoad(success bool)
	RecordCacheAccess(hit bool)
}

type nopRecorder struct{}

func (nopRecorder) RecordDatasetLoad(bool) {}
func (nopRecorder) RecordCacheAccess(bool) {}

// NopRecorder discards every observation.
func NopRecorder() Recorder { return nopRecorder{} }

var missingTokens = []string{"", "NA", "NaN", "nan", "null", "NULL"}

// Loader parses CSV files into tables.
type Loader struct {
	logger      logger.Logger
	metrics     Recorder
	concurrency int
}

// NewLoader creates a loader reading at most concurrency files at once.
func NewLoader(log logger.Logger, metrics Recorder, concurrency int) *Loader {
	if metrics == nil {
		metrics = NopRecorder()
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Loader{logger: log.WithComponent("datastore"), metrics: metrics, concurrency: concurrency}
}

// ListCSVFiles returns the .csv files directly under dir in name order.
// A missing directory has no files.
func ListCSVFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read data dir %s: %w", dir, err)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !IsCSV(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

// IsCSV reports whether name has a .csv extension.
func IsCSV(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".csv")
}

// DatasetName is the file stem of path.
func DatasetName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// LoadCSV reads path into a table. Unreadable or malformed files are logged and come back empty.
func (l *Loader) LoadCSV(ctx context.Context, path string) dataframe.DataFrame {
	f, err := os.Open(path)
	if err != nil {
		l.logger.Warn(ctx, "Failed to open dataset", logger.Fields{"path": path, "error": err.Error()})
		l.metrics.RecordDatasetLoad(false)
		return dataframe.DataFrame{}
	}
	defer f.Close()

	return l.ReadCSV(ctx, f, path)
}

// ReadCSV parses an already opened CSV stream; source names it in logs.
func (l *Loader) ReadCSV(ctx context.Context, r io.Reader, source string) dataframe.DataFrame {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.NaNValues(missingTokens),
	)
	if df.Err != nil {
		l.logger.Warn(ctx, "Failed to parse dataset", logger.Fields{"path": source, "error": df.Err.Error()})
		l.metrics.RecordDatasetLoad(false)
		return dataframe.DataFrame{}
	}
	l.metrics.RecordDatasetLoad(true)
	l.logger.Debug(ctx, "Dataset loaded", logger.Fields{"path": source, "rows": df.Nrow(), "columns": df.Ncol()})
	return df
}

// LoadAll loads every CSV under dir concurrently, keyed by file stem.
func (l *Loader) LoadAll(ctx context.Context, dir string) (map[string]*models.Dataset, error) {
	files, err := ListCSVFiles(dir)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	out := make(map[string]*models.Dataset, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for _, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ds := &models.Dataset{Name: DatasetName(path), Path: path}
			if info, err := os.Stat(path); err == nil {
				ds.ModTime = info.ModTime()
				ds.Size = info.Size()
			}
			ds.Frame = l.LoadCSV(gctx, path)

			mu.Lock()
			out[ds.Name] = ds
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
