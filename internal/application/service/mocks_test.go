// internal/application/service/mocks_test.go
package service

import (
	"context"
	"io"
	"sort"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/stretchr/testify/mock"

	"github.com/turtacn/riskboard/internal/domain/models"
	"github.com/turtacn/riskboard/pkg/errors"
)

// memorySource serves in-memory tables by name.
type memorySource struct {
	frames map[string]dataframe.DataFrame
}

func newMemorySource(frames map[string]dataframe.DataFrame) *memorySource {
	if frames == nil {
		frames = map[string]dataframe.DataFrame{}
	}
	return &memorySource{frames: frames}
}

func (s *memorySource) Dir() string { return "memory" }

func (s *memorySource) Names() ([]string, error) {
	names := make([]string, 0, len(s.frames))
	for name := range s.frames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *memorySource) Get(_ context.Context, name string) (*models.Dataset, error) {
	df, ok := s.frames[name]
	if !ok {
		return nil, errors.ErrDatasetNotFound(name)
	}
	return &models.Dataset{Name: name, Path: name + ".csv", ModTime: time.Unix(0, 0), Frame: df}, nil
}

func (s *memorySource) Frame(ctx context.Context, name string) dataframe.DataFrame {
	ds, err := s.Get(ctx, name)
	if err != nil {
		return dataframe.DataFrame{}
	}
	return ds.Frame
}

func (s *memorySource) List(ctx context.Context) ([]*models.Dataset, error) {
	names, _ := s.Names()
	out := make([]*models.Dataset, 0, len(names))
	for _, name := range names {
		ds, _ := s.Get(ctx, name)
		out = append(out, ds)
	}
	return out, nil
}

type csvReader struct{}

func (csvReader) ReadCSV(_ context.Context, r io.Reader, _ string) dataframe.DataFrame {
	df := dataframe.ReadCSV(r)
	if df.Err != nil {
		return dataframe.DataFrame{}
	}
	return df
}

type MockExportCache struct {
	mock.Mock
}

func (m *MockExportCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	data, _ := args.Get(0).([]byte)
	return data, args.Bool(1), args.Error(2)
}

func (m *MockExportCache) Set(ctx context.Context, key string, data []byte) error {
	args := m.Called(ctx, key, data)
	return args.Error(0)
}

type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) RecordScoreRun(source string, rows int) {
	m.Called(source, rows)
}

func (m *MockMetrics) RecordProjection(result string) {
	m.Called(result)
}
