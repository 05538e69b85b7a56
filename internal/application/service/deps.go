package service

import (
	"context"
	"io"

	"github.com/go-gota/gota/dataframe"
	"go.opentelemetry.io/otel/trace"

	"github.com/turtacn/riskboard/internal/config"
	"github.com/turtacn/riskboard/internal/domain/models"
	"github.com/turtacn/riskboard/internal/infrastructure/monitoring"
	"github.com/turtacn/riskboard/pkg/constants"
	"github.com/turtacn/riskboard/pkg/logger"
)

// DatasetSource resolves dataset names to loaded tables.
type DatasetSource interface {
	Dir() string
	Names() ([]string, error)
	Get(ctx context.Context, name string) (*models.Dataset, error)
	Frame(ctx context.Context, name string) dataframe.DataFrame
	List(ctx context.Context) ([]*models.Dataset, error)
}

// TableReader parses an uploaded CSV stream. Malformed input yields an empty table.
type TableReader interface {
	ReadCSV(ctx context.Context, r io.Reader, source string) dataframe.DataFrame
}

// ExportCache stores rendered exports keyed by content.
type ExportCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte) error
}

// Metrics receives scoring and projection outcomes.
type Metrics interface {
	RecordScoreRun(source string, rows int)
	RecordProjection(result string)
}

// Tracer starts the spans of application operations. *monitoring.TracingManager implements it.
type Tracer interface {
	StartSpan(ctx context.Context, spanName string, attrs map[string]interface{}) (context.Context, trace.Span)
	RecordError(ctx context.Context, err error)
	TraceOperation(ctx context.Context, operationName string, attrs map[string]interface{}, fn func(context.Context) error) error
}

type nopMetrics struct{}

func (nopMetrics) RecordScoreRun(string, int) {}
func (nopMetrics) RecordProjection(string)    {}

// Score sources and projection outcomes reported to Metrics.
const (
	SourceUpload  = "upload"
	SourceSample  = "sample"
	SourceDataset = "dataset"

	ProjectionProjected = "projected"
	ProjectionSkipped   = "skipped"
	ProjectionDemo      = "demo"
)

// Options are the tunables shared by the application services.
type Options struct {
	PreviewRows     int
	SampleThreshold int
	SampleSize      int
	MaxSampleSize   int
	Seed            int64
	HistogramBins   int
	MissingPolicy   constants.MissingPolicy
	Tracer          Tracer
}

// DefaultOptions returns the built-in tunables.
func DefaultOptions() Options {
	return Options{
		PreviewRows:     constants.DefaultPreviewRows,
		SampleThreshold: constants.DefaultSampleThreshold,
		SampleSize:      constants.DefaultSampleSize,
		MaxSampleSize:   constants.MaxSampleSize,
		Seed:            constants.DefaultSeed,
		HistogramBins:   constants.DefaultHistogramBins,
		MissingPolicy:   constants.MissingPolicyPropagate,
		Tracer:          monitoring.NewGlobalTracingManager(logger.NewNoopLogger()),
	}
}

// OptionsFromConfig maps the loaded configuration onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	opts := DefaultOptions()
	if cfg.Data.PreviewRows > 0 {
		opts.PreviewRows = cfg.Data.PreviewRows
	}
	if cfg.Data.SampleThreshold > 0 {
		opts.SampleThreshold = cfg.Data.SampleThreshold
	}
	if cfg.Scoring.SampleSize > 0 {
		opts.SampleSize = cfg.Scoring.SampleSize
	}
	opts.Seed = cfg.Scoring.Seed
	opts.MissingPolicy = cfg.Scoring.Policy()
	return opts
}
