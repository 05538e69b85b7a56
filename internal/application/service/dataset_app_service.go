// internal/application/service/dataset_app_service.go
package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/turtacn/riskboard/internal/application/dto"
	domainservice "github.com/turtacn/riskboard/internal/domain/service"
	"github.com/turtacn/riskboard/internal/infrastructure/export"
	"github.com/turtacn/riskboard/pkg/logger"
)

// DatasetAppService serves the dataset overview page.
// DatasetAppService 数据集概览应用服务接口。
type DatasetAppService interface {
	// ListDatasets lists every CSV dataset of the data directory.
	// ListDatasets 列出数据目录中的所有数据集。
	ListDatasets(ctx context.Context) (*dto.DatasetListResponse, error)

	// PreviewDataset returns a preview and the numeric summary of one dataset.
	// PreviewDataset 预览数据集并汇总数值列。
	PreviewDataset(ctx context.Context, name string) (*dto.DatasetPreviewResponse, error)

	// ExportDataset renders a whole dataset as a CSV or XLSX download.
	// ExportDataset 导出数据集。
	ExportDataset(ctx context.Context, name, format string) (*dto.ExportFile, error)
}

type datasetAppServiceImpl struct {
	source DatasetSource
	opts   Options
	logger logger.Logger
}

// NewDatasetAppService creates a new instance of DatasetAppService.
func NewDatasetAppService(source DatasetSource, opts Options, log logger.Logger) DatasetAppService {
	return &datasetAppServiceImpl{
		source: source,
		opts:   opts,
		logger: log.WithComponent("dataset_app_service"),
	}
}

func (s *datasetAppServiceImpl) ListDatasets(ctx context.Context) (*dto.DatasetListResponse, error) {
	ctx, span := s.opts.Tracer.StartSpan(ctx, "DatasetAppService.ListDatasets", nil)
	defer span.End()

	datasets, err := s.source.List(ctx)
	if err != nil {
		s.opts.Tracer.RecordError(ctx, err)
		s.logger.Error(ctx, "Failed to list datasets", err, logger.Fields{"dir": s.source.Dir()})
		return nil, err
	}

	resp := &dto.DatasetListResponse{Dir: s.source.Dir(), Datasets: make([]dto.DatasetInfo, 0, len(datasets))}
	for _, ds := range datasets {
		info := dto.DatasetInfo{Name: ds.Name, Size: ds.Size, ModTime: ds.ModTime}
		if !ds.Empty() {
			info.Rows, info.Columns = ds.Frame.Dims()
		}
		resp.Datasets = append(resp.Datasets, info)
	}
	span.SetAttributes(attribute.Int("datasets", len(resp.Datasets)))
	return resp, nil
}

func (s *datasetAppServiceImpl) PreviewDataset(ctx context.Context, name string) (*dto.DatasetPreviewResponse, error) {
	ctx, span := s.opts.Tracer.StartSpan(ctx, "DatasetAppService.PreviewDataset", map[string]interface{}{"dataset": name})
	defer span.End()

	ds, err := s.source.Get(ctx, name)
	if err != nil {
		s.opts.Tracer.RecordError(ctx, err)
		return nil, err
	}

	resp := &dto.DatasetPreviewResponse{
		Name:        ds.Name,
		ColumnNames: []string{},
		Preview:     dto.NewTableDTO(ds.Frame),
		Summary:     []dto.ColumnSummaryDTO{},
	}
	if ds.Empty() {
		s.logger.Debug(ctx, "Dataset is empty", logger.Fields{"dataset": name})
		return resp, nil
	}

	df := ds.Frame
	resp.Rows, resp.Columns = df.Dims()
	resp.ColumnNames = df.Names()
	resp.NumericColumns = len(domainservice.NumericColumns(df))
	resp.Sampled = resp.Rows > s.opts.PreviewRows && resp.Rows >= s.opts.SampleThreshold

	preview := domainservice.SampleOrHead(df, s.opts.PreviewRows, s.opts.SampleThreshold, domainservice.NewRand(s.opts.Seed))
	resp.Preview = dto.NewTableDTO(preview)
	resp.Summary = dto.NewColumnSummaries(domainservice.Describe(df))
	return resp, nil
}

func (s *datasetAppServiceImpl) ExportDataset(ctx context.Context, name, format string) (*dto.ExportFile, error) {
	ctx, span := s.opts.Tracer.StartSpan(ctx, "DatasetAppService.ExportDataset", map[string]interface{}{"dataset": name})
	defer span.End()

	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	ds, err := s.source.Get(ctx, name)
	if err != nil {
		s.opts.Tracer.RecordError(ctx, err)
		return nil, err
	}

	var data []byte
	err = s.opts.Tracer.TraceOperation(ctx, "export.Encode", map[string]interface{}{"format": string(f)}, func(context.Context) error {
		data, err = export.Encode(ds.Frame, f)
		return err
	})
	if err != nil {
		s.logger.Error(ctx, "Failed to encode dataset", err, logger.Fields{"dataset": name, "format": string(f)})
		return nil, err
	}
	return &dto.ExportFile{FileName: f.FileName(ds.Name), ContentType: f.ContentType(), Data: data}, nil
}
