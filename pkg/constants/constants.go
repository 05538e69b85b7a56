// Package constants defines system-wide constants for the riskboard service.
// This package provides type-safe constant definitions used across all modules.
package constants

import "time"

// ================================================================================
// Column Name Constants
// ================================================================================

const (
	// ColumnRevenue is the canonical revenue field of an entity table
	ColumnRevenue = "revenue"

	// ColumnEmployees is the canonical head-count field of an entity table
	ColumnEmployees = "employees"

	// ColumnFounders is the canonical founder-count field of an entity table
	ColumnFounders = "founders"

	// ColumnLastFunding is the canonical last funding amount field of an entity table
	ColumnLastFunding = "last_funding"

	// ColumnRiskScore is the derived composite risk column
	ColumnRiskScore = "risk_score"

	// ColumnClusterLabel is the cluster tag of a cluster table
	ColumnClusterLabel = "cluster_label"

	// ColumnCluster and ColumnCount name the frequency table columns
	ColumnCluster = "cluster"
	ColumnCount   = "count"

	// ColumnPCA1 and ColumnPCA2 name the projection coordinate columns
	ColumnPCA1 = "PCA1"
	ColumnPCA2 = "PCA2"

	// Startup explorer descriptive fields
	ColumnCompany = "company"
	ColumnSector  = "sector"
	ColumnStage   = "stage"
	ColumnCountry = "country"

	// Alternate revenue and funding names used by the processed datasets
	ColumnRevenueMUSD     = "revenue_musd"
	ColumnLastFundingMUSD = "last_funding_musd"
)

// ================================================================================
// Dataset Name Constants
// ================================================================================

const (
	DatasetClusterValidation    = "cluster_validation_dataset"
	DatasetStateHeatmap         = "state_heatmap_data"
	DatasetCountyHeatmap        = "county_heatmap_data"
	DatasetInvestmentCandidates = "investment_candidates_analysis"
	DatasetIndustryUndercap     = "industry_undercap_analysis"
	DatasetSectorOpportunity    = "sector_opportunity_matrix"
)

// ================================================================================
// Scoring Constants
// ================================================================================

const (
	// ScoringPolicyVersion identifies the weight set below. Bump it whenever a weight changes.
	ScoringPolicyVersion = "v1"

	WeightRevenue     = 0.40
	WeightEmployees   = 0.35
	WeightLastFunding = 0.15
	WeightFounders    = 0.10

	// NormalizationEpsilon keeps min-max normalization finite on constant series
	NormalizationEpsilon = 1e-9

	// NeutralNormalizedValue is used for series with no observed values
	NeutralNormalizedValue = 0.5

	// DefaultFounders replaces a missing founder count
	DefaultFounders = 1.0

	RiskScoreMin = 0.0
	RiskScoreMax = 100.0
)

// MissingPolicy controls how a NaN that survives normalization affects the composite.
type MissingPolicy string

const (
	// MissingPolicyPropagate leaves the record's risk score as NaN
	MissingPolicyPropagate MissingPolicy = "propagate"

	// MissingPolicyNeutral substitutes NeutralNormalizedValue for the missing term
	MissingPolicyNeutral MissingPolicy = "neutral"
)

// ================================================================================
// Dashboard Defaults
// ================================================================================

const (
	DefaultPreviewRows               = 10
	DefaultSampleThreshold           = 50
	DefaultSampleSize                = 120
	MaxSampleSize                    = 10000
	DefaultSeed                int64 = 42
	DefaultHistogramBins             = 25
	DefaultCandidateRows             = 50
	DefaultSummaryRows               = 5
	DemoClusterRows                  = 20
	ProjectionComponents             = 2
	NoticeInsufficientFeatures       = "Not enough numeric columns for PCA visualization."
	NoticeDemoClusterData            = "Using demo data because cluster dataset is empty or missing 'cluster_label'."
	DefaultExportFileName            = "startups"
	DefaultUploadLimit               = 10 << 20
	DefaultTableCacheTTL             = 10 * time.Minute
	DefaultTableCacheCleanup         = 20 * time.Minute
	DefaultExportCacheTTL            = time.Hour
	DefaultShutdownTimeout           = 30 * time.Second
)

// ================================================================================
// Error Code Constants
// ================================================================================

// ErrorCode represents a machine-readable error code returned by the API
type ErrorCode string

const (
	ErrCodeInvalidRequest     ErrorCode = "invalid_request"
	ErrCodeNotFound           ErrorCode = "not_found"
	ErrCodeUnsupportedFormat  ErrorCode = "unsupported_format"
	ErrCodePayloadTooLarge    ErrorCode = "payload_too_large"
	ErrCodeInternal           ErrorCode = "internal_error"
	ErrCodeServiceUnavailable ErrorCode = "service_unavailable"
)

// ================================================================================
// Log Level Constants
// ================================================================================

// LogLevel represents a logging severity
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// ================================================================================
// Context Key Constants
// ================================================================================

// ContextKey is the type for request-scoped context values
type ContextKey string

const (
	ContextKeyRequestID ContextKey = "request_id"
	ContextKeyTraceID   ContextKey = "trace_id"
)

// HeaderRequestID carries the request id in and out of the API
const HeaderRequestID = "X-Request-ID"
