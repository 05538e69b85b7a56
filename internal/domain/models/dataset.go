package models

import (
	"time"

	"github.com/go-gota/gota/dataframe"
)

// Dataset is a table loaded from a CSV file in the data directory.
type Dataset struct {
	Name    string              `json:"name"`
	Path    string              `json:"path"`
	ModTime time.Time           `json:"mod_time"`
	Size    int64               `json:"size"`
	Frame   dataframe.DataFrame `json:"-"`
}

// Empty reports whether the dataset has no rows.
func (d *Dataset) Empty() bool {
	return d == nil || d.Frame.Err != nil || d.Frame.Nrow() == 0
}

// ColumnSummary holds describe-style statistics of a numeric column.
// Statistics are computed over non-missing values only.
type ColumnSummary struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q25    float64 `json:"q25"`
	Median float64 `json:"median"`
	Q75    float64 `json:"q75"`
	Max    float64 `json:"max"`
}

// StateValue is one choropleth cell.
type StateValue struct {
	State string  `json:"state"`
	Value float64 `json:"value"`
}

// GeoPoint is one county-level map point. Weight is 1 without a value column.
type GeoPoint struct {
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Weight float64 `json:"weight"`
}

// Layer types understood by the map front end.
const (
	LayerHeatmap     = "HeatmapLayer"
	LayerScatterplot = "ScatterplotLayer"
)

// CountyLayer describes a county map layer centred on the mean coordinate.
type CountyLayer struct {
	LayerType string     `json:"layer_type"`
	CenterLat float64    `json:"center_lat"`
	CenterLon float64    `json:"center_lon"`
	Zoom      int        `json:"zoom"`
	Points    []GeoPoint `json:"points"`
}
