package service

import (
	"math"

	"github.com/go-gota/gota/dataframe"

	"github.com/turtacn/riskboard/internal/domain/models"
)

const defaultMapZoom = 4

// StateValues extracts (state, value) pairs for a choropleth.
// It reports false when either column cannot be resolved.
func StateValues(df dataframe.DataFrame, aliases models.ColumnAliases) ([]models.StateValue, bool) {
	if IsEmptyFrame(df) {
		return nil, false
	}
	stateCol, okState := aliases.Resolve(df.Names(), models.GeoFieldState)
	valueCol, okValue := aliases.Resolve(df.Names(), models.GeoFieldValue)
	if !okState || !okValue {
		return nil, false
	}

	states := LabelStrings(df.Col(stateCol))
	values := FloatColumn(df, valueCol)
	out := make([]models.StateValue, 0, len(states))
	for i, state := range states {
		if state == "" || math.IsNaN(values[i]) {
			continue
		}
		out = append(out, models.StateValue{State: state, Value: values[i]})
	}
	return out, true
}

// CountyLayerOf builds a map layer from lat/lon columns, weighted by the value column when present.
// It reports false when latitude or longitude cannot be resolved.
func CountyLayerOf(df dataframe.DataFrame, aliases models.ColumnAliases) (*models.CountyLayer, bool) {
	if IsEmptyFrame(df) {
		return nil, false
	}
	latCol, okLat := aliases.Resolve(df.Names(), models.GeoFieldLat)
	lonCol, okLon := aliases.Resolve(df.Names(), models.GeoFieldLon)
	if !okLat || !okLon {
		return nil, false
	}

	lats := FloatColumn(df, latCol)
	lons := FloatColumn(df, lonCol)
	var weights []float64
	layer := &models.CountyLayer{LayerType: models.LayerScatterplot, Zoom: defaultMapZoom}
	if valueCol, ok := aliases.Resolve(df.Names(), models.GeoFieldValue); ok {
		weights = FloatColumn(df, valueCol)
		layer.LayerType = models.LayerHeatmap
	}

	var sumLat, sumLon float64
	for i := range lats {
		if math.IsNaN(lats[i]) || math.IsNaN(lons[i]) {
			continue
		}
		w := 1.0
		if weights != nil {
			w = weights[i]
			if math.IsNaN(w) {
				w = 0
			}
		}
		layer.Points = append(layer.Points, models.GeoPoint{Lat: lats[i], Lon: lons[i], Weight: w})
		sumLat += lats[i]
		sumLon += lons[i]
	}
	if n := len(layer.Points); n > 0 {
		layer.CenterLat = sumLat / float64(n)
		layer.CenterLon = sumLon / float64(n)
	}
	return layer, true
}
