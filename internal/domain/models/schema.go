package models

import (
	"strings"

	"github.com/turtacn/riskboard/pkg/constants"
)

// ColumnAliases maps a canonical field name to the column names accepted for it.
// Aliases are matched case-insensitively and exactly; earlier aliases take precedence.
type ColumnAliases map[string][]string

// Resolve returns the column in columns that satisfies field.
// The canonical name itself is always tried first.
func (a ColumnAliases) Resolve(columns []string, field string) (string, bool) {
	candidates := append([]string{field}, a[field]...)
	for _, alias := range candidates {
		for _, col := range columns {
			if strings.EqualFold(strings.TrimSpace(col), alias) {
				return col, true
			}
		}
	}
	return "", false
}

// Merge returns a copy of a with the entries of other appended per field.
func (a ColumnAliases) Merge(other ColumnAliases) ColumnAliases {
	out := make(ColumnAliases, len(a)+len(other))
	for k, v := range a {
		out[k] = append([]string(nil), v...)
	}
	for k, v := range other {
		out[k] = append(out[k], v...)
	}
	return out
}

// DefaultEntityAliases covers the column names produced by the startup notebooks.
func DefaultEntityAliases() ColumnAliases {
	return ColumnAliases{
		constants.ColumnRevenue:     {constants.ColumnRevenueMUSD},
		constants.ColumnEmployees:   nil,
		constants.ColumnFounders:    nil,
		constants.ColumnLastFunding: {constants.ColumnLastFundingMUSD},
	}
}

// Geographic fields resolved on the heatmap datasets.
const (
	GeoFieldValue = "value"
	GeoFieldState = "state"
	GeoFieldLat   = "lat"
	GeoFieldLon   = "lon"
)

// DefaultGeoAliases covers the heatmap dataset conventions.
func DefaultGeoAliases() ColumnAliases {
	return ColumnAliases{
		GeoFieldValue: {"score", "metric", "rate", "target"},
		GeoFieldState: {"state_code", "state_abbrev"},
		GeoFieldLat:   {"latitude"},
		GeoFieldLon:   {"lng", "longitude"},
	}
}
