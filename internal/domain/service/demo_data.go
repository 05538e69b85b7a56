package service

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/turtacn/riskboard/pkg/constants"
)

var (
	sampleSectors   = []string{"Fintech", "Health", "SaaS", "Marketplace", "AI", "Climate"}
	sampleStages    = []string{"Pre-seed", "Seed", "Series A", "Series B", "Growth"}
	sampleCountries = []string{"US", "UK", "DE", "FR", "IN", "CN"}
)

// NewRand returns a deterministic generator for seed.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
}

// DemoClusterFrame returns the 20-row stand-in cluster table: labels from {0,1,2},
// feature1 in [0,10) and feature2 in [0,5).
func DemoClusterFrame(seed int64) dataframe.DataFrame {
	rng := NewRand(seed)
	n := constants.DemoClusterRows
	labels := make([]int, n)
	f1 := make([]float64, n)
	f2 := make([]float64, n)
	for i := 0; i < n; i++ {
		labels[i] = rng.IntN(3)
	}
	for i := 0; i < n; i++ {
		f1[i] = rng.Float64() * 10
	}
	for i := 0; i < n; i++ {
		f2[i] = rng.Float64() * 5
	}
	return dataframe.New(
		series.New(labels, series.Int, constants.ColumnClusterLabel),
		series.New(f1, series.Float, "feature1"),
		series.New(f2, series.Float, "feature2"),
	)
}

// GenerateStartups returns n synthetic startups in the notebook column layout.
// Revenue spans roughly 0.1 to 316 M USD and last funding 0.01 to 100 M USD, log-uniformly.
func GenerateStartups(n int, seed int64) dataframe.DataFrame {
	if n <= 0 {
		return dataframe.DataFrame{}
	}
	rng := NewRand(seed)
	company := make([]string, n)
	sector := make([]string, n)
	stage := make([]string, n)
	country := make([]string, n)
	employees := make([]int, n)
	revenue := make([]float64, n)
	founders := make([]int, n)
	funding := make([]float64, n)

	for i := 0; i < n; i++ {
		company[i] = fmt.Sprintf("Startup %d", i+1)
		sector[i] = sampleSectors[rng.IntN(len(sampleSectors))]
		stage[i] = sampleStages[rng.IntN(len(sampleStages))]
		country[i] = sampleCountries[rng.IntN(len(sampleCountries))]
		employees[i] = 1 + rng.IntN(799)
		revenue[i] = round2(math.Pow(10, uniform(rng, -1, 2.5)))
		founders[i] = 1 + rng.IntN(4)
		funding[i] = round2(math.Pow(10, uniform(rng, -2, 2)))
	}

	return dataframe.New(
		series.New(company, series.String, constants.ColumnCompany),
		series.New(sector, series.String, constants.ColumnSector),
		series.New(stage, series.String, constants.ColumnStage),
		series.New(country, series.String, constants.ColumnCountry),
		series.New(employees, series.Int, constants.ColumnEmployees),
		series.New(revenue, series.Float, constants.ColumnRevenueMUSD),
		series.New(founders, series.Int, constants.ColumnFounders),
		series.New(funding, series.Float, constants.ColumnLastFundingMUSD),
	)
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}
