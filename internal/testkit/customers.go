// Package testkit generates seeded synthetic datasets for tests and demos.
package testkit

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"edabench/domain/dataset"
)

// CustomerGeneratorConfig configures the customer survey generator
type CustomerGeneratorConfig struct {
	CustomerCount int       `json:"customer_count"`
	MissingRate   float64   `json:"missing_rate"` // share of missing cells in age and income
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	Seed          int64     `json:"seed"`
}

// DefaultCustomerConfig returns sensible defaults for customer generation
func DefaultCustomerConfig() CustomerGeneratorConfig {
	return CustomerGeneratorConfig{
		CustomerCount: 200,
		MissingRate:   0.05,
		StartDate:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC),
		Seed:          42,
	}
}

// CustomerDataGenerator produces a survey-style table with planted effects:
// income rises with age, satisfaction depends on region, and members spend more.
type CustomerDataGenerator struct {
	config CustomerGeneratorConfig
	rng    *rand.Rand
}

// NewCustomerDataGenerator creates a generator
func NewCustomerDataGenerator(config CustomerGeneratorConfig) *CustomerDataGenerator {
	return &CustomerDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

var (
	regions  = []string{"North", "South", "East", "West"}
	channels = []string{"web", "store", "phone"}
	// regional satisfaction shift on a 1-5 scale
	regionShift = map[string]float64{"North": 0.8, "South": -0.6, "East": 0, "West": 0.2}
)

// Generate builds the dataset. Columns: customer_id, age, income, region,
// channel, member, satisfaction, spend, signup.
func (g *CustomerDataGenerator) Generate() (*dataset.Dataset, error) {
	n := g.config.CustomerCount
	if n < 1 {
		return nil, fmt.Errorf("customer count must be positive, got %d", n)
	}

	ids := make([]string, n)
	age := make([]float64, n)
	income := make([]float64, n)
	region := make([]string, n)
	channel := make([]string, n)
	member := make([]bool, n)
	satisfaction := make([]float64, n)
	spend := make([]float64, n)
	signup := make([]time.Time, n)

	for i := 0; i < n; i++ {
		ids[i] = fmt.Sprintf("customer_%04d", i+1)
		a := math.Round(clamp(40+g.rng.NormFloat64()*12, 18, 80))
		age[i] = a
		income[i] = math.Round(1500 + a*45 + g.rng.NormFloat64()*400)
		region[i] = regions[g.rng.Intn(len(regions))]
		channel[i] = channels[g.rng.Intn(len(channels))]
		member[i] = g.rng.Float64() < 0.4

		s := 3 + regionShift[region[i]] + g.rng.NormFloat64()*0.7
		satisfaction[i] = math.Round(clamp(s, 1, 5))

		base := 80 + 0.02*income[i] + g.rng.NormFloat64()*15
		if member[i] {
			base += 40
		}
		spend[i] = math.Round(base*100) / 100
		signup[i] = g.randomTimeInRange(g.config.StartDate, g.config.EndDate)

		if g.rng.Float64() < g.config.MissingRate {
			age[i] = math.NaN()
		}
		if g.rng.Float64() < g.config.MissingRate {
			income[i] = math.NaN()
		}
	}

	return dataset.New("customers",
		dataset.NewCategorical("customer_id", ids, nil),
		dataset.NewNumeric("age", age),
		dataset.NewNumeric("income", income),
		dataset.NewCategorical("region", region, nil),
		dataset.NewCategorical("channel", channel, nil),
		dataset.NewBoolean("member", member, nil),
		dataset.NewNumeric("satisfaction", satisfaction),
		dataset.NewNumeric("spend", spend),
		dataset.NewTemporal("signup", signup, nil),
	)
}

func (g *CustomerDataGenerator) randomTimeInRange(start, end time.Time) time.Time {
	span := end.Sub(start)
	if span <= 0 {
		return start
	}
	return start.Add(time.Duration(g.rng.Int63n(int64(span)))).Truncate(time.Minute)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
