// Package carbon projects the environmental footprint of a product when a
// group of people keeps buying it, and translates the totals into everyday
// comparisons.
package carbon

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Product carries per-unit footprint factors.
type Product struct {
	Name          string  `json:"name"`
	CarbonPerUnit float64 `json:"carbon_per_unit"` // kg CO2e
	WaterPerUnit  float64 `json:"water_per_unit"`  // liters
	EnergyPerUnit float64 `json:"energy_per_unit"` // MJ
}

// DefaultProduct is used when the caller does not supply factors.
var DefaultProduct = Product{
	Name:          "Single-Use Plastic Water Bottle",
	CarbonPerUnit: 0.5,
	WaterPerUnit:  50,
	EnergyPerUnit: 5,
}

type Inputs struct {
	People           int `json:"people"`
	HouseholdSize    int `json:"household_size"`
	FrequencyPerWeek int `json:"frequency_per_week"`
	TimeframeDays    int `json:"timeframe_days"`
}

var DefaultInputs = Inputs{People: 1000, HouseholdSize: 3, FrequencyPerWeek: 7, TimeframeDays: 365}

type bound struct {
	name     string
	min, max int
}

var (
	peopleBound    = bound{"people", 100, 10000}
	householdBound = bound{"household_size", 1, 8}
	frequencyBound = bound{"frequency_per_week", 1, 21}
	timeframeBound = bound{"timeframe_days", 1, 730}
)

// OutOfRangeError reports an input outside its accepted range.
type OutOfRangeError struct {
	Field    string
	Value    int
	Min, Max int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s must be between %d and %d, got %d", e.Field, e.Min, e.Max, e.Value)
}

func (b bound) apply(v, def int) (int, error) {
	if v == 0 {
		return def, nil
	}
	if v < b.min || v > b.max {
		return 0, &OutOfRangeError{Field: b.name, Value: v, Min: b.min, Max: b.max}
	}
	return v, nil
}

// WithDefaults fills zero fields from DefaultInputs and validates the rest.
func (in Inputs) WithDefaults() (Inputs, error) {
	var err error
	out := in
	if out.People, err = peopleBound.apply(in.People, DefaultInputs.People); err != nil {
		return Inputs{}, err
	}
	if out.HouseholdSize, err = householdBound.apply(in.HouseholdSize, DefaultInputs.HouseholdSize); err != nil {
		return Inputs{}, err
	}
	if out.FrequencyPerWeek, err = frequencyBound.apply(in.FrequencyPerWeek, DefaultInputs.FrequencyPerWeek); err != nil {
		return Inputs{}, err
	}
	if out.TimeframeDays, err = timeframeBound.apply(in.TimeframeDays, DefaultInputs.TimeframeDays); err != nil {
		return Inputs{}, err
	}
	return out, nil
}

type Comparisons struct {
	Trees    int64 `json:"trees"`     // ~20 kg CO2 absorbed per tree per year
	CarMiles int64 `json:"car_miles"` // ~0.4 kg CO2 per mile
	Homes    int64 `json:"homes"`     // ~10,800 MJ per home per year
	Showers  int64 `json:"showers"`   // ~100 L per shower
}

type Impact struct {
	Product     Product     `json:"product"`
	Inputs      Inputs      `json:"inputs"`
	Units       float64     `json:"units"`
	CarbonKg    float64     `json:"carbon_kg"`
	WaterL      float64     `json:"water_liters"`
	EnergyMJ    float64     `json:"energy_mj"`
	Comparisons Comparisons `json:"comparisons"`
}

var (
	treeKg     = decimal.NewFromInt(20)
	carMilesKg = decimal.NewFromFloat(2.5)
	homeMJ     = decimal.NewFromInt(10800)
	showerL    = decimal.NewFromInt(100)
	week       = decimal.NewFromInt(7)
)

// Calculate projects the footprint of product over inputs. A zero-valued
// product means DefaultProduct.
func Calculate(product Product, in Inputs) (Impact, error) {
	in, err := in.WithDefaults()
	if err != nil {
		return Impact{}, err
	}
	if product == (Product{}) {
		product = DefaultProduct
	}
	if product.CarbonPerUnit < 0 || product.WaterPerUnit < 0 || product.EnergyPerUnit < 0 {
		return Impact{}, fmt.Errorf("per-unit factors must not be negative")
	}

	units := decimal.NewFromInt(int64(in.People)).
		Mul(decimal.NewFromInt(int64(in.HouseholdSize))).
		Mul(decimal.NewFromInt(int64(in.FrequencyPerWeek))).
		Mul(decimal.NewFromInt(int64(in.TimeframeDays))).
		Div(week)

	carbon := units.Mul(decimal.NewFromFloat(product.CarbonPerUnit))
	water := units.Mul(decimal.NewFromFloat(product.WaterPerUnit))
	energy := units.Mul(decimal.NewFromFloat(product.EnergyPerUnit))

	return Impact{
		Product:  product,
		Inputs:   in,
		Units:    units.Round(2).InexactFloat64(),
		CarbonKg: carbon.Round(2).InexactFloat64(),
		WaterL:   water.Round(2).InexactFloat64(),
		EnergyMJ: energy.Round(2).InexactFloat64(),
		Comparisons: Comparisons{
			Trees:    carbon.Div(treeKg).Round(0).IntPart(),
			CarMiles: carbon.Mul(carMilesKg).Round(0).IntPart(),
			Homes:    energy.Div(homeMJ).Round(0).IntPart(),
			Showers:  water.Div(showerL).Round(0).IntPart(),
		},
	}, nil
}
