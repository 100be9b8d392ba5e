package pricing

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plummymarket_api/config/values"
)

func TestCalculatePriceDefaultFormula(t *testing.T) {
	engine := NewPriceFormulaEngine(values.DefaultPricingValues(), io.Discard)

	// (100 * 12 + 400) * 1.2 = 1920
	assert.Equal(t, 1920.0, engine.CalculatePrice(100, 0, "21-26 дней"))
	// быстрая доставка: + 600
	assert.Equal(t, 2520.0, engine.CalculatePrice(100, 0, "10-14 дней"))
}

func TestCalculatePriceCategoryOverride(t *testing.T) {
	pricing := values.DefaultPricingValues()
	pricing.Formulas.Categories = map[string]map[string]string{
		"105": {"21-26 дней": "x * c"},
	}
	engine := NewPriceFormulaEngine(pricing, io.Discard)

	assert.Equal(t, 600.0, engine.CalculatePrice(100, 105, "21-26 дней"))
	// другой срок той же категории падает на формулу по умолчанию
	assert.Equal(t, 2520.0, engine.CalculatePrice(100, 105, "10-14 дней"))
	// другая категория не затронута
	assert.Equal(t, 1920.0, engine.CalculatePrice(100, 106, "21-26 дней"))
}

func TestCalculatePriceUnknownTierUsesUltimateFallback(t *testing.T) {
	engine := NewPriceFormulaEngine(values.DefaultPricingValues(), io.Discard)

	// незнакомый срок: формула (x * a + 400) * b
	assert.Equal(t, 1920.0, engine.CalculatePrice(100, 0, "99 дней"))
}

func TestCalculatePriceBrokenFormulaFallsBackToMultiplier(t *testing.T) {
	pricing := values.DefaultPricingValues()
	pricing.Formulas.Default["21-26 дней"] = "x * unknown_param"
	engine := NewPriceFormulaEngine(pricing, io.Discard)

	// ошибка вычисления: x * 2.5
	assert.Equal(t, 250.0, engine.CalculatePrice(100, 0, "21-26 дней"))
}

func TestCalculateForAllTiers(t *testing.T) {
	engine := NewPriceFormulaEngine(values.DefaultPricingValues(), io.Discard)

	prices := engine.CalculateForAllTiers(100, 0)
	require.Len(t, prices, 2)
	assert.Equal(t, 1920.0, prices["21-26 дней"])
	assert.Equal(t, 2520.0, prices["10-14 дней"])
}

func TestCalculatePriceRounding(t *testing.T) {
	pricing := values.PricingValues{
		Parameters: map[string]float64{"a": 1},
		Formulas: values.FormulaSet{
			Default: map[string]string{"срок": "x / 3"},
		},
	}
	engine := NewPriceFormulaEngine(pricing, io.Discard)

	assert.Equal(t, 33.33, engine.CalculatePrice(100, 0, "срок"))
}

func TestEvaluateFormula(t *testing.T) {
	vars := map[string]float64{"x": 100, "a": 12, "b": 1.2}

	tests := []struct {
		expr string
		want float64
	}{
		{expr: "(x * a + 400) * b", want: 1920},
		{expr: "x + a * b", want: 114.4},
		{expr: "-x + 150", want: 50},
		{expr: "(x - 40) / 2", want: 30},
		{expr: "2.5 * x", want: 250},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := EvaluateFormula(tt.expr, vars)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 0.0001)
		})
	}
}

func TestEvaluateFormulaErrors(t *testing.T) {
	vars := map[string]float64{"x": 100}

	bad := []string{
		"x / 0",
		"x * y",
		"x +",
		"(x + 1",
		"x; import",
		"100 200",
	}
	for _, expr := range bad {
		t.Run(expr, func(t *testing.T) {
			_, err := EvaluateFormula(expr, vars)
			assert.Error(t, err)
		})
	}
}
