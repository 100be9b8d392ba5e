package pricing

import (
	"io"
	"math"
	"sort"
	"strconv"

	"plummymarket_api/config/values"
	"plummymarket_api/pkg/logger"
)

// Множитель, на который откатываемся при любой ошибке вычисления формулы.
const fallbackMultiplier = 2.5

// PriceFormulaEngine пересчитывает закупочную цену в розничную по
// конфигурируемым формулам. Формула выбирается по паре (категория, срок
// доставки); при отсутствии категорийной формулы берётся формула срока
// по умолчанию. Конфигурация неизменяема после конструирования.
type PriceFormulaEngine struct {
	parameters       map[string]float64
	defaultFormulas  map[string]string
	categoryFormulas map[string]map[string]string
	deliveryTiers    []string
	log              logger.Logger
}

func NewPriceFormulaEngine(pricing values.PricingValues, writer io.Writer) *PriceFormulaEngine {
	if len(pricing.Parameters) == 0 && len(pricing.Formulas.Default) == 0 {
		pricing = values.DefaultPricingValues()
	}

	tiers := make([]string, 0, len(pricing.Formulas.Default))
	for tier := range pricing.Formulas.Default {
		tiers = append(tiers, tier)
	}
	sort.Strings(tiers)

	_log := logger.NewLogger(writer, "[PriceFormulaEngine]")
	_log.Log("Загружены формулы для %d категорий, сроки доставки: %v", len(pricing.Formulas.Categories), tiers)

	return &PriceFormulaEngine{
		parameters:       pricing.Parameters,
		defaultFormulas:  pricing.Formulas.Default,
		categoryFormulas: pricing.Formulas.Categories,
		deliveryTiers:    tiers,
		log:              _log,
	}
}

// GetFormula возвращает формулу для категории и срока доставки.
func (e *PriceFormulaEngine) GetFormula(categoryID int, deliveryTier string) string {
	categoryKey := strconv.Itoa(categoryID)
	if tierFormulas, ok := e.categoryFormulas[categoryKey]; ok {
		if formula, ok := tierFormulas[deliveryTier]; ok {
			return formula
		}
	}
	if formula, ok := e.defaultFormulas[deliveryTier]; ok {
		return formula
	}
	return "(x * a + 400) * b"
}

// CalculatePrice вычисляет розничную цену. Ошибки формулы не поднимаются
// наверх: логируются и заменяются линейным множителем.
func (e *PriceFormulaEngine) CalculatePrice(basePrice float64, categoryID int, deliveryTier string) float64 {
	formula := e.GetFormula(categoryID, deliveryTier)

	vars := make(map[string]float64, len(e.parameters)+1)
	for name, value := range e.parameters {
		vars[name] = value
	}
	vars["x"] = basePrice

	result, err := EvaluateFormula(formula, vars)
	if err != nil {
		e.log.Log("Ошибка вычисления формулы %q: %v", formula, err)
		return round2(basePrice * fallbackMultiplier)
	}
	return round2(result)
}

// CalculateForAllTiers вычисляет цену для каждого настроенного срока доставки.
func (e *PriceFormulaEngine) CalculateForAllTiers(basePrice float64, categoryID int) map[string]float64 {
	prices := make(map[string]float64, len(e.deliveryTiers))
	for _, tier := range e.deliveryTiers {
		prices[tier] = e.CalculatePrice(basePrice, categoryID, tier)
	}
	return prices
}

// DeliveryTiers возвращает настроенные сроки доставки.
func (e *PriceFormulaEngine) DeliveryTiers() []string {
	tiers := make([]string, len(e.deliveryTiers))
	copy(tiers, e.deliveryTiers)
	return tiers
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
