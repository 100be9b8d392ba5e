package values

type Config interface {
}

// FilterValues задает пороговые значения для фильтрации обувных категорий по размерам.
// Границы 39.0/39.5 — эвристика европейской размерной сетки, поэтому вынесены в конфиг.
type FilterValues struct {
	WomenMaxSize      float64 `yaml:"women-max-size"`
	MenSizeMin        float64 `yaml:"men-min-size"`
	MenShoesRootID    int     `yaml:"men-shoes-root"`
	WomenShoesRootID  int     `yaml:"women-shoes-root"`
	OneSizeCategories []int   `yaml:"one-size-categories"`
}

func DefaultFilterValues() FilterValues {
	return FilterValues{
		WomenMaxSize:     39.0,
		MenSizeMin:       39.5,
		MenShoesRootID:   101,
		WomenShoesRootID: 102,
		// Аксессуары: рюкзаки, кепки, шапки, кошельки, сумки (мужская и женская ветки)
		OneSizeCategories: []int{119, 123, 124, 125, 131, 132, 133, 1182, 1183},
	}
}

// NormalizerValues — настройки нормализатора. Набор обозначений ширины обуви
// не гарантированно полон, поэтому это конфигурация, а не константы.
type NormalizerValues struct {
	WidthTokens []string `yaml:"width-tokens"`
}

func DefaultNormalizerValues() NormalizerValues {
	return NormalizerValues{
		WidthTokens: []string{"D", "E", "W", "EE", "EEE", "2E", "3E", "4E", "D宽", "E宽", "2E宽", "宽", "窄"},
	}
}

// PricingValues описывает параметры и формулы расчёта розничной цены.
type PricingValues struct {
	Parameters map[string]float64 `yaml:"parameters"`
	Formulas   FormulaSet         `yaml:"formulas"`
}

type FormulaSet struct {
	// срок доставки -> формула
	Default map[string]string `yaml:"default"`
	// id категории -> (срок доставки -> формула)
	Categories map[string]map[string]string `yaml:"categories"`
}

func DefaultPricingValues() PricingValues {
	return PricingValues{
		Parameters: map[string]float64{"a": 12, "b": 1.2, "c": 6},
		Formulas: FormulaSet{
			Default: map[string]string{
				"21-26 дней": "(x * a + 400) * b",
				"10-14 дней": "(x * a + 400) * b + 600",
			},
			Categories: map[string]map[string]string{},
		},
	}
}
