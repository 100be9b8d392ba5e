package models

// SizeKind — вид размерного атрибута товара.
type SizeKind int

const (
	SizeKindShoe SizeKind = iota
	SizeKindClothing
	SizeKindAccessory
)

func (k SizeKind) String() string {
	switch k {
	case SizeKindShoe:
		return "shoes"
	case SizeKindClothing:
		return "clothing"
	case SizeKindAccessory:
		return "accessories"
	}
	return "unknown"
}

// SizeKindFromString — обратное преобразование для значений из БД.
func SizeKindFromString(s string) SizeKind {
	switch s {
	case "clothing":
		return SizeKindClothing
	case "accessories":
		return SizeKindAccessory
	}
	return SizeKindShoe
}

// OneSizeLabel присваивается единственному варианту аксессуара.
const OneSizeLabel = "ONE SIZE"

// Variant — нормализованный размерный вариант товара. Размерные поля после
// создания не меняются; путь обновления цен трогает только BasePrice/RetailPrice.
type Variant struct {
	SkuID       string
	SizeLabel   string
	SizeKind    SizeKind
	BasePrice   float64
	RetailPrice float64
	Available   bool
	StockStatus int
}

// NormalizedProduct — канонический результат нормализации одного SPU.
// DataComplete == false означает заглушку без вариантов.
type NormalizedProduct struct {
	ExternalID         string
	ReferenceVariantID string
	Title              string
	Brand              string
	ArticleNumber      string
	SourceCategoryID   int
	SourceCategoryName string
	Categories         []int
	Images             []string
	Variants           []Variant
	DataComplete       bool
}

// MainImageUrl — первая картинка либо пустая строка.
func (p *NormalizedProduct) MainImageUrl() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// SizeLabels возвращает метки размеров всех вариантов в их текущем порядке.
func (p *NormalizedProduct) SizeLabels() []string {
	labels := make([]string, 0, len(p.Variants))
	for _, v := range p.Variants {
		labels = append(labels, v.SizeLabel)
	}
	return labels
}

// ProcessingStats — сводка эффективности нормализации.
type ProcessingStats struct {
	Processed      int
	Valid          int
	Invalid        int
	Efficiency     float64
	InvalidReasons map[string]int
}
