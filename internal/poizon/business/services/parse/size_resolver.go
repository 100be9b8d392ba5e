package parse

import (
	"regexp"
	"strconv"
	"strings"

	"plummymarket_api/internal/poizon/business/models"
)

// Размеры одежды, которые распознаются как таковые.
var clothingSizeTokens = map[string]struct{}{
	"XXXS": {}, "XXS": {}, "XS": {}, "S": {}, "M": {}, "L": {}, "XL": {},
	"XXL": {}, "XXXL": {}, "4XL": {}, "5XL": {}, "6XL": {}, "7XL": {},
}

// Порядок сортировки размеров одежды в готовом товаре.
var clothingSizeOrder = map[string]int{
	"XXXS": 1, "XXS": 2, "XS": 3, "S": 4, "M": 5, "L": 6, "XL": 7,
	"XXL": 8, "XXXL": 9, "4XL": 10, "5XL": 11, "6XL": 12, "7XL": 13,
}

// Числовой «хвост» идентификатора SKU, похожий на размер: 35, 36.5, 42 ...
var skuIDSizeRe = regexp.MustCompile(`(\d{2}(?:\.\d)?)\D*$`)

// Границы правдоподобного европейского размера обуви для fallback по SKU ID.
const (
	minShoeSize = 33.0
	maxShoeSize = 50.0
)

// SizeResolver извлекает размер SKU каскадом независимых шагов: выигрывает
// первый сработавший. Порядок шагов фиксирован и проверяется тестами
// по отдельности — это самая хрупкая часть нормализации.
type SizeResolver struct {
	widthTokens []string
}

func NewSizeResolver(widthTokens []string) *SizeResolver {
	return &SizeResolver{widthTokens: widthTokens}
}

type sizeStep func(sku models.SkuOffer, sizeByProperty map[string]string, kind models.SizeKind) (string, bool)

// Resolve возвращает метку размера либо false, если ни один шаг не сработал.
func (r *SizeResolver) Resolve(sku models.SkuOffer, sizeByProperty map[string]string, kind models.SizeKind) (string, bool) {
	steps := []sizeStep{
		r.fromPropertyMap,
		r.fromLevelTwoAttribute,
		r.fromAnyAttribute,
		r.fromAltFields,
		r.fromSkuID,
	}
	for _, step := range steps {
		if label, ok := step(sku, sizeByProperty, kind); ok {
			return label, true
		}
	}
	return "", false
}

// Шаг 1: прямой поиск propertyValueId в словаре размеров из saleProperties.
// Принимаем уровни 1 и 2: размер обычно level=2, но встречается и level=1.
func (r *SizeResolver) fromPropertyMap(sku models.SkuOffer, sizeByProperty map[string]string, _ models.SizeKind) (string, bool) {
	for _, prop := range sku.Properties {
		if prop.Level != 1 && prop.Level != 2 {
			continue
		}
		if label, ok := sizeByProperty[prop.PropertyValueID]; ok && label != "" {
			return label, true
		}
	}
	return "", false
}

// Шаг 2: значение атрибута level=2, кроме обозначений ширины обуви.
func (r *SizeResolver) fromLevelTwoAttribute(sku models.SkuOffer, _ map[string]string, _ models.SizeKind) (string, bool) {
	for _, prop := range sku.Properties {
		if prop.Level != 2 {
			continue
		}
		value := strings.TrimSpace(prop.Value)
		if value == "" {
			continue
		}
		if r.containsWidthToken(value) {
			continue
		}
		return value, true
	}
	return "", false
}

// Шаг 3: первое «похожее на размер» значение среди всех атрибутов SKU:
// ASCII, не длиннее 10 символов, не чисто буквенное, не ширина; для обуви
// обязательно содержит цифру.
func (r *SizeResolver) fromAnyAttribute(sku models.SkuOffer, _ map[string]string, kind models.SizeKind) (string, bool) {
	for _, prop := range sku.Properties {
		value := strings.TrimSpace(prop.Value)
		if value == "" {
			continue
		}
		if !isASCII(value) {
			continue
		}
		if len(value) > 10 {
			continue
		}
		if r.isWidthToken(value) {
			continue
		}
		if isAlphaOnly(value) {
			continue
		}
		if kind == models.SizeKindShoe && !containsDigit(value) {
			continue
		}
		return value, true
	}
	return "", false
}

// Шаг 4: альтернативные поля размера на самом SKU (size, sizeValue, ...),
// валидируемые теми же правилами, что и атрибуты.
func (r *SizeResolver) fromAltFields(sku models.SkuOffer, _ map[string]string, kind models.SizeKind) (string, bool) {
	for _, value := range sku.AltSizeFields {
		switch kind {
		case models.SizeKindShoe:
			if containsDigit(value) {
				return value, true
			}
		case models.SizeKindClothing:
			if _, ok := clothingSizeTokens[strings.ToUpper(value)]; ok {
				return value, true
			}
		}
	}
	return "", false
}

// Шаг 5, только обувь: числовой суффикс идентификатора SKU, если он
// укладывается в правдоподобный диапазон размеров.
func (r *SizeResolver) fromSkuID(sku models.SkuOffer, _ map[string]string, kind models.SizeKind) (string, bool) {
	if kind != models.SizeKindShoe {
		return "", false
	}
	match := skuIDSizeRe.FindStringSubmatch(sku.SkuID)
	if match == nil {
		return "", false
	}
	size, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return "", false
	}
	if size < minShoeSize || size > maxShoeSize {
		return "", false
	}
	return match[1], true
}

// containsWidthToken — мягкая проверка: значение содержит токен ширины
// как подстроку либо совпадает с ним без учёта регистра.
func (r *SizeResolver) containsWidthToken(value string) bool {
	upper := strings.ToUpper(value)
	for _, token := range r.widthTokens {
		if strings.Contains(value, token) || upper == strings.ToUpper(token) {
			return true
		}
	}
	return false
}

// isWidthToken — строгая проверка: точное совпадение без учёта регистра
// либо суффикс «宽» (ширина).
func (r *SizeResolver) isWidthToken(value string) bool {
	upper := strings.ToUpper(value)
	for _, token := range r.widthTokens {
		if upper == strings.ToUpper(token) {
			return true
		}
	}
	return strings.HasSuffix(upper, "宽")
}

// IsClothingSizeToken сообщает, распознаётся ли метка как размер одежды.
func IsClothingSizeToken(value string) bool {
	_, ok := clothingSizeTokens[strings.ToUpper(strings.TrimSpace(value))]
	return ok
}

// NormalizeShoeSize убирает хвост ".0" у целочисленных размеров: "40.0" -> "40".
func NormalizeShoeSize(label string) string {
	size, err := strconv.ParseFloat(label, 64)
	if err != nil {
		return label
	}
	if size == float64(int64(size)) {
		return strconv.FormatInt(int64(size), 10)
	}
	return label
}

func isASCII(value string) bool {
	for _, r := range value {
		if r > 127 {
			return false
		}
	}
	return true
}

func isAlphaOnly(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')) {
			return false
		}
	}
	return true
}

func containsDigit(value string) bool {
	for _, r := range value {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}
