package parse

import (
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"plummymarket_api/config/values"
	"plummymarket_api/internal/poizon/business/document"
	"plummymarket_api/internal/poizon/business/models"
	"plummymarket_api/internal/poizon/business/services/classify"
	"plummymarket_api/metrics"
	service "plummymarket_api/pkg/business/service"
	"plummymarket_api/pkg/logger"
)

// Имена свойств level=1, по которым отличаем цвет от размера.
var colorPropertyNames = map[string]struct{}{
	"颜色": {}, "Color": {}, "color": {},
}

var sizePropertyNames = map[string]struct{}{
	"尺码": {}, "尺寸": {}, "Size": {}, "size": {}, "码": {},
}

// ProductNormalizer превращает сырой upstream-документ в канонический товар.
// Сама нормализация — чистая функция над документом и неизменяемой
// конфигурацией; мьютекс защищает только счётчики статистики, поэтому
// документы можно нормализовать параллельно.
type ProductNormalizer struct {
	classifier *classify.CategoryClassifier
	text       *service.TextService
	resolver   *SizeResolver
	// retailFormula — опциональный пересчёт базовой цены в розничную на этапе
	// нормализации; nil означает, что розница считается позже, при публикации.
	retailFormula func(float64) float64
	log           logger.Logger

	mu             sync.Mutex
	processedCount int
	validCount     int
	invalidReasons map[string]int
}

func NewProductNormalizer(
	classifier *classify.CategoryClassifier,
	text *service.TextService,
	normalizerValues values.NormalizerValues,
	retailFormula func(float64) float64,
	writer io.Writer,
) *ProductNormalizer {
	return &ProductNormalizer{
		classifier:     classifier,
		text:           text,
		resolver:       NewSizeResolver(normalizerValues.WidthTokens),
		retailFormula:  retailFormula,
		log:            logger.NewLogger(writer, "[ProductNormalizer]"),
		invalidReasons: make(map[string]int),
	}
}

// Normalize обрабатывает один документ. referenceVariantID и categoryIDs —
// операторский ввод; оба опциональны. Возвращается либо полностью
// заполненный товар, либо типизированный отказ — частичных результатов нет.
func (n *ProductNormalizer) Normalize(doc document.Document, referenceVariantID string, categoryIDs []int) (*models.NormalizedProduct, error) {
	n.markProcessed()

	spuID := extractSpuID(doc)
	if spuID == "" {
		return nil, n.fail(models.ReasonNoIdentifier, "")
	}

	title := n.text.CleanTitle(extractTitle(doc))
	if title == "" {
		n.log.Log("Товар %s: название не найдено или пустое после очистки", spuID)
		return nil, n.fail(models.ReasonEmptyTitle, spuID)
	}

	images := extractImages(doc, referenceVariantID)
	if len(images) == 0 {
		n.log.Log("Товар %s: нет изображений", spuID)
		return nil, n.fail(models.ReasonNoImages, spuID)
	}

	brand := n.text.SanitizeBrand(extractBrand(doc))
	articleNumber := extractArticleNumber(doc)
	sourceCategoryID, sourceCategoryName := extractSourceCategory(doc)

	skus := extractSkus(doc)
	if len(skus) == 0 {
		n.log.Log("Товар %s: нет SKU в данных", spuID)
		return nil, n.fail(models.ReasonNoSkus, spuID)
	}

	attrs := extractSaleProperties(doc)
	sizeByProperty := buildSizeMap(attrs)
	primaryColorID := determinePrimaryColor(attrs, skus, referenceVariantID)

	kind := n.classifySizeKind(categoryIDs, sizeByProperty)
	if kind == models.SizeKindAccessory {
		// аксессуары никогда не несут многозначный размер
		sizeByProperty = map[string]string{}
	}

	var variants []models.Variant
	foundOneSize := false

	for _, sku := range skus {
		// Аксессуар с явным reference: грузим только этот SKU.
		if kind == models.SizeKindAccessory && referenceVariantID != "" && sku.SkuID != referenceVariantID {
			continue
		}

		// Обувь/одежда: товар представляет ровно один цвет со всеми его
		// размерами, SKU других цветов отбрасываются.
		if kind != models.SizeKindAccessory && primaryColorID != "" {
			if colorID := levelOneAttribute(sku); colorID != "" && colorID != primaryColorID {
				continue
			}
		}

		sizeLabel, resolved := n.resolver.Resolve(sku, sizeByProperty, kind)
		if !resolved {
			if kind == models.SizeKindAccessory {
				sizeLabel = models.OneSizeLabel
			} else {
				n.log.Log("SKU %s: размер не найден для %s, пропускаем", sku.SkuID, kind)
				n.countReason("unresolved_size")
				continue
			}
		}

		// Один ONE SIZE вариант на аксессуар, остальные — дубликаты.
		if kind == models.SizeKindAccessory && sizeLabel == models.OneSizeLabel && foundOneSize && referenceVariantID == "" {
			continue
		}

		if kind == models.SizeKindShoe && sizeLabel != models.OneSizeLabel {
			sizeLabel = NormalizeShoeSize(sizeLabel)
		}

		if sku.Status != models.StatusAvailable {
			continue
		}

		basePrice, havePrice, counted := n.selectBasePrice(sku)
		if !havePrice {
			if counted {
				n.countReason(models.ReasonNoPriceForSize)
			}
			continue
		}

		retailPrice := basePrice
		if n.retailFormula != nil {
			retailPrice = n.retailFormula(basePrice)
		}

		variants = append(variants, models.Variant{
			SkuID:       sku.SkuID,
			SizeLabel:   sizeLabel,
			SizeKind:    kind,
			BasePrice:   basePrice,
			RetailPrice: retailPrice,
			Available:   true,
			StockStatus: sku.Status,
		})

		if kind == models.SizeKindAccessory && sizeLabel == models.OneSizeLabel && referenceVariantID == "" {
			foundOneSize = true
		}
	}

	if len(variants) == 0 {
		n.log.Log("Товар %s: нет валидных размеров после обработки", spuID)
		return nil, n.fail(models.ReasonNoValidVariant, spuID)
	}

	sortVariants(kind, variants)
	n.markValid()

	return &models.NormalizedProduct{
		ExternalID:         spuID,
		ReferenceVariantID: referenceVariantID,
		Title:              title,
		Brand:              brand,
		ArticleNumber:      articleNumber,
		SourceCategoryID:   sourceCategoryID,
		SourceCategoryName: sourceCategoryName,
		Categories:         categoryIDs,
		Images:             images,
		Variants:           variants,
		DataComplete:       true,
	}, nil
}

// buildSizeMap строит словарь propertyValueId -> размер из saleProperties.
// Размером считается level=2 либо level=1 с размерным именем.
func buildSizeMap(attrs []models.SizeAttribute) map[string]string {
	sizeByProperty := make(map[string]string)
	for _, attr := range attrs {
		isSize := attr.Level == 2
		if !isSize && attr.Level == 1 {
			_, isSize = sizePropertyNames[attr.Name]
		}
		if isSize && attr.PropertyValueID != "" && attr.Value != "" {
			sizeByProperty[attr.PropertyValueID] = attr.Value
		}
	}
	return sizeByProperty
}

// determinePrimaryColor находит id основного цвета. При заданном reference
// SKU цвет берётся от него — но только если его верхний атрибут действительно
// распознан как цвет, иначе цветовая фильтрация отключается. Без reference
// основным становится первый level=1 атрибут с цветовым именем.
func determinePrimaryColor(attrs []models.SizeAttribute, skus []models.SkuOffer, referenceVariantID string) string {
	if referenceVariantID != "" {
		for _, sku := range skus {
			if sku.SkuID != referenceVariantID {
				continue
			}
			propertyValueID := levelOneAttribute(sku)
			if propertyValueID == "" {
				return ""
			}
			for _, attr := range attrs {
				if attr.PropertyValueID != propertyValueID {
					continue
				}
				if _, isColor := colorPropertyNames[attr.Name]; isColor {
					return propertyValueID
				}
				// размер или нераспознанное имя — фильтрацию не включаем
				return ""
			}
			return ""
		}
		return ""
	}

	for _, attr := range attrs {
		if attr.Level != 1 {
			continue
		}
		if _, isColor := colorPropertyNames[attr.Name]; isColor {
			return attr.PropertyValueID
		}
	}
	return ""
}

// levelOneAttribute возвращает propertyValueId верхнего (level=1) атрибута SKU.
func levelOneAttribute(sku models.SkuOffer) string {
	for _, prop := range sku.Properties {
		if prop.Level == 1 {
			return prop.PropertyValueID
		}
	}
	return ""
}

// classifySizeKind определяет вид товара. Приоритет у категорий оператора:
// аксессуарные категории всегда дают accessory. Дальше решают значения
// размеров: токен одежды — clothing, значения без единой цифры — accessory,
// по умолчанию — shoe.
func (n *ProductNormalizer) classifySizeKind(categoryIDs []int, sizeByProperty map[string]string) models.SizeKind {
	if len(categoryIDs) > 0 && n.classifier != nil && n.classifier.HasOneSizeCategory(categoryIDs) {
		return models.SizeKindAccessory
	}

	hasClothing := false
	hasUsableSignal := false
	for _, value := range sizeByProperty {
		if IsClothingSizeToken(value) {
			hasClothing = true
			hasUsableSignal = true
			continue
		}
		if containsDigit(value) {
			hasUsableSignal = true
		}
	}

	if hasClothing {
		return models.SizeKindClothing
	}
	if !hasUsableSignal && len(sizeByProperty) > 0 {
		return models.SizeKindAccessory
	}
	return models.SizeKindShoe
}

// selectBasePrice выбирает авторитетную цену SKU. Источник priceInfo
// приоритетен и предпочитает активную (скидочную) цену; резервный источник
// price.prices использует только обычную. Возвращаемый counted говорит,
// надо ли учитывать отказ в счётчике no_price_for_size.
func (n *ProductNormalizer) selectBasePrice(sku models.SkuOffer) (price float64, ok bool, counted bool) {
	if len(sku.InfoTiers) > 0 {
		tier, found := SelectTier(sku.InfoTiers)
		if !found {
			// допустимых типов цен нет — SKU выпадает без счётчика
			return 0, false, false
		}
		if value, valid := BasePriceFromTier(tier, true); valid {
			return value, true, false
		}
	}

	if len(sku.DetailTiers) > 0 {
		tier, found := SelectTier(sku.DetailTiers)
		if !found {
			return 0, false, false
		}
		if value, valid := BasePriceFromTier(tier, false); valid {
			return value, true, false
		}
	}

	return 0, false, true
}

// sortVariants упорядочивает варианты: обувь — по числу (нечисловые в конец),
// одежда — по таблице ординалов, аксессуары — в порядке появления.
func sortVariants(kind models.SizeKind, variants []models.Variant) {
	switch kind {
	case models.SizeKindShoe:
		sort.SliceStable(variants, func(i, j int) bool {
			return shoeSortKey(variants[i].SizeLabel) < shoeSortKey(variants[j].SizeLabel)
		})
	case models.SizeKindClothing:
		sort.SliceStable(variants, func(i, j int) bool {
			return clothingSortKey(variants[i].SizeLabel) < clothingSortKey(variants[j].SizeLabel)
		})
	}
}

func shoeSortKey(label string) float64 {
	value, err := strconv.ParseFloat(label, 64)
	if err != nil {
		return 999 // неконвертируемые значения в конец
	}
	return value
}

func clothingSortKey(label string) int {
	if ordinal, ok := clothingSizeOrder[strings.ToUpper(label)]; ok {
		return ordinal
	}
	return 999
}

func (n *ProductNormalizer) markProcessed() {
	n.mu.Lock()
	n.processedCount++
	n.mu.Unlock()
}

func (n *ProductNormalizer) markValid() {
	n.mu.Lock()
	n.validCount++
	n.mu.Unlock()
	metrics.RecordProcessed("valid")
}

func (n *ProductNormalizer) countReason(reason string) {
	n.mu.Lock()
	n.invalidReasons[reason]++
	n.mu.Unlock()
	metrics.RecordRejection(reason)
}

func (n *ProductNormalizer) fail(reason, externalID string) error {
	n.countReason(reason)
	metrics.RecordProcessed("invalid")
	return models.NewNormalizationError(reason, externalID)
}

// Stats возвращает сводку эффективности обработки.
func (n *ProductNormalizer) Stats() models.ProcessingStats {
	n.mu.Lock()
	defer n.mu.Unlock()

	efficiency := 0.0
	if n.processedCount > 0 {
		efficiency = float64(n.validCount) / float64(n.processedCount) * 100
	}
	reasons := make(map[string]int, len(n.invalidReasons))
	for reason, count := range n.invalidReasons {
		reasons[reason] = count
	}
	return models.ProcessingStats{
		Processed:      n.processedCount,
		Valid:          n.validCount,
		Invalid:        n.processedCount - n.validCount,
		Efficiency:     efficiency,
		InvalidReasons: reasons,
	}
}
