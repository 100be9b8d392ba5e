package parse

import (
	"strings"

	"plummymarket_api/internal/poizon/business/document"
	"plummymarket_api/internal/poizon/business/models"
)

// fieldProbe — одно место документа, где может лежать логическое поле.
// Проверяются по порядку, берётся первое непустое совпадение.
type fieldProbe struct {
	path []string
	keys []string
}

var titleProbes = []fieldProbe{
	{path: nil, keys: []string{"title", "name", "productName", "spuName"}},
	{path: []string{"detail"}, keys: []string{"title", "name", "productName", "spuName", "desc", "description"}},
	{path: []string{"basicParam"}, keys: []string{"title", "name", "productName", "spuName"}},
	{path: []string{"detailModel"}, keys: []string{"title", "name", "productName"}},
}

func probeString(doc document.Document, probes []fieldProbe) string {
	for _, probe := range probes {
		scope := doc
		if len(probe.path) > 0 {
			scope = doc.Map(probe.path...)
		}
		if scope == nil {
			continue
		}
		for _, key := range probe.keys {
			if value := strings.TrimSpace(scope.String(key)); value != "" {
				return value
			}
		}
	}
	return ""
}

// extractSpuID: идентификатор SPU лежит либо на верхнем уровне, либо в detail.
func extractSpuID(doc document.Document) string {
	if id := doc.String("spuId"); id != "" {
		return id
	}
	return doc.String("detail", "spuId")
}

func extractTitle(doc document.Document) string {
	return probeString(doc, titleProbes)
}

func extractBrand(doc document.Document) string {
	items := doc.Slice("brandRootInfo", "brandItemList")
	if len(items) == 0 {
		return ""
	}
	first := document.AsDocument(items[0])
	if first == nil {
		return ""
	}
	return first.String("brandName")
}

func extractArticleNumber(doc document.Document) string {
	return doc.String("detail", "articleNumber")
}

func extractSourceCategory(doc document.Document) (int, string) {
	detail := doc.Map("detail")
	if detail == nil {
		return 0, ""
	}
	id, _ := detail.Int("categoryId")
	return int(id), detail.String("categoryName")
}

// extractImages собирает картинки: logo выбранного SKU (если задан reference),
// затем detail.logoUrl, затем галерея image.spuImage.images.
func extractImages(doc document.Document, referenceVariantID string) []string {
	var logoUrl string

	if referenceVariantID != "" {
		for _, raw := range doc.Slice("skus") {
			sku := document.AsDocument(raw)
			if sku == nil {
				continue
			}
			if sku.String("skuId") == referenceVariantID {
				if skuLogo := sku.String("logoUrl"); skuLogo != "" {
					logoUrl = skuLogo
				}
				break
			}
		}
	}

	if logoUrl == "" {
		logoUrl = doc.String("detail", "logoUrl")
	}

	var images []string
	if logoUrl != "" {
		images = append(images, logoUrl)
	}
	for _, raw := range doc.Slice("image", "spuImage", "images") {
		switch typed := raw.(type) {
		case string:
			if typed != "" {
				images = append(images, typed)
			}
		default:
			img := document.AsDocument(raw)
			if img == nil {
				continue
			}
			if url := img.String("url"); url != "" {
				images = append(images, url)
			}
		}
	}
	return images
}

// extractSaleProperties разбирает saleProperties.list в плоский список атрибутов.
func extractSaleProperties(doc document.Document) []models.SizeAttribute {
	var attrs []models.SizeAttribute
	for _, raw := range doc.Slice("saleProperties", "list") {
		prop := document.AsDocument(raw)
		if prop == nil {
			continue
		}
		level, _ := prop.Int("level")
		attrs = append(attrs, models.SizeAttribute{
			PropertyValueID: prop.String("propertyValueId"),
			Name:            prop.String("name"),
			Value:           prop.String("value"),
			Level:           int(level),
		})
	}
	return attrs
}

// Альтернативные поля размера на самом SKU, в порядке приоритета.
var altSizeFieldNames = []string{"size", "sizeValue", "sizeName", "sizeEu", "sizeUs", "sizeUk"}

// extractSkus разбирает список SKU вместе с обоими источниками цен:
// priceInfo.skus (приоритетный) и price.prices самого SKU (резервный).
func extractSkus(doc document.Document) []models.SkuOffer {
	infoSkus := doc.Map("priceInfo", "skus")

	var offers []models.SkuOffer
	for _, raw := range doc.Slice("skus") {
		sku := document.AsDocument(raw)
		if sku == nil {
			continue
		}

		skuID := sku.String("skuId")
		status, _ := sku.Int("status")

		var properties []models.SizeAttribute
		for _, rawProp := range sku.Slice("properties") {
			prop := document.AsDocument(rawProp)
			if prop == nil {
				continue
			}
			level, _ := prop.Int("level")
			properties = append(properties, models.SizeAttribute{
				PropertyValueID: prop.String("propertyValueId"),
				Value:           prop.String("propertyValue"),
				Level:           int(level),
			})
		}

		var altFields []string
		for _, field := range altSizeFieldNames {
			if value := strings.TrimSpace(sku.String(field)); value != "" {
				altFields = append(altFields, value)
			}
		}

		var infoTiers []models.PriceTier
		if infoSkus != nil {
			infoTiers = parseTiers(infoSkus.Slice(skuID, "prices"))
		}

		offers = append(offers, models.SkuOffer{
			SkuID:         skuID,
			Status:        int(status),
			LogoUrl:       sku.String("logoUrl"),
			Properties:    properties,
			InfoTiers:     infoTiers,
			DetailTiers:   parseTiers(sku.Slice("price", "prices")),
			AltSizeFields: altFields,
		})
	}
	return offers
}

// PriceTiersFromInfo разбирает ценовые предложения одного SKU из ответа
// priceInfo. Используется при точечном обновлении цен, когда полная карточка
// не загружается.
func PriceTiersFromInfo(info document.Document, skuID string) []models.PriceTier {
	return parseTiers(info.Slice("skus", skuID, "prices"))
}

func parseTiers(items []interface{}) []models.PriceTier {
	var tiers []models.PriceTier
	for _, raw := range items {
		priceObj := document.AsDocument(raw)
		if priceObj == nil {
			continue
		}
		tradeType, _ := priceObj.Int("tradeType")
		price, _ := priceObj.Int("price")
		activePrice, _ := priceObj.Int("activePrice")

		deliveryMax := int64(models.DeliveryMaxUnknown)
		if max, ok := priceObj.Int("timeDelivery", "max"); ok {
			deliveryMax = max
		}

		tiers = append(tiers, models.PriceTier{
			TradeType:   int(tradeType),
			Price:       price,
			ActivePrice: activePrice,
			DeliveryMax: int(deliveryMax),
		})
	}
	return tiers
}
