package parse

import "plummymarket_api/internal/poizon/business/models"

// Коды tradeType, участвующие в выборе цены. Остальные (3, 4, 95 и прочие)
// игнорируются целиком.
const (
	TradeTypeStandard    = 2  // обычная цена
	TradeTypeSpecial     = 12 // спец. цена
	TradeTypeUnlabeled   = 0  // тип не размечен, цены нормальные
	TradeTypeDiscounted  = 8  // скидочная цена
	TradeTypePromotional = 11 // новинка / спец. предложение
	TradeTypeBulk        = 95
)

// Быстрой считается доставка не дольше этого количества дней.
const fastDeliveryMaxDays = 4

// Порядок перебора после приоритетного TradeTypeStandard.
var tradeTypeFallbackOrder = []int{TradeTypeSpecial, TradeTypeUnlabeled, TradeTypeDiscounted, TradeTypePromotional}

// SelectTier выбирает авторитетное ценовое предложение среди нескольких.
// Приоритет 1 — обычная цена с быстрой доставкой; дальше фиксированный
// порядок типов. Если ни один тип не подошёл — предложения нет.
func SelectTier(tiers []models.PriceTier) (models.PriceTier, bool) {
	for _, tier := range tiers {
		isFast := tier.DeliveryMax <= fastDeliveryMaxDays && tier.TradeType != TradeTypeBulk
		if tier.TradeType == TradeTypeStandard && isFast {
			return tier, true
		}
	}
	for _, wanted := range tradeTypeFallbackOrder {
		for _, tier := range tiers {
			if tier.TradeType == wanted {
				return tier, true
			}
		}
	}
	return models.PriceTier{}, false
}

// BasePriceFromTier переводит выбранное предложение в базовую цену в основных
// единицах валюты. При preferActive активная (скидочная) цена имеет приоритет
// над обычной — именно её видит покупатель.
func BasePriceFromTier(tier models.PriceTier, preferActive bool) (float64, bool) {
	raw := tier.Price
	if preferActive && tier.ActivePrice > 0 {
		raw = tier.ActivePrice
	}
	if raw <= 0 {
		return 0, false
	}
	// Цены приходят в субъединицах (1/100)
	return float64(raw) / 100, true
}
