package models

// SizeAttribute — свойство из saleProperties: связь propertyValueId со значением.
// Level 1 обычно цвет, level 2 — размер.
type SizeAttribute struct {
	PropertyValueID string
	Name            string
	Value           string
	Level           int
}

// PriceTier — одно из ценовых предложений SKU. Цены приходят в субъединицах
// валюты (фенях, 1/100 юаня) и делятся на 100 только при выборе предложения.
type PriceTier struct {
	TradeType   int
	Price       int64
	ActivePrice int64
	// DeliveryMax — верхняя граница срока доставки в днях. Если upstream её
	// не прислал, ставится DeliveryMaxUnknown, и предложение не считается быстрым.
	DeliveryMax int
}

// SkuOffer — покупаемый вариант (цвет x размер) внутри одного SPU.
// Status == 1 означает «в наличии»; всё остальное исключается из выдачи.
type SkuOffer struct {
	SkuID      string
	Status     int
	LogoUrl    string
	Properties []SizeAttribute
	// InfoTiers — цены из эндпоинта priceInfo (приоритетный источник).
	InfoTiers []PriceTier
	// DetailTiers — цены из price.prices самого SKU (резервный источник).
	DetailTiers []PriceTier
	// AltSizeFields — альтернативные поля размера на самом SKU (size, sizeValue, ...).
	AltSizeFields []string
}

const StatusAvailable = 1

const DeliveryMaxUnknown = 999
