package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plummymarket_api/internal/poizon/business/document"
	"plummymarket_api/internal/poizon/business/models"
)

func TestSelectTierPrefersFastStandard(t *testing.T) {
	tiers := []models.PriceTier{
		{TradeType: TradeTypeDiscounted, Price: 40000, DeliveryMax: 2},
		{TradeType: TradeTypeStandard, Price: 48000, DeliveryMax: 3},
	}
	tier, ok := SelectTier(tiers)
	assert.True(t, ok)
	assert.Equal(t, TradeTypeStandard, tier.TradeType)
}

func TestSelectTierSlowStandardLosesToSpecial(t *testing.T) {
	// обычная цена с медленной доставкой не приоритетна: решает порядок fallback
	tiers := []models.PriceTier{
		{TradeType: TradeTypeStandard, Price: 48000, DeliveryMax: 12},
		{TradeType: TradeTypeSpecial, Price: 50000, DeliveryMax: models.DeliveryMaxUnknown},
	}
	tier, ok := SelectTier(tiers)
	assert.True(t, ok)
	assert.Equal(t, TradeTypeSpecial, tier.TradeType)
}

func TestSelectTierFallbackOrder(t *testing.T) {
	tiers := []models.PriceTier{
		{TradeType: TradeTypePromotional, Price: 52000},
		{TradeType: TradeTypeDiscounted, Price: 47000},
		{TradeType: TradeTypeUnlabeled, Price: 49000},
	}
	tier, ok := SelectTier(tiers)
	assert.True(t, ok)
	assert.Equal(t, TradeTypeUnlabeled, tier.TradeType)
}

func TestSelectTierIgnoresUnknownTypes(t *testing.T) {
	tiers := []models.PriceTier{
		{TradeType: TradeTypeBulk, Price: 30000, DeliveryMax: 1},
		{TradeType: 3, Price: 31000, DeliveryMax: 1},
	}
	_, ok := SelectTier(tiers)
	assert.False(t, ok)
}

func TestPriceTiersFromInfo(t *testing.T) {
	info, err := document.Decode([]byte(`{
		"skus": {
			"9001": {"prices": [
				{"tradeType": 2, "price": 48000, "activePrice": 45000, "timeDelivery": {"max": 3}},
				{"tradeType": 8, "price": 40000}
			]}
		}
	}`))
	require.NoError(t, err)

	tiers := PriceTiersFromInfo(info, "9001")
	require.Len(t, tiers, 2)
	assert.Equal(t, TradeTypeStandard, tiers[0].TradeType)
	assert.Equal(t, int64(45000), tiers[0].ActivePrice)
	assert.Equal(t, 3, tiers[0].DeliveryMax)
	assert.Equal(t, models.DeliveryMaxUnknown, tiers[1].DeliveryMax)

	assert.Empty(t, PriceTiersFromInfo(info, "9002"))
}

func TestBasePriceFromTier(t *testing.T) {
	tier := models.PriceTier{Price: 48000, ActivePrice: 45000}

	price, ok := BasePriceFromTier(tier, true)
	assert.True(t, ok)
	assert.Equal(t, 450.0, price)

	price, ok = BasePriceFromTier(tier, false)
	assert.True(t, ok)
	assert.Equal(t, 480.0, price)

	_, ok = BasePriceFromTier(models.PriceTier{Price: 0, ActivePrice: 0}, true)
	assert.False(t, ok)
}
