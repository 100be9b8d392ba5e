package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"plummymarket_api/config/values"
	"plummymarket_api/internal/poizon/business/models"
)

func newTestResolver() *SizeResolver {
	return NewSizeResolver(values.DefaultNormalizerValues().WidthTokens)
}

func skuWithProps(props ...models.SizeAttribute) models.SkuOffer {
	// хвост идентификатора не похож на размер, чтобы не срабатывал шаг 5
	return models.SkuOffer{SkuID: "999999", Properties: props}
}

func TestResolvePrefersPropertyMap(t *testing.T) {
	resolver := newTestResolver()

	sku := skuWithProps(
		models.SizeAttribute{PropertyValueID: "10", Level: 1},
		models.SizeAttribute{PropertyValueID: "20", Value: "что-то другое", Level: 2},
	)
	sizeByProperty := map[string]string{"20": "42.5"}

	label, ok := resolver.Resolve(sku, sizeByProperty, models.SizeKindShoe)
	assert.True(t, ok)
	assert.Equal(t, "42.5", label)
}

func TestResolveLevelTwoValueSkipsWidth(t *testing.T) {
	resolver := newTestResolver()

	// первый атрибут level=2 — обозначение ширины, берётся следующий
	sku := skuWithProps(
		models.SizeAttribute{PropertyValueID: "1", Value: "2E宽", Level: 2},
		models.SizeAttribute{PropertyValueID: "2", Value: "43", Level: 2},
	)

	label, ok := resolver.Resolve(sku, nil, models.SizeKindShoe)
	assert.True(t, ok)
	assert.Equal(t, "43", label)
}

func TestResolveAnyAttributeRules(t *testing.T) {
	resolver := newTestResolver()

	tests := []struct {
		name  string
		value string
		kind  models.SizeKind
		want  string
		ok    bool
	}{
		{name: "размер обуви с цифрой", value: "42.5", kind: models.SizeKindShoe, want: "42.5", ok: true},
		{name: "не-ASCII отбрасывается", value: "四十二", kind: models.SizeKindShoe, ok: false},
		{name: "чисто буквенное отбрасывается", value: "BLACK", kind: models.SizeKindShoe, ok: false},
		{name: "для обуви нужна цифра", value: "S/M", kind: models.SizeKindShoe, ok: false},
		{name: "для одежды цифра не обязательна", value: "S/M", kind: models.SizeKindClothing, want: "S/M", ok: true},
		{name: "слишком длинное отбрасывается", value: "12345678901", kind: models.SizeKindShoe, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sku := skuWithProps(models.SizeAttribute{PropertyValueID: "1", Value: tt.value, Level: 3})
			label, ok := resolver.Resolve(sku, nil, tt.kind)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, label)
			}
		})
	}
}

func TestResolveAltFields(t *testing.T) {
	resolver := newTestResolver()

	shoe := models.SkuOffer{SkuID: "nope", AltSizeFields: []string{"EUR 42"}}
	label, ok := resolver.Resolve(shoe, nil, models.SizeKindShoe)
	assert.True(t, ok)
	assert.Equal(t, "EUR 42", label)

	clothing := models.SkuOffer{SkuID: "nope", AltSizeFields: []string{"xl"}}
	label, ok = resolver.Resolve(clothing, nil, models.SizeKindClothing)
	assert.True(t, ok)
	assert.Equal(t, "xl", label)

	// токен одежды не принимается как размер обуви и наоборот
	_, ok = resolver.Resolve(clothing, nil, models.SizeKindShoe)
	assert.False(t, ok)
}

func TestResolveFromSkuID(t *testing.T) {
	resolver := newTestResolver()

	tests := []struct {
		name  string
		skuID string
		kind  models.SizeKind
		want  string
		ok    bool
	}{
		{name: "суффикс в диапазоне", skuID: "60201445", kind: models.SizeKindShoe, want: "45", ok: true},
		{name: "дробный суффикс", skuID: "试44.5码", kind: models.SizeKindShoe, want: "44.5", ok: true},
		{name: "вне диапазона", skuID: "99999999", kind: models.SizeKindShoe, ok: false},
		{name: "для одежды не применяется", skuID: "60201445", kind: models.SizeKindClothing, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sku := models.SkuOffer{SkuID: tt.skuID}
			label, ok := resolver.Resolve(sku, nil, tt.kind)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, label)
			}
		})
	}
}

func TestNormalizeShoeSize(t *testing.T) {
	assert.Equal(t, "40", NormalizeShoeSize("40.0"))
	assert.Equal(t, "42.5", NormalizeShoeSize("42.5"))
	assert.Equal(t, "EUR 42", NormalizeShoeSize("EUR 42"))
}

func TestIsClothingSizeToken(t *testing.T) {
	assert.True(t, IsClothingSizeToken("xl"))
	assert.True(t, IsClothingSizeToken(" 4xl "))
	assert.False(t, IsClothingSizeToken("42"))
	assert.False(t, IsClothingSizeToken("XXXXL"))
}
