package classify

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"

	"plummymarket_api/config/values"
	"plummymarket_api/internal/poizon/business/models"
)

func testGenderFilter() *SizeGenderFilter {
	return NewSizeGenderFilter(testClassifier(), values.DefaultFilterValues(), io.Discard)
}

func TestAnalyzeSizes(t *testing.T) {
	filter := testGenderFilter()

	tests := []struct {
		name     string
		sizes    []string
		hasWomen bool
		hasMen   bool
	}{
		{name: "только женские", sizes: []string{"36", "37.5", "38"}, hasWomen: true, hasMen: false},
		{name: "только мужские", sizes: []string{"40", "41", "42"}, hasWomen: false, hasMen: true},
		{name: "унисекс", sizes: []string{"37", "43"}, hasWomen: true, hasMen: true},
		{name: "граница 39.0 женская", sizes: []string{"39"}, hasWomen: true, hasMen: false},
		{name: "граница 39.5 мужская", sizes: []string{"39.5"}, hasWomen: false, hasMen: true},
		{name: "нечисловые метки не сигнал", sizes: []string{"S", "M", "ONE SIZE"}, hasWomen: false, hasMen: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hasWomen, hasMen := filter.AnalyzeSizes(tt.sizes)
			assert.Equal(t, tt.hasWomen, hasWomen)
			assert.Equal(t, tt.hasMen, hasMen)
		})
	}
}

func TestFilterCategoriesBySizes(t *testing.T) {
	filter := testGenderFilter()
	categories := []int{105, 111, 205} // мужская ветка, женская ветка, прочее

	tests := []struct {
		name  string
		sizes []string
		want  []int
	}{
		{name: "мужские размеры отсекают женскую ветку", sizes: []string{"40", "41", "42"}, want: []int{205, 105}},
		{name: "женские размеры отсекают мужскую ветку", sizes: []string{"35", "36"}, want: []int{205, 111}},
		{name: "унисекс сохраняет всё", sizes: []string{"37", "44"}, want: []int{205, 105, 111}},
		{name: "без числовых размеров сохраняет всё", sizes: []string{"S", "M"}, want: []int{205, 105, 111}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filter.FilterCategoriesBySizes(categories, tt.sizes, models.SizeKindShoe)
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}

func TestFilterCategoriesSkipsNonShoes(t *testing.T) {
	filter := testGenderFilter()
	categories := []int{105, 111}

	// одежда и аксессуары не фильтруются по размерной сетке обуви
	got := filter.FilterCategoriesBySizes(categories, []string{"36"}, models.SizeKindClothing)
	assert.Equal(t, categories, got)

	got = filter.FilterCategoriesBySizes(categories, []string{"36"}, models.SizeKindAccessory)
	assert.Equal(t, categories, got)
}

func TestFilterCategoriesEmptyInputs(t *testing.T) {
	filter := testGenderFilter()

	assert.Nil(t, filter.FilterCategoriesBySizes(nil, []string{"40"}, models.SizeKindShoe))
	categories := []int{105}
	assert.Equal(t, categories, filter.FilterCategoriesBySizes(categories, nil, models.SizeKindShoe))
}
