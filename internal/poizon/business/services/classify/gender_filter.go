package classify

import (
	"io"
	"strconv"
	"strings"

	"plummymarket_api/config/values"
	"plummymarket_api/internal/poizon/business/models"
	"plummymarket_api/pkg/logger"
)

// SizeGenderFilter отсекает гендерные ветки обувных категорий по наблюдаемым
// числовым размерам. Применяется только к обуви и только при первом
// попадании товара в базу; обновления цен его не перезапускают.
type SizeGenderFilter struct {
	classifier   *CategoryClassifier
	womenMaxSize float64
	menMinSize   float64
	log          logger.Logger
}

func NewSizeGenderFilter(classifier *CategoryClassifier, filterValues values.FilterValues, writer io.Writer) *SizeGenderFilter {
	return &SizeGenderFilter{
		classifier:   classifier,
		womenMaxSize: filterValues.WomenMaxSize,
		menMinSize:   filterValues.MenSizeMin,
		log:          logger.NewLogger(writer, "[SizeGenderFilter]"),
	}
}

// AnalyzeSizes определяет гендерные сигналы: есть ли размеры <= 39.0 (женские)
// и >= 39.5 (мужские). Нечисловые метки ("S", "M") сигналом не считаются.
func (f *SizeGenderFilter) AnalyzeSizes(sizes []string) (hasWomen, hasMen bool) {
	for _, size := range sizes {
		value, err := strconv.ParseFloat(strings.TrimSpace(size), 64)
		if err != nil {
			continue
		}
		if value <= f.womenMaxSize {
			hasWomen = true
		}
		if value >= f.menMinSize {
			hasMen = true
		}
	}
	return hasWomen, hasMen
}

// FilterCategoriesBySizes возвращает отфильтрованный набор категорий.
// Для товара не-обуви список возвращается без изменений.
func (f *SizeGenderFilter) FilterCategoriesBySizes(categoryIDs []int, sizes []string, kind models.SizeKind) []int {
	if len(categoryIDs) == 0 || len(sizes) == 0 {
		return categoryIDs
	}
	if kind != models.SizeKindShoe {
		f.log.Log("Товар не обувь (type=%s), фильтрация категорий пропущена", kind)
		return categoryIDs
	}

	menRoot := f.classifier.MenRootID()
	womenRoot := f.classifier.WomenRootID()

	var menCategories, womenCategories, otherCategories []int
	for _, id := range categoryIDs {
		switch {
		case f.classifier.IsDescendant(id, menRoot):
			menCategories = append(menCategories, id)
		case f.classifier.IsDescendant(id, womenRoot):
			womenCategories = append(womenCategories, id)
		default:
			otherCategories = append(otherCategories, id)
		}
	}

	hasWomen, hasMen := f.AnalyzeSizes(sizes)
	f.log.Log("Анализ размеров: женские<=%.1f=%t, мужские>=%.1f=%t", f.womenMaxSize, hasWomen, f.menMinSize, hasMen)

	result := make([]int, 0, len(categoryIDs))
	result = append(result, otherCategories...)

	switch {
	case hasWomen && hasMen:
		// унисекс: оставляем всё
		result = append(result, menCategories...)
		result = append(result, womenCategories...)
	case hasWomen:
		result = append(result, womenCategories...)
		if len(menCategories) > 0 {
			f.log.Log("Удалены мужские категории (%d): %v", menRoot, menCategories)
		}
	case hasMen:
		result = append(result, menCategories...)
		if len(womenCategories) > 0 {
			f.log.Log("Удалены женские категории (%d): %v", womenRoot, womenCategories)
		}
	default:
		// числовых размеров нет — недостаточно сигнала, ничего не отсекаем
		result = append(result, menCategories...)
		result = append(result, womenCategories...)
	}

	return result
}
