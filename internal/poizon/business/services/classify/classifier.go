package classify

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"plummymarket_api/config/values"
	"plummymarket_api/internal/poizon/business/models"
	"plummymarket_api/pkg/logger"
)

// CategoryClassifier отвечает на вопросы о таксономии витрины: принадлежит ли
// категория обувной ветке, является ли аксессуаром с единственным размером и
// какой размерный атрибут применять. Дерево загружается один раз и после
// конструирования не мутирует.
type CategoryClassifier struct {
	flat        map[int]models.CategoryNode
	oneSize     map[int]struct{}
	menRootID   int
	womenRootID int
	log         logger.Logger
}

func NewCategoryClassifier(flat map[int]models.CategoryNode, filterValues values.FilterValues, writer io.Writer) *CategoryClassifier {
	oneSize := make(map[int]struct{}, len(filterValues.OneSizeCategories))
	for _, id := range filterValues.OneSizeCategories {
		oneSize[id] = struct{}{}
	}
	_log := logger.NewLogger(writer, "[CategoryClassifier]")
	_log.Log("Загружено %d категорий для классификации", len(flat))
	return &CategoryClassifier{
		flat:        flat,
		oneSize:     oneSize,
		menRootID:   filterValues.MenShoesRootID,
		womenRootID: filterValues.WomenShoesRootID,
		log:         _log,
	}
}

// LoadCategoryTree читает лес категорий из JSON-файла и разворачивает его
// в плоский словарь.
func LoadCategoryTree(filename string) (map[int]models.CategoryNode, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать файл категорий: %w", err)
	}
	var tree []models.CategoryTreeNode
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("не удалось разобрать файл категорий: %w", err)
	}
	return models.FlattenCategories(tree), nil
}

// IsDescendant проверяет, достижим ли ancestorID по цепочке родителей от
// categoryID; категория считается потомком самой себя. Visited-set защищает
// от циклов в битой таксономии.
func (c *CategoryClassifier) IsDescendant(categoryID, ancestorID int) bool {
	if categoryID == ancestorID {
		return true
	}
	visited := make(map[int]struct{})
	current := categoryID
	for {
		if _, seen := visited[current]; seen {
			return false
		}
		visited[current] = struct{}{}

		node, ok := c.flat[current]
		if !ok {
			return false
		}
		if node.Parent == ancestorID {
			return true
		}
		if node.Parent == 0 {
			return false
		}
		current = node.Parent
	}
}

// IsShoeCategory: категория равна одному из обувных корней либо лежит под ним.
func (c *CategoryClassifier) IsShoeCategory(categoryID int) bool {
	return c.IsDescendant(categoryID, c.menRootID) || c.IsDescendant(categoryID, c.womenRootID)
}

// IsOneSizeCategory: категория входит в allow-list аксессуаров c единственным
// размером ONE SIZE.
func (c *CategoryClassifier) IsOneSizeCategory(categoryID int) bool {
	_, ok := c.oneSize[categoryID]
	return ok
}

// HasOneSizeCategory: хотя бы одна категория из набора входит в allow-list
// аксессуаров, которым запрещён многозначный размерный атрибут.
func (c *CategoryClassifier) HasOneSizeCategory(categoryIDs []int) bool {
	for _, id := range categoryIDs {
		if _, ok := c.oneSize[id]; ok {
			return true
		}
	}
	return false
}

// SizeAttributeKind выбирает вид размерного атрибута: обувь, если хотя бы одна
// категория обувная, иначе одежда. Вызывается до извлечения размеров.
func (c *CategoryClassifier) SizeAttributeKind(categoryIDs []int) models.SizeKind {
	for _, id := range categoryIDs {
		if c.IsShoeCategory(id) {
			return models.SizeKindShoe
		}
	}
	return models.SizeKindClothing
}

// MenRootID / WomenRootID нужны фильтру категорий.
func (c *CategoryClassifier) MenRootID() int   { return c.menRootID }
func (c *CategoryClassifier) WomenRootID() int { return c.womenRootID }
