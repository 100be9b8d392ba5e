package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"io"

	"plummymarket_api/internal/poizon/business/models"
	"plummymarket_api/pkg/logger"
)

// CategoryRepository хранит таксономию витрины и привязку локальных категорий
// к идентификаторам storefront.
type CategoryRepository struct {
	db  *sql.DB
	log logger.Logger
}

func NewCategoryRepository(db *sql.DB, writer io.Writer) *CategoryRepository {
	return &CategoryRepository{
		db:  db,
		log: logger.NewLogger(writer, "[CategoryRepository]"),
	}
}

// UpsertCategories заливает плоское дерево категорий. Вызывается на старте
// из файла категорий; существующие строки обновляются по имени и родителю.
func (r *CategoryRepository) UpsertCategories(flat map[int]models.CategoryNode) error {
	query := `
		INSERT INTO poizon.categories (category_id, name, slug, parent_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (category_id) DO UPDATE SET
			name = EXCLUDED.name,
			slug = EXCLUDED.slug,
			parent_id = EXCLUDED.parent_id`

	for _, node := range flat {
		if _, err := r.db.Exec(query, node.ID, node.Name, node.Slug, node.Parent); err != nil {
			return fmt.Errorf("ошибка сохранения категории %d: %w", node.ID, err)
		}
	}
	r.log.Log("Сохранено %d категорий", len(flat))
	return nil
}

// GetAll возвращает плоский словарь категорий для классификатора.
func (r *CategoryRepository) GetAll() (map[int]models.CategoryNode, error) {
	query := `SELECT category_id, name, COALESCE(slug, ''), COALESCE(parent_id, 0) FROM poizon.categories`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса для получения категорий: %w", err)
	}
	defer rows.Close()

	flat := make(map[int]models.CategoryNode)
	for rows.Next() {
		var node models.CategoryNode
		if err := rows.Scan(&node.ID, &node.Name, &node.Slug, &node.Parent); err != nil {
			return nil, fmt.Errorf("ошибка сканирования категории: %w", err)
		}
		flat[node.ID] = node
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}
	return flat, nil
}

// SetStorefrontID привязывает локальную категорию к категории витрины.
func (r *CategoryRepository) SetStorefrontID(categoryID, storefrontID int) error {
	_, err := r.db.Exec(`UPDATE poizon.categories SET storefront_id = $2 WHERE category_id = $1`,
		categoryID, storefrontID)
	if err != nil {
		return fmt.Errorf("ошибка привязки категории %d к витрине: %w", categoryID, err)
	}
	return nil
}

// MapToStorefront переводит локальные id категорий в id витрины.
// Непривязанные категории молча выпадают из результата.
func (r *CategoryRepository) MapToStorefront(categoryIDs []int) ([]int, error) {
	var storefrontIDs []int
	for _, id := range categoryIDs {
		var storefrontID sql.NullInt64
		err := r.db.QueryRow(`SELECT storefront_id FROM poizon.categories WHERE category_id = $1`, id).Scan(&storefrontID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return nil, fmt.Errorf("ошибка чтения storefront_id категории %d: %w", id, err)
		}
		if storefrontID.Valid {
			storefrontIDs = append(storefrontIDs, int(storefrontID.Int64))
		}
	}
	return storefrontIDs, nil
}
