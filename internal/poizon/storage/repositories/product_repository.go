package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/lib/pq"

	"plummymarket_api/internal/poizon/business/models"
	"plummymarket_api/pkg/logger"
)

// ProductRepository хранит нормализованные товары и их варианты.
// Заглушка (data_complete = false) превращается в полный товар ровно один раз;
// обновление цен трогает только ценовые поля вариантов.
type ProductRepository struct {
	db  *sql.DB
	log logger.Logger
}

func NewProductRepository(db *sql.DB, writer io.Writer) *ProductRepository {
	return &ProductRepository{
		db:  db,
		log: logger.NewLogger(writer, "[ProductRepository]"),
	}
}

// SaveStub регистрирует товар до нормализации: только идентификаторы и
// категории, без вариантов. Повторный вызов ничего не перезаписывает.
func (r *ProductRepository) SaveStub(externalID, referenceVariantID string, categoryIDs []int) error {
	query := `
		INSERT INTO poizon.products (external_id, reference_variant_id, category_ids, data_complete)
		VALUES ($1, $2, $3, FALSE)
		ON CONFLICT (external_id) DO NOTHING`

	_, err := r.db.Exec(query, externalID, nullString(referenceVariantID), pq.Array(categoryIDs))
	if err != nil {
		return fmt.Errorf("ошибка сохранения заглушки товара %s: %w", externalID, err)
	}
	return nil
}

// SaveNormalized записывает полный результат нормализации: строку товара и
// полный набор вариантов. Старые варианты заменяются целиком в одной
// транзакции, порядок вариантов сохраняется через position.
func (r *ProductRepository) SaveNormalized(product *models.NormalizedProduct) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("ошибка открытия транзакции: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO poizon.products (
			external_id, reference_variant_id, title, brand, article_number,
			source_category_id, source_category_name, category_ids, images,
			size_kind, data_complete, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, TRUE, NOW())
		ON CONFLICT (external_id) DO UPDATE SET
			reference_variant_id = EXCLUDED.reference_variant_id,
			title = EXCLUDED.title,
			brand = EXCLUDED.brand,
			article_number = EXCLUDED.article_number,
			source_category_id = EXCLUDED.source_category_id,
			source_category_name = EXCLUDED.source_category_name,
			category_ids = EXCLUDED.category_ids,
			images = EXCLUDED.images,
			size_kind = EXCLUDED.size_kind,
			data_complete = TRUE,
			updated_at = NOW()`

	sizeKind := ""
	if len(product.Variants) > 0 {
		sizeKind = product.Variants[0].SizeKind.String()
	}

	_, err = tx.Exec(query,
		product.ExternalID, nullString(product.ReferenceVariantID), product.Title,
		product.Brand, product.ArticleNumber, product.SourceCategoryID,
		product.SourceCategoryName, pq.Array(product.Categories),
		pq.Array(product.Images), sizeKind,
	)
	if err != nil {
		return fmt.Errorf("ошибка сохранения товара %s: %w", product.ExternalID, err)
	}

	if _, err = tx.Exec(`DELETE FROM poizon.variants WHERE external_id = $1`, product.ExternalID); err != nil {
		return fmt.Errorf("ошибка удаления старых вариантов товара %s: %w", product.ExternalID, err)
	}

	variantQuery := `
		INSERT INTO poizon.variants (external_id, sku_id, size_label, position, base_price, retail_price, stock_status, available)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for position, variant := range product.Variants {
		_, err = tx.Exec(variantQuery,
			product.ExternalID, variant.SkuID, variant.SizeLabel, position,
			variant.BasePrice, variant.RetailPrice, variant.StockStatus, variant.Available,
		)
		if err != nil {
			return fmt.Errorf("ошибка сохранения варианта %s товара %s: %w", variant.SkuID, product.ExternalID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	r.log.Log("Товар %s сохранён с %d вариантами", product.ExternalID, len(product.Variants))
	return nil
}

// PriceUpdate — новые цены одного SKU для точечного обновления.
type PriceUpdate struct {
	SkuID       string
	BasePrice   float64
	RetailPrice float64
}

// UpdatePricesOnly обновляет цены существующих вариантов. Состав размеров
// не меняется: SKU, которых нет в таблице, молча игнорируются.
func (r *ProductRepository) UpdatePricesOnly(externalID string, updates []PriceUpdate) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("ошибка открытия транзакции: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE poizon.variants
		SET base_price = $3, retail_price = $4, updated_at = NOW()
		WHERE external_id = $1 AND sku_id = $2`

	updated := 0
	for _, update := range updates {
		result, err := tx.Exec(query, externalID, update.SkuID, update.BasePrice, update.RetailPrice)
		if err != nil {
			return fmt.Errorf("ошибка обновления цены SKU %s: %w", update.SkuID, err)
		}
		if affected, _ := result.RowsAffected(); affected > 0 {
			updated++
		}
	}

	if _, err = tx.Exec(`UPDATE poizon.products SET updated_at = NOW() WHERE external_id = $1`, externalID); err != nil {
		return fmt.Errorf("ошибка обновления товара %s: %w", externalID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	r.log.Log("Товар %s: обновлены цены %d/%d вариантов", externalID, updated, len(updates))
	return nil
}

// GetProductByID собирает товар вместе с вариантами в порядке их position.
// Отсутствующий товар — (nil, nil), как в остальных репозиториях.
func (r *ProductRepository) GetProductByID(externalID string) (*models.NormalizedProduct, error) {
	query := `
		SELECT external_id, COALESCE(reference_variant_id, ''), COALESCE(title, ''),
		       COALESCE(brand, ''), COALESCE(article_number, ''),
		       COALESCE(source_category_id, 0), COALESCE(source_category_name, ''),
		       category_ids, images, COALESCE(size_kind, ''), data_complete
		FROM poizon.products WHERE external_id = $1`

	var product models.NormalizedProduct
	var sizeKind string
	err := r.db.QueryRow(query, externalID).Scan(
		&product.ExternalID, &product.ReferenceVariantID, &product.Title,
		&product.Brand, &product.ArticleNumber, &product.SourceCategoryID,
		&product.SourceCategoryName, pq.Array(&product.Categories),
		pq.Array(&product.Images), &sizeKind, &product.DataComplete,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка чтения товара %s: %w", externalID, err)
	}

	kind := models.SizeKindFromString(sizeKind)
	variantQuery := `
		SELECT sku_id, size_label, COALESCE(base_price, 0), COALESCE(retail_price, 0),
		       COALESCE(stock_status, 0), available
		FROM poizon.variants WHERE external_id = $1 ORDER BY position`

	rows, err := r.db.Query(variantQuery, externalID)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения вариантов товара %s: %w", externalID, err)
	}
	defer rows.Close()

	for rows.Next() {
		variant := models.Variant{SizeKind: kind}
		if err := rows.Scan(&variant.SkuID, &variant.SizeLabel, &variant.BasePrice,
			&variant.RetailPrice, &variant.StockStatus, &variant.Available); err != nil {
			return nil, fmt.Errorf("ошибка сканирования варианта: %w", err)
		}
		product.Variants = append(product.Variants, variant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	return &product, nil
}

// GetProductsWithoutData возвращает идентификаторы заглушек, ожидающих
// нормализации, вместе с их reference-вариантами и категориями.
func (r *ProductRepository) GetProductsWithoutData() ([]ProductStub, error) {
	query := `
		SELECT external_id, COALESCE(reference_variant_id, ''), category_ids
		FROM poizon.products WHERE data_complete = FALSE ORDER BY created_at`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса для получения заглушек: %w", err)
	}
	defer rows.Close()

	var stubs []ProductStub
	for rows.Next() {
		var stub ProductStub
		if err := rows.Scan(&stub.ExternalID, &stub.ReferenceVariantID, pq.Array(&stub.CategoryIDs)); err != nil {
			return nil, fmt.Errorf("ошибка сканирования заглушки: %w", err)
		}
		stubs = append(stubs, stub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}
	return stubs, nil
}

// ProductStub — товар, известный только по идентификаторам.
type ProductStub struct {
	ExternalID         string
	ReferenceVariantID string
	CategoryIDs        []int64
}

// GetCompleteProducts поднимает все полные товары вместе с вариантами:
// обновление цен и выгрузка фида работают по этому набору.
func (r *ProductRepository) GetCompleteProducts() ([]*models.NormalizedProduct, error) {
	rows, err := r.db.Query(`SELECT external_id FROM poizon.products WHERE data_complete = TRUE ORDER BY updated_at`)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса для получения полных товаров: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("ошибка сканирования external_id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	products := make([]*models.NormalizedProduct, 0, len(ids))
	for _, id := range ids {
		product, err := r.GetProductByID(id)
		if err != nil {
			return nil, err
		}
		if product != nil {
			products = append(products, product)
		}
	}
	return products, nil
}

// GetNeedingSync возвращает полные товары, ещё не опубликованные на витрине.
func (r *ProductRepository) GetNeedingSync(limit int) ([]string, error) {
	query := `
		SELECT external_id FROM poizon.products
		WHERE data_complete = TRUE AND storefront_id IS NULL
		ORDER BY updated_at LIMIT $1`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса для получения товаров на синхронизацию: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("ошибка сканирования external_id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}
	return ids, nil
}

// SetStorefrontID запоминает идентификатор опубликованного товара на витрине.
func (r *ProductRepository) SetStorefrontID(externalID string, storefrontID int) error {
	_, err := r.db.Exec(`UPDATE poizon.products SET storefront_id = $2, updated_at = NOW() WHERE external_id = $1`,
		externalID, storefrontID)
	if err != nil {
		return fmt.Errorf("ошибка привязки товара %s к витрине: %w", externalID, err)
	}
	return nil
}

// GetStorefrontID возвращает id товара на витрине, 0 если товар не опубликован.
func (r *ProductRepository) GetStorefrontID(externalID string) (int, error) {
	var storefrontID sql.NullInt64
	err := r.db.QueryRow(`SELECT storefront_id FROM poizon.products WHERE external_id = $1`, externalID).Scan(&storefrontID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("ошибка чтения storefront_id товара %s: %w", externalID, err)
	}
	return int(storefrontID.Int64), nil
}

// CountByCompleteness возвращает (полных, заглушек) для сводки эффективности.
func (r *ProductRepository) CountByCompleteness() (complete int, stubs int, err error) {
	query := `
		SELECT COUNT(*) FILTER (WHERE data_complete), COUNT(*) FILTER (WHERE NOT data_complete)
		FROM poizon.products`
	if err := r.db.QueryRow(query).Scan(&complete, &stubs); err != nil {
		return 0, 0, fmt.Errorf("ошибка подсчёта товаров: %w", err)
	}
	return complete, stubs, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
