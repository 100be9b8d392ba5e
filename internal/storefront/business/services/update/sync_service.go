package update

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"plummymarket_api/internal/poizon/business/models"
	"plummymarket_api/internal/poizon/business/services/classify"
	"plummymarket_api/internal/poizon/business/services/pricing"
	"plummymarket_api/internal/poizon/storage/repositories"
	"plummymarket_api/internal/storefront/pkg/clients"
	"plummymarket_api/metrics"
	"plummymarket_api/pkg/logger"
)

// Идентификаторы глобальных атрибутов витрины.
const (
	brandAttributeID        = 1
	shoeSizeAttributeID     = 4 // pa_shoe_size
	clothingSizeAttributeID = 5 // pa_clothing_size
	deliveryAttributeID     = 6 // pa_days
)

// Категории витрины по умолчанию, когда привязка не настроена.
const (
	defaultShoeCategoryID     = 103 // Кроссовки и кеды
	defaultClothingCategoryID = 105 // Одежда
)

const maxImagesPerProduct = 5

// ProductSyncService публикует нормализованные товары на витрине:
// родительский вариативный товар + вариация на каждую пару
// (размер, срок доставки) с ценой от PriceFormulaEngine. Гендерный фильтр
// категорий применяется один раз, при первой публикации.
type ProductSyncService struct {
	client       *clients.StorefrontClient
	pricing      *pricing.PriceFormulaEngine
	genderFilter *classify.SizeGenderFilter
	products     *repositories.ProductRepository
	categories   *repositories.CategoryRepository
	syncLog      *repositories.SyncLogRepository
	log          logger.Logger
}

func NewProductSyncService(
	client *clients.StorefrontClient,
	priceEngine *pricing.PriceFormulaEngine,
	genderFilter *classify.SizeGenderFilter,
	products *repositories.ProductRepository,
	categories *repositories.CategoryRepository,
	syncLog *repositories.SyncLogRepository,
	writer io.Writer,
) *ProductSyncService {
	return &ProductSyncService{
		client:       client,
		pricing:      priceEngine,
		genderFilter: genderFilter,
		products:     products,
		categories:   categories,
		syncLog:      syncLog,
		log:          logger.NewLogger(writer, "[ProductSyncService]"),
	}
}

// SyncProduct публикует либо обновляет один товар.
func (s *ProductSyncService) SyncProduct(ctx context.Context, product *models.NormalizedProduct) error {
	variants := availableVariants(product)
	if len(variants) == 0 {
		s.log.Log("Товар %s: нет доступных вариантов, публикация пропущена", product.ExternalID)
		return nil
	}
	kind := variants[0].SizeKind

	storefrontID, err := s.products.GetStorefrontID(product.ExternalID)
	if err != nil {
		return err
	}

	categoryIDs := product.Categories
	if storefrontID == 0 {
		// первая публикация: гендерные ветки отсекаются по фактическим размерам
		categoryIDs = s.genderFilter.FilterCategoriesBySizes(categoryIDs, sizeLabels(variants), kind)
	}

	storefrontCategories, err := s.categories.MapToStorefront(categoryIDs)
	if err != nil {
		return err
	}
	if len(storefrontCategories) == 0 {
		if kind == models.SizeKindShoe {
			storefrontCategories = []int{defaultShoeCategoryID}
		} else {
			storefrontCategories = []int{defaultClothingCategoryID}
		}
	}
	primaryCategoryID := storefrontCategories[0]

	payload := s.buildProductPayload(product, variants, kind, storefrontCategories)
	variations := s.buildVariations(variants, kind, primaryCategoryID)

	if storefrontID == 0 {
		return s.createProduct(ctx, product, payload, variations)
	}
	return s.updateProduct(ctx, product, storefrontID, payload, variations)
}

// MapStorefrontCategories сопоставляет локальные категории с категориями
// витрины: сперва по slug, затем по имени. Несопоставленные категории
// остаются без привязки и при публикации заменяются категорией по умолчанию.
func (s *ProductSyncService) MapStorefrontCategories(ctx context.Context) error {
	remote, err := s.client.GetCategories(ctx)
	if err != nil {
		return err
	}
	bySlug := make(map[string]int, len(remote))
	byName := make(map[string]int, len(remote))
	for _, category := range remote {
		bySlug[category.Slug] = category.ID
		byName[category.Name] = category.ID
	}

	local, err := s.categories.GetAll()
	if err != nil {
		return err
	}

	mapped := 0
	for _, node := range local {
		storefrontID, ok := bySlug[node.Slug]
		if !ok {
			storefrontID, ok = byName[node.Name]
		}
		if !ok {
			continue
		}
		if err := s.categories.SetStorefrontID(node.ID, storefrontID); err != nil {
			return err
		}
		mapped++
	}
	s.log.Log("Категории сопоставлены с витриной: %d из %d", mapped, len(local))
	return nil
}

// SyncPending публикует товары, ещё не привязанные к витрине.
func (s *ProductSyncService) SyncPending(ctx context.Context, limit int) error {
	ids, err := s.products.GetNeedingSync(limit)
	if err != nil {
		return err
	}
	s.log.Log("К публикации: %d товаров", len(ids))

	for _, externalID := range ids {
		product, err := s.products.GetProductByID(externalID)
		if err != nil {
			return err
		}
		if product == nil || !product.DataComplete {
			continue
		}
		if err := s.SyncProduct(ctx, product); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// одна неудачная публикация не останавливает остальные
			s.log.Log("Товар %s: публикация не удалась: %v", externalID, err)
		}
	}
	return nil
}

func (s *ProductSyncService) createProduct(ctx context.Context, product *models.NormalizedProduct, payload clients.ProductPayload, variations []clients.VariationPayload) error {
	storefrontID, err := s.client.CreateProduct(ctx, payload)
	if err != nil {
		s.recordSync(product.ExternalID, "create", "error", err.Error())
		return fmt.Errorf("ошибка создания товара %s на витрине: %w", product.ExternalID, err)
	}

	// изображения отдельным запросом, не больше maxImagesPerProduct
	images := product.Images
	if len(images) > maxImagesPerProduct {
		images = images[:maxImagesPerProduct]
	}
	if err := s.client.SetImages(ctx, storefrontID, images); err != nil {
		s.log.Log("Товар %s: изображения не загрузились: %v", product.ExternalID, err)
	}

	if err := s.client.CreateVariationsBatch(ctx, storefrontID, variations); err != nil {
		s.recordSync(product.ExternalID, "create", "error", err.Error())
		return fmt.Errorf("ошибка создания вариаций товара %s: %w", product.ExternalID, err)
	}

	if err := s.products.SetStorefrontID(product.ExternalID, storefrontID); err != nil {
		return err
	}
	s.recordSync(product.ExternalID, "create", "success", "")
	s.log.Log("Товар %s опубликован: id=%d, %d вариаций", product.ExternalID, storefrontID, len(variations))
	return nil
}

func (s *ProductSyncService) updateProduct(ctx context.Context, product *models.NormalizedProduct, storefrontID int, payload clients.ProductPayload, variations []clients.VariationPayload) error {
	if err := s.client.UpdateProduct(ctx, storefrontID, payload); err != nil {
		s.recordSync(product.ExternalID, "update", "error", err.Error())
		return fmt.Errorf("ошибка обновления товара %s на витрине: %w", product.ExternalID, err)
	}

	// вариации пересоздаются целиком: состав размеров мог измениться
	existing, err := s.client.GetVariationIDs(ctx, storefrontID)
	if err != nil {
		s.recordSync(product.ExternalID, "update", "error", err.Error())
		return fmt.Errorf("ошибка чтения вариаций товара %s: %w", product.ExternalID, err)
	}
	if err := s.client.DeleteVariationsBatch(ctx, storefrontID, existing); err != nil {
		s.recordSync(product.ExternalID, "update", "error", err.Error())
		return fmt.Errorf("ошибка удаления вариаций товара %s: %w", product.ExternalID, err)
	}
	if err := s.client.CreateVariationsBatch(ctx, storefrontID, variations); err != nil {
		s.recordSync(product.ExternalID, "update", "error", err.Error())
		return fmt.Errorf("ошибка создания вариаций товара %s: %w", product.ExternalID, err)
	}

	s.recordSync(product.ExternalID, "update", "success", "")
	s.log.Log("Товар %s обновлён: id=%d, %d вариаций", product.ExternalID, storefrontID, len(variations))
	return nil
}

func (s *ProductSyncService) buildProductPayload(product *models.NormalizedProduct, variants []models.Variant, kind models.SizeKind, storefrontCategories []int) clients.ProductPayload {
	categories := make([]clients.CategoryRef, 0, len(storefrontCategories))
	for _, id := range storefrontCategories {
		categories = append(categories, clients.CategoryRef{ID: id})
	}

	brand := product.Brand
	if brand == "" {
		brand = "Unknown"
	}

	return clients.ProductPayload{
		Name:              product.Title,
		Type:              "variable",
		Status:            "publish",
		CatalogVisibility: "visible",
		Categories:        categories,
		ManageStock:       false,
		Backorders:        "no",
		Attributes: []clients.AttributePayload{
			{ID: brandAttributeID, Options: []string{brand}, Variation: false, Visible: true},
			{ID: sizeAttributeID(kind), Options: sizeLabels(variants), Variation: true, Visible: true},
			{ID: deliveryAttributeID, Options: s.pricing.DeliveryTiers(), Variation: true, Visible: true},
		},
		MetaData: []clients.MetaData{
			{Key: "spu_id", Value: product.ExternalID},
			{Key: "article_number", Value: product.ArticleNumber},
			{Key: "_product_brand", Value: product.Brand},
		},
	}
}

// buildVariations — вариация на каждую пару (размер, срок доставки);
// розничная цена считается формулой первой категории товара.
func (s *ProductSyncService) buildVariations(variants []models.Variant, kind models.SizeKind, primaryCategoryID int) []clients.VariationPayload {
	tiers := s.pricing.DeliveryTiers()
	variations := make([]clients.VariationPayload, 0, len(variants)*len(tiers))

	for _, variant := range variants {
		for _, tier := range tiers {
			price := s.pricing.CalculatePrice(variant.BasePrice, primaryCategoryID, tier)
			variations = append(variations, clients.VariationPayload{
				RegularPrice: strconv.FormatFloat(price, 'f', 2, 64),
				ManageStock:  false,
				StockStatus:  "instock",
				Attributes: []clients.VariationAttribute{
					{ID: sizeAttributeID(kind), Option: variant.SizeLabel},
					{ID: deliveryAttributeID, Option: tier},
				},
			})
		}
	}
	return variations
}

func (s *ProductSyncService) recordSync(externalID, action, status, message string) {
	metrics.RecordSync(action, status)
	if err := s.syncLog.Append(externalID, action, status, message); err != nil {
		s.log.Log("Не удалось записать журнал синхронизации: %v", err)
	}
}

func sizeAttributeID(kind models.SizeKind) int {
	if kind == models.SizeKindShoe {
		return shoeSizeAttributeID
	}
	return clothingSizeAttributeID
}

func availableVariants(product *models.NormalizedProduct) []models.Variant {
	var variants []models.Variant
	for _, variant := range product.Variants {
		if variant.Available && variant.StockStatus == models.StatusAvailable {
			variants = append(variants, variant)
		}
	}
	return variants
}

func sizeLabels(variants []models.Variant) []string {
	labels := make([]string, 0, len(variants))
	for _, variant := range variants {
		labels = append(labels, variant.SizeLabel)
	}
	return labels
}
