package app

import (
	"context"
	"io"
	"log"
	"net/http"

	"plummymarket_api/config"
	"plummymarket_api/internal/poizon/business/models"
	"plummymarket_api/internal/poizon/business/services/classify"
	"plummymarket_api/internal/poizon/business/services/parse"
	"plummymarket_api/internal/poizon/business/services/pricing"
	"plummymarket_api/internal/poizon/pkg/clients"
	"plummymarket_api/internal/poizon/storage/repositories"
	update "plummymarket_api/internal/storefront/business/services/update"
	storefront "plummymarket_api/internal/storefront/pkg/clients"
	"plummymarket_api/metrics"
	"plummymarket_api/migrations/infrastructure"
	poizonmigrations "plummymarket_api/migrations/marketplaces/poizon"
	service "plummymarket_api/pkg/business/service"
	"plummymarket_api/pkg/business/service/feed"
	"plummymarket_api/pkg/dbconnect"
	"plummymarket_api/pkg/dbconnect/migration"
	"plummymarket_api/pkg/logger"
	"plummymarket_api/pkg/middleware"
)

// PoizonServer — корень композиции: соединяет БД, миграции, клиентов и
// сервисы пайплайна заглушка -> нормализация -> публикация.
type PoizonServer struct {
	dbconnect.Database
	config *config.AppConfig
	log    logger.Logger
	writer io.Writer
}

func NewPoizonServer(connector dbconnect.Database, cfg *config.AppConfig, writer io.Writer) *PoizonServer {
	return &PoizonServer{
		Database: connector,
		config:   cfg,
		log:      logger.NewLogger(writer, "[PoizonServer]"),
		writer:   writer,
	}
}

func (s *PoizonServer) Run(ctx context.Context) error {
	db, err := s.Connect()
	if err != nil {
		s.log.Log("Error connecting to PostgreSQL: %s", err)
		return err
	}
	defer db.Close()

	migrationApply := []migration.MigrationInterface{
		&infrastructure.MigrationsSchema{},
		&poizonmigrations.CreatePoizonSchema{},
		&poizonmigrations.CreatePoizonCategoriesTable{},
		&poizonmigrations.CreatePoizonProductsTable{},
		&poizonmigrations.CreatePoizonVariantsTable{},
		&poizonmigrations.CreatePoizonSyncLogTable{},
	}
	for _, _migration := range migrationApply {
		if err := _migration.UpMigration(db); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
	}
	s.log.Log("Миграции применены")

	productRepo := repositories.NewProductRepository(db, s.writer)
	categoryRepo := repositories.NewCategoryRepository(db, s.writer)
	syncLogRepo := repositories.NewSyncLogRepository(db, s.writer)

	flat, err := s.loadCategories(categoryRepo)
	if err != nil {
		return err
	}

	classifier := classify.NewCategoryClassifier(flat, s.config.Poizon.Filter, s.writer)
	genderFilter := classify.NewSizeGenderFilter(classifier, s.config.Poizon.Filter, s.writer)
	priceEngine := pricing.NewPriceFormulaEngine(s.config.Storefront.Pricing, s.writer)
	// розничная цена считается при публикации, для каждого срока доставки,
	// поэтому нормализатор работает без формулы
	normalizer := parse.NewProductNormalizer(classifier, service.NewTextService(), s.config.Poizon.Normalizer, nil, s.writer)

	poizonClient := clients.NewPoizonClient(s.config.Poizon, s.writer)
	storefrontClient := storefront.NewStorefrontClient(s.config.Storefront, s.writer)
	syncService := update.NewProductSyncService(
		storefrontClient, priceEngine, genderFilter,
		productRepo, categoryRepo, syncLogRepo, s.writer,
	)

	if err := s.registerArticles(productRepo); err != nil {
		return err
	}

	if err := s.enrichStubs(ctx, poizonClient, normalizer, productRepo); err != nil {
		return err
	}

	if s.config.Poizon.RefreshPrices {
		if err := s.refreshPrices(ctx, poizonClient, priceEngine, productRepo); err != nil {
			return err
		}
	}

	// неудачное сопоставление не фатально: публикация уйдёт в категории
	// по умолчанию
	if err := syncService.MapStorefrontCategories(ctx); err != nil {
		s.log.Log("Категории витрины не сопоставлены: %v", err)
	}

	if err := syncService.SyncPending(ctx, 100); err != nil {
		return err
	}

	if s.config.FeedFile != "" {
		products, err := productRepo.GetCompleteProducts()
		if err != nil {
			return err
		}
		if err := feed.NewCatalogFeed(s.writer).WriteFile(s.config.FeedFile, products); err != nil {
			return err
		}
	}

	s.reportRun(normalizer, poizonClient, productRepo, syncLogRepo)
	return nil
}

// registerArticles заводит заглушки по артикулам из конфигурации. Повторная
// регистрация известного артикула ничего не перезаписывает.
func (s *PoizonServer) registerArticles(productRepo *repositories.ProductRepository) error {
	for _, article := range s.config.Poizon.Articles {
		if err := productRepo.SaveStub(article.SpuID, article.ReferenceVariantID, article.CategoryIDs); err != nil {
			return err
		}
	}
	if len(s.config.Poizon.Articles) > 0 {
		s.log.Log("Зарегистрировано артикулов: %d", len(s.config.Poizon.Articles))
	}
	return nil
}

// refreshPrices обновляет цены уже нормализованных товаров без повторной
// нормализации: состав размеров не меняется, только ценовые поля вариантов.
func (s *PoizonServer) refreshPrices(ctx context.Context, client *clients.PoizonClient, engine *pricing.PriceFormulaEngine, productRepo *repositories.ProductRepository) error {
	products, err := productRepo.GetCompleteProducts()
	if err != nil {
		return err
	}
	s.log.Log("Обновление цен: %d товаров", len(products))

	for _, product := range products {
		info, err := client.PriceInfo(ctx, product.ExternalID)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.log.Log("Товар %s: цены не получены: %v", product.ExternalID, err)
			continue
		}

		var updates []repositories.PriceUpdate
		for _, variant := range product.Variants {
			tier, ok := parse.SelectTier(parse.PriceTiersFromInfo(info, variant.SkuID))
			if !ok {
				continue
			}
			base, ok := parse.BasePriceFromTier(tier, true)
			if !ok {
				continue
			}
			updates = append(updates, repositories.PriceUpdate{
				SkuID:       variant.SkuID,
				BasePrice:   base,
				RetailPrice: minRetail(engine.CalculateForAllTiers(base, product.SourceCategoryID)),
			})
		}
		if len(updates) == 0 {
			continue
		}
		if err := productRepo.UpdatePricesOnly(product.ExternalID, updates); err != nil {
			return err
		}
	}
	return nil
}

// В карточке храним розничную цену "от" — минимальную среди сроков доставки.
func minRetail(byTier map[string]float64) float64 {
	min := 0.0
	for _, price := range byTier {
		if min == 0 || price < min {
			min = price
		}
	}
	return min
}

// reportRun печатает сводку прогона: эффективность нормализации, состояние
// базы и последние ошибки синхронизации.
func (s *PoizonServer) reportRun(normalizer *parse.ProductNormalizer, client *clients.PoizonClient, productRepo *repositories.ProductRepository, syncLogRepo *repositories.SyncLogRepository) {
	stats := normalizer.Stats()
	s.log.Log("Эффективность обработки: %.1f%% (%d/%d), API: %.1f%%",
		stats.Efficiency, stats.Valid, stats.Processed, client.Efficiency())
	for reason, count := range stats.InvalidReasons {
		s.log.Log("  отказ %s: %d", reason, count)
	}

	if complete, stubCount, err := productRepo.CountByCompleteness(); err == nil {
		s.log.Log("В базе: %d полных товаров, %d заглушек", complete, stubCount)
	}
	if entries, err := syncLogRepo.LastEntries(10); err == nil {
		for _, entry := range entries {
			if entry.Status == "error" {
				s.log.Log("  ошибка синхронизации %s %s: %s", entry.Action, entry.ExternalID, entry.Message)
			}
		}
	}
}

// loadCategories читает таксономию из файла, если он задан, и синхронизирует
// её в БД; иначе поднимает то, что уже сохранено.
func (s *PoizonServer) loadCategories(categoryRepo *repositories.CategoryRepository) (map[int]models.CategoryNode, error) {
	if s.config.Poizon.CategoriesFile != "" {
		flat, err := classify.LoadCategoryTree(s.config.Poizon.CategoriesFile)
		if err != nil {
			return nil, err
		}
		if err := categoryRepo.UpsertCategories(flat); err != nil {
			return nil, err
		}
		return flat, nil
	}
	return categoryRepo.GetAll()
}

// enrichStubs превращает заглушки в полные товары: тянет документы из
// upstream, нормализует и сохраняет. Неудачные документы остаются
// заглушками до следующего прогона.
func (s *PoizonServer) enrichStubs(ctx context.Context, client *clients.PoizonClient, normalizer *parse.ProductNormalizer, productRepo *repositories.ProductRepository) error {
	stubs, err := productRepo.GetProductsWithoutData()
	if err != nil {
		return err
	}
	if len(stubs) == 0 {
		s.log.Log("Заглушек на обработку нет")
		return nil
	}
	s.log.Log("Заглушек на обработку: %d", len(stubs))

	byID := make(map[string]repositories.ProductStub, len(stubs))
	ids := make([]string, 0, len(stubs))
	for _, stub := range stubs {
		byID[stub.ExternalID] = stub
		ids = append(ids, stub.ExternalID)
	}

	docs, err := client.FetchByArticleList(ctx, ids)
	if err != nil {
		return err
	}

	for _, doc := range docs {
		externalID := doc.String("spuId")
		stub := byID[externalID]

		categoryIDs := make([]int, 0, len(stub.CategoryIDs))
		for _, id := range stub.CategoryIDs {
			categoryIDs = append(categoryIDs, int(id))
		}

		product, err := normalizer.Normalize(doc, stub.ReferenceVariantID, categoryIDs)
		if err != nil {
			s.log.Log("Товар %s не нормализован: %v", externalID, err)
			continue
		}
		if err := productRepo.SaveNormalized(product); err != nil {
			return err
		}
	}
	return nil
}

// ServeMetrics поднимает HTTP-эндпоинт /metrics для Prometheus.
func (s *PoizonServer) ServeMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.MetricsHandler())

	go func() {
		if err := http.ListenAndServe(addr, middleware.PrometheusMiddleware(mux)); err != nil {
			s.log.Log("Metrics server stopped: %v", err)
		}
	}()
}
