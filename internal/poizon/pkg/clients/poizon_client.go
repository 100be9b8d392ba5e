package clients

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"plummymarket_api/config"
	"plummymarket_api/internal/poizon/business/document"
	"plummymarket_api/metrics"
	"plummymarket_api/pkg/logger"
)

// PoizonClient ходит в upstream API за карточками товаров и ценами.
// Все запросы проходят через общий rate.Limiter: upstream банит за
// превышение лимита, а не отдаёт 429.
type PoizonClient struct {
	apiURL  string
	apiKey  string
	limiter *rate.Limiter
	client  *http.Client
	log     logger.Logger

	mu         sync.Mutex
	requests   int
	successful int
}

func NewPoizonClient(cfg config.PoizonConfig, writer io.Writer) *PoizonClient {
	return &PoizonClient{
		apiURL:  cfg.BaseUrl,
		apiKey:  cfg.ApiKey,
		limiter: rate.NewLimiter(rate.Every(time.Second/2), 3),
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     logger.NewLogger(writer, "[PoizonClient]"),
	}
}

func (c *PoizonClient) doRequest(ctx context.Context, endpoint string, params url.Values) (document.Document, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("ожидание лимитера прервано: %w", err)
	}
	c.countRequest()

	requestURL := fmt.Sprintf("%s%s?%s", c.apiURL, endpoint, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("request was cancelled: %w", ctx.Err())
		default:
			return nil, fmt.Errorf("failed to execute request: %w", err)
		}
	}
	defer resp.Body.Close()

	metrics.RecordApiRequest(endpoint, resp.StatusCode)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("non-OK status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	doc, err := document.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	c.countSuccess()
	return doc, nil
}

// SearchProducts ищет товары по ключевому слову, постранично.
func (c *PoizonClient) SearchProducts(ctx context.Context, keyword string, page, limit int) ([]document.Document, error) {
	params := url.Values{}
	params.Set("keyword", keyword)
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))

	c.log.Log("Поиск товаров: keyword=%s, page=%d, limit=%d", keyword, page, limit)
	doc, err := c.doRequest(ctx, "/api/dewu/searchProducts", params)
	if err != nil {
		return nil, err
	}

	items := doc.Slice("productList")
	products := make([]document.Document, 0, len(items))
	for _, raw := range items {
		if product := document.AsDocument(raw); product != nil {
			products = append(products, product)
		}
	}
	c.log.Log("Получено %d товаров", len(products))
	return products, nil
}

// ProductDetail возвращает базовую карточку товара без детальных цен.
func (c *PoizonClient) ProductDetail(ctx context.Context, spuID string) (document.Document, error) {
	params := url.Values{}
	params.Set("spuId", spuID)
	return c.doRequest(ctx, "/api/dewu/productDetail", params)
}

// ProductDetailWithPrice возвращает карточку товара вместе с ценами SKU.
func (c *PoizonClient) ProductDetailWithPrice(ctx context.Context, spuID string) (document.Document, error) {
	params := url.Values{}
	params.Set("spuId", spuID)
	return c.doRequest(ctx, "/api/dewu/productDetailWithPrice", params)
}

// PriceInfo возвращает детальные цены по всем SKU товара: {"skus": {...}}.
func (c *PoizonClient) PriceInfo(ctx context.Context, spuID string) (document.Document, error) {
	params := url.Values{}
	params.Set("spuId", spuID)
	return c.doRequest(ctx, "/api/dewu/priceInfo", params)
}

// FetchByArticleList загружает товары по списку SPU ID, объединяя карточку
// с детальными ценами. Товары без базовых данных пропускаются; отсутствие
// цен не фатально — такой документ отбракует нормализатор.
func (c *PoizonClient) FetchByArticleList(ctx context.Context, spuIDs []string) ([]document.Document, error) {
	products := make([]document.Document, 0, len(spuIDs))
	for i, spuID := range spuIDs {
		c.log.Log("Товар %d/%d: %s", i+1, len(spuIDs), spuID)

		detail, err := c.ProductDetail(ctx, spuID)
		if err != nil {
			if ctx.Err() != nil {
				return products, ctx.Err()
			}
			c.log.Log("Товар %s пропущен - нет базовых данных: %v", spuID, err)
			continue
		}

		priceInfo, err := c.PriceInfo(ctx, spuID)
		if err != nil {
			if ctx.Err() != nil {
				return products, ctx.Err()
			}
			c.log.Log("Для товара %s не удалось получить детальные цены: %v", spuID, err)
		} else {
			detail["priceInfo"] = map[string]interface{}(priceInfo)
		}

		detail["spuId"] = spuID
		products = append(products, detail)
	}
	c.log.Log("Загружено %d/%d товаров", len(products), len(spuIDs))
	return products, nil
}

// Efficiency возвращает процент успешных запросов к upstream API.
func (c *PoizonClient) Efficiency() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.requests == 0 {
		return 0
	}
	return float64(c.successful) / float64(c.requests) * 100
}

func (c *PoizonClient) countRequest() {
	c.mu.Lock()
	c.requests++
	c.mu.Unlock()
}

func (c *PoizonClient) countSuccess() {
	c.mu.Lock()
	c.successful++
	c.mu.Unlock()
}
