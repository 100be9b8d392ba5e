package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"plummymarket_api/config"
	"plummymarket_api/metrics"
	"plummymarket_api/pkg/logger"
)

// StorefrontClient — REST-клиент витрины (WooCommerce API, basic auth
// key/secret). Витрина медленная, поэтому темп запросов ограничен.
type StorefrontClient struct {
	baseURL string
	key     string
	secret  string
	limiter *rate.Limiter
	client  *http.Client
	log     logger.Logger
}

func NewStorefrontClient(cfg config.StorefrontConfig, writer io.Writer) *StorefrontClient {
	return &StorefrontClient{
		baseURL: cfg.Url,
		key:     cfg.Key,
		secret:  cfg.Secret,
		limiter: rate.NewLimiter(rate.Every(time.Second), 2),
		client:  &http.Client{Timeout: 60 * time.Second},
		log:     logger.NewLogger(writer, "[StorefrontClient]"),
	}
}

// CategoryRef, AttributePayload и прочие типы повторяют JSON витрины.
type CategoryRef struct {
	ID int `json:"id"`
}

type ImageRef struct {
	Src string `json:"src"`
}

type MetaData struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type AttributePayload struct {
	ID        int      `json:"id"`
	Options   []string `json:"options"`
	Variation bool     `json:"variation"`
	Visible   bool     `json:"visible"`
}

type ProductPayload struct {
	Name              string             `json:"name"`
	Type              string             `json:"type"`
	Status            string             `json:"status"`
	CatalogVisibility string             `json:"catalog_visibility"`
	Categories        []CategoryRef      `json:"categories"`
	ManageStock       bool               `json:"manage_stock"`
	Backorders        string             `json:"backorders"`
	Attributes        []AttributePayload `json:"attributes"`
	MetaData          []MetaData         `json:"meta_data"`
	Images            []ImageRef         `json:"images,omitempty"`
}

type VariationAttribute struct {
	ID     int    `json:"id"`
	Option string `json:"option"`
}

type VariationPayload struct {
	RegularPrice string               `json:"regular_price"`
	ManageStock  bool                 `json:"manage_stock"`
	StockStatus  string               `json:"stock_status"`
	Attributes   []VariationAttribute `json:"attributes"`
}

type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type productResponse struct {
	ID       int        `json:"id"`
	MetaData []MetaData `json:"meta_data"`
}

func (c *StorefrontClient) doRequest(ctx context.Context, method, endpoint string, payload interface{}, response interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("ожидание лимитера прервано: %w", err)
	}

	var bodyBytes []byte
	if payload != nil {
		var err error
		bodyBytes, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, fmt.Sprintf("%s%s", c.baseURL, endpoint), bytes.NewBuffer(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.key, c.secret)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		select {
		case <-ctx.Done():
			return fmt.Errorf("request was cancelled: %w", ctx.Err())
		default:
			return fmt.Errorf("failed to execute request: %w", err)
		}
	}
	defer resp.Body.Close()

	metrics.RecordApiRequest(endpoint, resp.StatusCode)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("non-OK status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	if response == nil {
		return nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if err := json.Unmarshal(body, response); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

// GetCategories выгружает все категории витрины постранично.
func (c *StorefrontClient) GetCategories(ctx context.Context) ([]Category, error) {
	var all []Category
	for page := 1; ; page++ {
		var batch []Category
		endpoint := fmt.Sprintf("/wp-json/wc/v3/products/categories?per_page=100&page=%d", page)
		if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &batch); err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}
		all = append(all, batch...)
	}
	c.log.Log("Получено %d категорий витрины", len(all))
	return all, nil
}

// GetProductIDsByExternal строит отображение external_id -> id товара витрины
// по метаданным spu_id всех опубликованных товаров.
func (c *StorefrontClient) GetProductIDsByExternal(ctx context.Context) (map[string]int, error) {
	ids := make(map[string]int)
	for page := 1; ; page++ {
		var batch []productResponse
		endpoint := fmt.Sprintf("/wp-json/wc/v3/products?per_page=100&page=%d", page)
		if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &batch); err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}
		for _, product := range batch {
			for _, meta := range product.MetaData {
				if meta.Key == "spu_id" && meta.Value != "" {
					ids[meta.Value] = product.ID
				}
			}
		}
	}
	c.log.Log("Найдено %d опубликованных товаров", len(ids))
	return ids, nil
}

// CreateProduct создаёт родительский вариативный товар и возвращает его id.
func (c *StorefrontClient) CreateProduct(ctx context.Context, payload ProductPayload) (int, error) {
	var created productResponse
	if err := c.doRequest(ctx, http.MethodPost, "/wp-json/wc/v3/products", payload, &created); err != nil {
		return 0, err
	}
	return created.ID, nil
}

// UpdateProduct обновляет родительский товар.
func (c *StorefrontClient) UpdateProduct(ctx context.Context, productID int, payload ProductPayload) error {
	endpoint := "/wp-json/wc/v3/products/" + strconv.Itoa(productID)
	return c.doRequest(ctx, http.MethodPut, endpoint, payload, nil)
}

// SetImages добавляет изображения отдельным запросом: создание товара с
// картинками упирается в таймаут загрузки на стороне витрины.
func (c *StorefrontClient) SetImages(ctx context.Context, productID int, urls []string) error {
	images := make([]ImageRef, 0, len(urls))
	for _, url := range urls {
		if url != "" {
			images = append(images, ImageRef{Src: url})
		}
	}
	endpoint := "/wp-json/wc/v3/products/" + strconv.Itoa(productID)
	payload := map[string]interface{}{"images": images}
	return c.doRequest(ctx, http.MethodPut, endpoint, payload, nil)
}

// CreateVariationsBatch создаёт вариации товара одним batch-запросом.
func (c *StorefrontClient) CreateVariationsBatch(ctx context.Context, parentID int, variations []VariationPayload) error {
	endpoint := fmt.Sprintf("/wp-json/wc/v3/products/%d/variations/batch", parentID)
	payload := map[string]interface{}{"create": variations}
	return c.doRequest(ctx, http.MethodPost, endpoint, payload, nil)
}

// GetVariationIDs возвращает id существующих вариаций товара.
func (c *StorefrontClient) GetVariationIDs(ctx context.Context, parentID int) ([]int, error) {
	var variations []struct {
		ID int `json:"id"`
	}
	endpoint := fmt.Sprintf("/wp-json/wc/v3/products/%d/variations?per_page=100", parentID)
	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &variations); err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(variations))
	for _, variation := range variations {
		ids = append(ids, variation.ID)
	}
	return ids, nil
}

// DeleteVariationsBatch удаляет вариации одним batch-запросом.
func (c *StorefrontClient) DeleteVariationsBatch(ctx context.Context, parentID int, variationIDs []int) error {
	if len(variationIDs) == 0 {
		return nil
	}
	endpoint := fmt.Sprintf("/wp-json/wc/v3/products/%d/variations/batch", parentID)
	payload := map[string]interface{}{"delete": variationIDs}
	return c.doRequest(ctx, http.MethodPost, endpoint, payload, nil)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
