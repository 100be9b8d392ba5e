package clients

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plummymarket_api/config"
)

func newTestClient(serverURL string) *PoizonClient {
	return NewPoizonClient(config.PoizonConfig{ApiKey: "test-key", BaseUrl: serverURL}, io.Discard)
}

func TestSearchProducts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/dewu/searchProducts", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "nike", r.URL.Query().Get("keyword"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"total": 2, "productList": [{"spuId": 1}, {"spuId": 2}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	products, err := client.SearchProducts(context.Background(), "nike", 2, 50)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "1", products[0].String("spuId"))
}

func TestFetchByArticleListMergesPrices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/dewu/productDetail":
			_, _ = w.Write([]byte(`{"detail": {"title": "Nike Dunk"}}`))
		case "/api/dewu/priceInfo":
			_, _ = w.Write([]byte(`{"skus": {"9001": {"prices": [{"tradeType": 2, "price": 48000}]}}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	products, err := client.FetchByArticleList(context.Background(), []string{"7501234"})
	require.NoError(t, err)
	require.Len(t, products, 1)

	doc := products[0]
	assert.Equal(t, "7501234", doc.String("spuId"))
	assert.Equal(t, "Nike Dunk", doc.String("detail", "title"))
	// цены из priceInfo вложены в документ товара
	prices := doc.Slice("priceInfo", "skus", "9001", "prices")
	assert.Len(t, prices, 1)
}

func TestFetchByArticleListSkipsFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	products, err := client.FetchByArticleList(context.Background(), []string{"1", "2"})
	require.NoError(t, err)
	assert.Empty(t, products)
	assert.Equal(t, 0.0, client.Efficiency())
}

func TestEfficiency(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.ProductDetail(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, 100.0, client.Efficiency())
}
