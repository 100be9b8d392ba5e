package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plummymarket_api/config"
)

func newTestClient(serverURL string) *StorefrontClient {
	return NewStorefrontClient(config.StorefrontConfig{Url: serverURL, Key: "ck_test", Secret: "cs_test"}, io.Discard)
}

func TestCreateProduct(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/wp-json/wc/v3/products", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "ck_test", user)
		assert.Equal(t, "cs_test", pass)

		var payload ProductPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "Nike Air Jordan 1", payload.Name)
		assert.Equal(t, "variable", payload.Type)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 4242}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	id, err := client.CreateProduct(context.Background(), ProductPayload{Name: "Nike Air Jordan 1", Type: "variable"})
	require.NoError(t, err)
	assert.Equal(t, 4242, id)
}

func TestGetCategoriesPaginates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "1":
			_, _ = w.Write([]byte(`[{"id": 103, "name": "Кроссовки и кеды", "slug": "sneakers"}]`))
		case "2":
			_, _ = w.Write([]byte(`[{"id": 105, "name": "Одежда", "slug": "clothing"}]`))
		default:
			_, _ = w.Write([]byte(`[]`))
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	categories, err := client.GetCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, 103, categories[0].ID)
	assert.Equal(t, "Одежда", categories[1].Name)
}

func TestGetProductIDsByExternal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "1" {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_, _ = w.Write([]byte(`[
			{"id": 10, "meta_data": [{"key": "spu_id", "value": "7501234"}]},
			{"id": 11, "meta_data": [{"key": "other", "value": "x"}]}
		]`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	ids, err := client.GetProductIDsByExternal(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"7501234": 10}, ids)
}

func TestVariationsBatch(t *testing.T) {
	var gotCreate, gotDelete bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wp-json/wc/v3/products/4242/variations/batch", r.URL.Path)

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		if _, ok := payload["create"]; ok {
			gotCreate = true
		}
		if _, ok := payload["delete"]; ok {
			gotDelete = true
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	err := client.CreateVariationsBatch(context.Background(), 4242, []VariationPayload{{RegularPrice: "1920.00"}})
	require.NoError(t, err)
	require.NoError(t, client.DeleteVariationsBatch(context.Background(), 4242, []int{1, 2}))

	assert.True(t, gotCreate)
	assert.True(t, gotDelete)
}

func TestErrorStatusIncludesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code": "woocommerce_rest_invalid_product"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.CreateProduct(context.Background(), ProductPayload{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "woocommerce_rest_invalid_product")
}

func TestDeleteVariationsBatchNoop(t *testing.T) {
	// без id запрос не отправляется вовсе
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error(fmt.Sprintf("unexpected request: %s", r.URL.Path))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	require.NoError(t, client.DeleteVariationsBatch(context.Background(), 4242, nil))
}
