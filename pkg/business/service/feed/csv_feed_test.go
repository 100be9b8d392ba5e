package feed

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"plummymarket_api/internal/poizon/business/models"
)

func TestWriteFeed(t *testing.T) {
	feed := NewCatalogFeed(io.Discard)

	products := []*models.NormalizedProduct{
		{
			ExternalID:    "7501234",
			Title:         "Nike Air Jordan 1",
			Brand:         "Nike",
			ArticleNumber: "DZ5485-612",
			Images:        []string{"https://cdn.example.com/main.jpg"},
			DataComplete:  true,
			Variants: []models.Variant{
				{SkuID: "9001", SizeLabel: "40", BasePrice: 450, RetailPrice: 1125, Available: true},
				{SkuID: "9002", SizeLabel: "41", BasePrice: 460, RetailPrice: 1150, Available: false},
			},
		},
		{ExternalID: "нет-данных", DataComplete: false},
	}

	var buf bytes.Buffer
	require.NoError(t, feed.Write(&buf, products))

	// файл в windows-1251: декодируем обратно перед проверкой
	decoded, err := io.ReadAll(transform.NewReader(&buf, charmap.Windows1251.NewDecoder()))
	require.NoError(t, err)
	content := string(decoded)

	lines := strings.Split(strings.TrimSpace(content), "\n")
	// заголовок + одна строка: недоступный вариант и заглушка не выгружаются
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Артикул")
	assert.Contains(t, lines[1], "DZ5485-612")
	assert.Contains(t, lines[1], "Nike Air Jordan 1")
	assert.Contains(t, lines[1], "40")
	assert.Contains(t, lines[1], "450.00")
	assert.Contains(t, lines[1], "1125.00")
	assert.Contains(t, lines[1], "в наличии")
	assert.NotContains(t, content, ";41;")
}
