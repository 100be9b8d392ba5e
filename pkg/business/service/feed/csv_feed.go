package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"plummymarket_api/internal/poizon/business/models"
	"plummymarket_api/pkg/logger"
)

var feedHeader = []string{"Артикул", "Название", "Бренд", "Размер", "Цена закупки", "Цена розничная", "Наличие", "Изображение"}

// CatalogFeed выгружает активный каталог в CSV для операторов.
// Файл открывается в Excel, поэтому кодировка windows-1251 и разделитель ';'.
type CatalogFeed struct {
	log logger.Logger
}

func NewCatalogFeed(writer io.Writer) *CatalogFeed {
	return &CatalogFeed{log: logger.NewLogger(writer, "[CatalogFeed]")}
}

// Write пишет фид в произвольный writer: строка на каждый вариант товара.
func (f *CatalogFeed) Write(w io.Writer, products []*models.NormalizedProduct) error {
	encoded := transform.NewWriter(w, charmap.Windows1251.NewEncoder())
	csvWriter := csv.NewWriter(encoded)
	csvWriter.Comma = ';'

	if err := csvWriter.Write(feedHeader); err != nil {
		return fmt.Errorf("ошибка записи заголовка фида: %w", err)
	}

	rows := 0
	for _, product := range products {
		if !product.DataComplete {
			continue
		}
		for _, variant := range product.Variants {
			if !variant.Available {
				continue
			}
			record := []string{
				product.ArticleNumber,
				product.Title,
				product.Brand,
				variant.SizeLabel,
				strconv.FormatFloat(variant.BasePrice, 'f', 2, 64),
				strconv.FormatFloat(variant.RetailPrice, 'f', 2, 64),
				"в наличии",
				product.MainImageUrl(),
			}
			if err := csvWriter.Write(record); err != nil {
				return fmt.Errorf("ошибка записи строки фида для %s: %w", product.ExternalID, err)
			}
			rows++
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("ошибка завершения записи фида: %w", err)
	}
	f.log.Log("Выгружено %d строк фида по %d товарам", rows, len(products))
	return nil
}

// WriteFile пишет фид в файл, перезаписывая существующий.
func (f *CatalogFeed) WriteFile(path string, products []*models.NormalizedProduct) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("ошибка создания файла фида: %w", err)
	}
	defer file.Close()
	return f.Write(file, products)
}
