package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"plummymarket_api/config/values"
)

type Config interface {
}

type MarketplaceConfig interface {
}

// PoizonConfig — доступ к upstream API и настройки нормализации.
type PoizonConfig struct {
	ApiKey         string                  `yaml:"api_key"`
	BaseUrl        string                  `yaml:"base_url"`
	CategoriesFile string                  `yaml:"categories_file"`
	Articles       []ArticleEntry          `yaml:"articles"`
	RefreshPrices  bool                    `yaml:"refresh_prices"`
	Filter         values.FilterValues     `yaml:"filter"`
	Normalizer     values.NormalizerValues `yaml:"normalizer"`
}

// ArticleEntry — артикул, добавленный оператором на обработку.
type ArticleEntry struct {
	SpuID              string `yaml:"spu_id"`
	ReferenceVariantID string `yaml:"reference_variant_id"`
	CategoryIDs        []int  `yaml:"category_ids"`
}

// StorefrontConfig — витрина, в которую публикуются нормализованные товары.
type StorefrontConfig struct {
	Url     string               `yaml:"url"`
	Key     string               `yaml:"key"`
	Secret  string               `yaml:"secret"`
	Pricing values.PricingValues `yaml:"pricing"`
}

type AppConfig struct {
	Poizon     PoizonConfig     `yaml:"poizon"`
	Storefront StorefrontConfig `yaml:"storefront"`
	Postgres   PostgresConfig   `yaml:"postgres"`
	FeedFile   string           `yaml:"feed_file"`
}

func LoadConfig(filename string) (*AppConfig, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	config := &AppConfig{}
	if err := decoder.Decode(config); err != nil {
		return nil, err
	}
	applyDefaults(config)
	return config, nil
}

// applyDefaults подставляет дефолтные значения туда, где yaml ничего не задал.
func applyDefaults(c *AppConfig) {
	if c.Poizon.Filter.MenShoesRootID == 0 && c.Poizon.Filter.WomenShoesRootID == 0 {
		c.Poizon.Filter = values.DefaultFilterValues()
	}
	if len(c.Poizon.Normalizer.WidthTokens) == 0 {
		c.Poizon.Normalizer = values.DefaultNormalizerValues()
	}
	if len(c.Storefront.Pricing.Parameters) == 0 && len(c.Storefront.Pricing.Formulas.Default) == 0 {
		c.Storefront.Pricing = values.DefaultPricingValues()
	}
	if c.Postgres.Host == "" {
		c.Postgres = *GetPostgresConfig()
	}
}
