package poizon

import (
	"database/sql"
	"fmt"
	"log"
)

func checkAndSkipMigration(db *sql.DB, name string) (bool, error) {
	var migrationExists bool
	err := db.QueryRow("SELECT EXISTS (SELECT 1 FROM migrations.migrations WHERE name = $1)", name).Scan(&migrationExists)
	if err != nil {
		return false, fmt.Errorf("failed to check migration status: %w", err)
	}
	if migrationExists {
		log.Printf("Migration '%s' already completed. Skipping.", name)
	}
	return migrationExists, nil
}

func executeAndMarkMigration(db *sql.DB, query, name string) error {
	_, err := db.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to execute migration '%s': %w", name, err)
	}
	_, err = db.Exec("INSERT INTO migrations.migrations (name, time) VALUES ($1, current_timestamp)", name)
	if err != nil {
		return fmt.Errorf("failed to mark '%s' migration as complete: %w", name, err)
	}
	return nil
}

type CreatePoizonSchema struct{}

func (m *CreatePoizonSchema) UpMigration(db *sql.DB) error {
	query := `
	CREATE SCHEMA IF NOT EXISTS poizon;`
	_, err := db.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create schema poizon: %w", err)
	}
	return nil
}

type CreatePoizonCategoriesTable struct{}

func (m *CreatePoizonCategoriesTable) UpMigration(db *sql.DB) error {
	if ok, err := checkAndSkipMigration(db, "poizon.categories"); err != nil {
		return err
	} else if ok {
		return nil
	}
	query := `
	CREATE TABLE IF NOT EXISTS poizon.categories (
		category_id INT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		slug VARCHAR(255),
		parent_id INT,
		storefront_id INT
	);`
	if err := executeAndMarkMigration(db, query, "poizon.categories"); err != nil {
		return err
	}
	log.Println("Migration 'poizon.categories' completed successfully.")
	return nil
}

type CreatePoizonProductsTable struct{}

func (m *CreatePoizonProductsTable) UpMigration(db *sql.DB) error {
	if ok, err := checkAndSkipMigration(db, "poizon.products"); err != nil {
		return err
	} else if ok {
		return nil
	}
	query := `
	CREATE TABLE IF NOT EXISTS poizon.products (
		external_id VARCHAR(64) PRIMARY KEY,
		reference_variant_id VARCHAR(64),
		title TEXT,
		brand VARCHAR(255),
		article_number VARCHAR(255),
		source_category_id INT,
		source_category_name VARCHAR(255),
		category_ids INT[],
		images TEXT[],
		size_kind VARCHAR(32),
		data_complete BOOLEAN NOT NULL DEFAULT FALSE,
		storefront_id INT,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);`
	if err := executeAndMarkMigration(db, query, "poizon.products"); err != nil {
		return err
	}
	log.Println("Migration 'poizon.products' completed successfully.")
	return nil
}

type CreatePoizonVariantsTable struct{}

func (m *CreatePoizonVariantsTable) UpMigration(db *sql.DB) error {
	if ok, err := checkAndSkipMigration(db, "poizon.variants"); err != nil {
		return err
	} else if ok {
		return nil
	}
	query := `
	CREATE TABLE IF NOT EXISTS poizon.variants (
		variant_id SERIAL PRIMARY KEY,
		external_id VARCHAR(64) NOT NULL,
		sku_id VARCHAR(64) NOT NULL,
		size_label VARCHAR(32) NOT NULL,
		position INT NOT NULL, -- порядок вариантов после сортировки
		base_price DECIMAL(12, 2),
		retail_price DECIMAL(12, 2),
		stock_status INT,
		available BOOLEAN NOT NULL DEFAULT TRUE,
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		FOREIGN KEY (external_id) REFERENCES poizon.products(external_id) ON DELETE CASCADE,
		CONSTRAINT unique_product_sku UNIQUE(external_id, sku_id)
	);`
	if err := executeAndMarkMigration(db, query, "poizon.variants"); err != nil {
		return err
	}
	log.Println("Migration 'poizon.variants' completed successfully.")
	return nil
}

type CreatePoizonSyncLogTable struct{}

func (m *CreatePoizonSyncLogTable) UpMigration(db *sql.DB) error {
	if ok, err := checkAndSkipMigration(db, "poizon.sync_log"); err != nil {
		return err
	} else if ok {
		return nil
	}
	query := `
	CREATE TABLE IF NOT EXISTS poizon.sync_log (
		log_id SERIAL PRIMARY KEY,
		external_id VARCHAR(64) NOT NULL,
		action VARCHAR(32) NOT NULL,   -- create / update / delete
		status VARCHAR(32) NOT NULL,   -- success / error
		message TEXT,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);`
	if err := executeAndMarkMigration(db, query, "poizon.sync_log"); err != nil {
		return err
	}
	log.Println("Migration 'poizon.sync_log' completed successfully.")
	return nil
}
