package repositories

import (
	"database/sql"
	"fmt"
	"io"
	"time"

	"plummymarket_api/pkg/logger"
)

// SyncLogRepository пишет журнал действий синхронизации с витриной:
// одна строка на каждую попытку create/update/delete.
type SyncLogRepository struct {
	db  *sql.DB
	log logger.Logger
}

func NewSyncLogRepository(db *sql.DB, writer io.Writer) *SyncLogRepository {
	return &SyncLogRepository{
		db:  db,
		log: logger.NewLogger(writer, "[SyncLogRepository]"),
	}
}

type SyncLogEntry struct {
	ExternalID string
	Action     string
	Status     string
	Message    string
	CreatedAt  time.Time
}

// Append добавляет запись журнала. Ошибка записи журнала не должна ронять
// синхронизацию, поэтому вызывающая сторона обычно только логирует её.
func (r *SyncLogRepository) Append(externalID, action, status, message string) error {
	query := `
		INSERT INTO poizon.sync_log (external_id, action, status, message)
		VALUES ($1, $2, $3, $4)`
	if _, err := r.db.Exec(query, externalID, action, status, message); err != nil {
		return fmt.Errorf("ошибка записи журнала синхронизации для %s: %w", externalID, err)
	}
	return nil
}

// LastEntries возвращает последние записи журнала, новые первыми.
func (r *SyncLogRepository) LastEntries(limit int) ([]SyncLogEntry, error) {
	query := `
		SELECT external_id, action, status, COALESCE(message, ''), created_at
		FROM poizon.sync_log ORDER BY created_at DESC LIMIT $1`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса для получения журнала: %w", err)
	}
	defer rows.Close()

	var entries []SyncLogEntry
	for rows.Next() {
		var entry SyncLogEntry
		if err := rows.Scan(&entry.ExternalID, &entry.Action, &entry.Status, &entry.Message, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования записи журнала: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}
	return entries, nil
}
