package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"lodge-backoffice/internal/models"
)

type ImportLogRepository interface {
	Create(ctx context.Context, log *models.ImportLog) error
	List(ctx context.Context, limit, offset int) ([]*models.ImportLog, error)
}

type importLogRepository struct {
	db *sql.DB
}

func NewImportLogRepository(db *sql.DB) ImportLogRepository {
	return &importLogRepository{db: db}
}

// Create appends one import run's audit record. Logs are never updated or
// deduplicated; every run gets its own entry.
func (r *importLogRepository) Create(ctx context.Context, log *models.ImportLog) error {
	errorsJSON, err := json.Marshal(log.Errors)
	if err != nil {
		return fmt.Errorf("failed to encode error list: %w", err)
	}
	warningsJSON, err := json.Marshal(log.Warnings)
	if err != nil {
		return fmt.Errorf("failed to encode warning list: %w", err)
	}

	query := `
		INSERT INTO import_logs (
			id, file_name, total_rows, created_count, updated_count,
			error_count, warning_count, errors, warnings, imported_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		log.ID,
		log.FileName,
		log.TotalRows,
		log.CreatedCount,
		log.UpdatedCount,
		log.ErrorCount,
		log.WarningCount,
		errorsJSON,
		warningsJSON,
		log.ImportedAt,
	)
	return err
}

func (r *importLogRepository) List(ctx context.Context, limit, offset int) ([]*models.ImportLog, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT id, file_name, total_rows, created_count, updated_count,
		       error_count, warning_count, errors, warnings, imported_at
		FROM import_logs
		ORDER BY imported_at DESC
		LIMIT ? OFFSET ?
	`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.ImportLog
	for rows.Next() {
		log := &models.ImportLog{}
		var errorsJSON, warningsJSON []byte
		err := rows.Scan(
			&log.ID,
			&log.FileName,
			&log.TotalRows,
			&log.CreatedCount,
			&log.UpdatedCount,
			&log.ErrorCount,
			&log.WarningCount,
			&errorsJSON,
			&warningsJSON,
			&log.ImportedAt,
		)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(errorsJSON, &log.Errors); err != nil {
			return nil, fmt.Errorf("failed to decode error list: %w", err)
		}
		if err := json.Unmarshal(warningsJSON, &log.Warnings); err != nil {
			return nil, fmt.Errorf("failed to decode warning list: %w", err)
		}
		logs = append(logs, log)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}
