package services

import (
	"context"
	"time"

	"lodge-backoffice/internal/importer"
	"lodge-backoffice/internal/models"
	"lodge-backoffice/internal/repositories"
)

// ImportService drives the spreadsheet import pipeline: parse, normalize,
// and (once the operator has confirmed the preview) reconcile against the
// ledger. Parsing and normalization never touch the store; only Import
// performs durable writes.
type ImportService struct {
	reconciler   *importer.Reconciler
	logs         repositories.ImportLogRepository
	storeTimeout time.Duration
}

func NewImportService(
	payments repositories.PaymentRepository,
	logs repositories.ImportLogRepository,
	storeTimeout time.Duration,
) *ImportService {
	return &ImportService{
		reconciler:   importer.NewReconciler(payments, logs),
		logs:         logs,
		storeTimeout: storeTimeout,
	}
}

// Preview parses and calculates the full sheet without writing anything,
// so the caller can render the rows, warnings, and excluded rows for
// confirmation. File-level defects (unreadable file, required columns
// absent, no data rows) come back as errors with nothing processed.
func (s *ImportService) Preview(fileName string, payload []byte) (*importer.Batch, error) {
	sheet, err := importer.ParseSheet(fileName, payload)
	if err != nil {
		return nil, err
	}
	return importer.NormalizeSheet(sheet), nil
}

// Import runs the whole pipeline and persists the outcome. The same
// parse/normalize path as Preview feeds the reconciler, so what the
// operator confirmed is exactly what gets written.
func (s *ImportService) Import(ctx context.Context, fileName string, payload []byte) (*models.ImportLog, error) {
	sheet, err := importer.ParseSheet(fileName, payload)
	if err != nil {
		return nil, err
	}
	batch := importer.NormalizeSheet(sheet)

	if s.storeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.storeTimeout)
		defer cancel()
	}
	return s.reconciler.Run(ctx, batch)
}

// RecentLogs returns the newest import logs for the audit screen.
func (s *ImportService) RecentLogs(ctx context.Context, limit, offset int) ([]*models.ImportLog, error) {
	return s.logs.List(ctx, limit, offset)
}
