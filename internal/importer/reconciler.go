package importer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"lodge-backoffice/internal/models"
	"lodge-backoffice/internal/repositories"
)

// ErrNothingToImport is returned when a run is started with no rows at all.
var ErrNothingToImport = errors.New("nothing to import")

// maxLoggedMessages caps the warning and error lists stored in an import
// log. Counts are never capped, only the stored strings.
const maxLoggedMessages = 100

// Row is one successfully normalized record, tagged with its 1-based
// position in the source file so messages can point back at the sheet.
type Row struct {
	RowNumber int                   `json:"row_number"`
	Record    *models.PaymentRecord `json:"record"`
	Warnings  []string              `json:"warnings,omitempty"`
}

// Batch is the outcome of normalizing a whole sheet: the rows that survived,
// plus the warnings and hard errors collected along the way. It doubles as
// the preview payload shown to the operator before they confirm the import.
type Batch struct {
	FileName  string   `json:"file_name"`
	TotalRows int      `json:"total_rows"`
	Rows      []Row    `json:"rows"`
	Warnings  []string `json:"warnings,omitempty"`
	Errors    []string `json:"errors,omitempty"`
}

// NormalizeSheet runs every parsed row through NormalizeAndCalculate.
// Rows with hard errors are excluded from the batch but recorded in the
// error list with their source row number; the rest of the sheet is
// unaffected. Like the normalizer itself this does no I/O.
func NormalizeSheet(sheet *Sheet) *Batch {
	batch := &Batch{
		FileName:  sheet.FileName,
		TotalRows: len(sheet.Rows),
	}

	for i, raw := range sheet.Rows {
		rowNumber := sheet.RowNumbers[i]
		record, warnings, err := NormalizeAndCalculate(raw)
		if err != nil {
			batch.Errors = append(batch.Errors, fmt.Sprintf("row %d: %v", rowNumber, err))
			continue
		}
		for _, w := range warnings {
			batch.Warnings = append(batch.Warnings, fmt.Sprintf("row %d: %s", rowNumber, w))
		}
		batch.Rows = append(batch.Rows, Row{
			RowNumber: rowNumber,
			Record:    record,
			Warnings:  warnings,
		})
	}

	return batch
}

// Reconciler performs the durable half of an import: an idempotent
// create-or-update per record against the payments ledger, then one
// append-only import log for the whole run.
type Reconciler struct {
	payments repositories.PaymentRepository
	logs     repositories.ImportLogRepository
}

func NewReconciler(payments repositories.PaymentRepository, logs repositories.ImportLogRepository) *Reconciler {
	return &Reconciler{
		payments: payments,
		logs:     logs,
	}
}

// runSummary accumulates the counters for one run. It is passed through
// explicitly and folded into the import log at the end.
type runSummary struct {
	created int
	updated int
	errors  []string
}

// Run reconciles a confirmed batch against the ledger, row by row in source
// order. A lookup or write failure on one record is recorded and the run
// moves on to the next record; the import never aborts on a single record.
// Rows sharing a natural key collapse to one ledger entry, last row wins.
// Re-running the same batch leaves the ledger unchanged but appends a fresh
// import log.
func (r *Reconciler) Run(ctx context.Context, batch *Batch) (*models.ImportLog, error) {
	if batch == nil || batch.TotalRows == 0 {
		return nil, ErrNothingToImport
	}

	summary := runSummary{
		errors: append([]string{}, batch.Errors...),
	}
	now := time.Now()

	for _, row := range batch.Rows {
		record := row.Record

		// Existence check and write are two separate store calls, not a
		// transaction. A concurrent external writer can race this; accepted
		// for a single-operator tool.
		existing, err := r.payments.FindByNaturalKey(ctx, record.RoomNumber, record.Year, record.Month)
		switch {
		case err == nil:
			record.ID = existing.ID
			record.CreatedAt = existing.CreatedAt
			record.UpdatedAt = now
			record.ImportedAt = now
			if err := r.payments.Update(ctx, record); err != nil {
				summary.errors = append(summary.errors, fmt.Sprintf("row %d: failed to update payment: %v", row.RowNumber, err))
				continue
			}
			summary.updated++
		case errors.Is(err, models.ErrPaymentNotFound):
			record.ID = record.NaturalKey()
			record.CreatedAt = now
			record.UpdatedAt = now
			record.ImportedAt = now
			if err := r.payments.Insert(ctx, record); err != nil {
				summary.errors = append(summary.errors, fmt.Sprintf("row %d: failed to create payment: %v", row.RowNumber, err))
				continue
			}
			summary.created++
		default:
			summary.errors = append(summary.errors, fmt.Sprintf("row %d: failed to look up payment: %v", row.RowNumber, err))
			continue
		}
	}

	log := &models.ImportLog{
		ID:           uuid.NewString(),
		FileName:     batch.FileName,
		TotalRows:    batch.TotalRows,
		CreatedCount: summary.created,
		UpdatedCount: summary.updated,
		ErrorCount:   len(summary.errors),
		WarningCount: len(batch.Warnings),
		Errors:       capMessages(summary.errors),
		Warnings:     capMessages(batch.Warnings),
		ImportedAt:   time.Now(),
	}
	if err := r.logs.Create(ctx, log); err != nil {
		return nil, fmt.Errorf("failed to persist import log: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"file":     batch.FileName,
		"total":    log.TotalRows,
		"created":  log.CreatedCount,
		"updated":  log.UpdatedCount,
		"errors":   log.ErrorCount,
		"warnings": log.WarningCount,
	}).Info("import run finished")

	return log, nil
}

func capMessages(messages []string) []string {
	if len(messages) <= maxLoggedMessages {
		return messages
	}
	return messages[:maxLoggedMessages]
}
