package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"lodge-backoffice/internal/models"
)

type stubLedger struct {
	records   map[string]*models.PaymentRecord
	failRooms map[int]bool
	lookupErr error
}

func newStubLedger() *stubLedger {
	return &stubLedger{
		records:   make(map[string]*models.PaymentRecord),
		failRooms: make(map[int]bool),
	}
}

func ledgerKey(room, year, month int) string {
	return fmt.Sprintf("%d_%d_%d", room, year, month)
}

func (s *stubLedger) FindByNaturalKey(ctx context.Context, room, year, month int) (*models.PaymentRecord, error) {
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	record, ok := s.records[ledgerKey(room, year, month)]
	if !ok {
		return nil, models.ErrPaymentNotFound
	}
	copied := *record
	return &copied, nil
}

func (s *stubLedger) Insert(ctx context.Context, p *models.PaymentRecord) error {
	if s.failRooms[p.RoomNumber] {
		return errors.New("store unavailable")
	}
	copied := *p
	s.records[p.ID] = &copied
	return nil
}

func (s *stubLedger) Update(ctx context.Context, p *models.PaymentRecord) error {
	if s.failRooms[p.RoomNumber] {
		return errors.New("store unavailable")
	}
	copied := *p
	s.records[p.ID] = &copied
	return nil
}

func (s *stubLedger) ListByRoom(ctx context.Context, room int) ([]*models.PaymentRecord, error) {
	return nil, nil
}

func (s *stubLedger) ListByPeriod(ctx context.Context, year, month int) ([]*models.PaymentRecord, error) {
	return nil, nil
}

type stubLogStore struct {
	logs []*models.ImportLog
	fail bool
}

func (s *stubLogStore) Create(ctx context.Context, log *models.ImportLog) error {
	if s.fail {
		return errors.New("store unavailable")
	}
	s.logs = append(s.logs, log)
	return nil
}

func (s *stubLogStore) List(ctx context.Context, limit, offset int) ([]*models.ImportLog, error) {
	return s.logs, nil
}

func normalizedBatch(t *testing.T, csvData string) *Batch {
	t.Helper()
	sheet, err := ParseSheet("history.csv", []byte(csvData))
	if err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}
	return NormalizeSheet(sheet)
}

func TestRunCreatesRecordsAndWritesLog(t *testing.T) {
	ledger := newStubLedger()
	logs := &stubLogStore{}
	batch := normalizedBatch(t, sampleCSV)

	log, err := NewReconciler(ledger, logs).Run(context.Background(), batch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if log.TotalRows != 2 || log.CreatedCount != 2 || log.UpdatedCount != 0 || log.ErrorCount != 0 {
		t.Fatalf("unexpected log: %+v", log)
	}
	if len(ledger.records) != 2 {
		t.Fatalf("expected 2 ledger entries, got %d", len(ledger.records))
	}
	if len(logs.logs) != 1 {
		t.Fatalf("expected 1 import log, got %d", len(logs.logs))
	}
	if _, ok := ledger.records["105_2024_6"]; !ok {
		t.Fatalf("missing deterministic ledger id, have %v", ledger.records)
	}
}

func TestRunReimportIsIdempotentOnLedger(t *testing.T) {
	ledger := newStubLedger()
	logs := &stubLogStore{}
	reconciler := NewReconciler(ledger, logs)

	if _, err := reconciler.Run(context.Background(), normalizedBatch(t, sampleCSV)); err != nil {
		t.Fatalf("first run: %v", err)
	}
	firstCreatedAt := ledger.records["105_2024_6"].CreatedAt
	time.Sleep(5 * time.Millisecond)

	log, err := reconciler.Run(context.Background(), normalizedBatch(t, sampleCSV))
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if log.CreatedCount != 0 || log.UpdatedCount != 2 {
		t.Fatalf("second run should only update: %+v", log)
	}
	if len(ledger.records) != 2 {
		t.Fatalf("re-import must not duplicate entries, got %d", len(ledger.records))
	}
	if !ledger.records["105_2024_6"].CreatedAt.Equal(firstCreatedAt) {
		t.Fatalf("created_at must survive re-import")
	}
	if !ledger.records["105_2024_6"].UpdatedAt.After(firstCreatedAt) {
		t.Fatalf("updated_at must be restamped on re-import")
	}
	if len(logs.logs) != 2 {
		t.Fatalf("each run appends its own log, got %d", len(logs.logs))
	}
}

func TestRunNaturalKeyCollisionLastRowWins(t *testing.T) {
	data := `Room No.,Tenant Name,Year,Month,Rent,Reading (Prev.),Reading (Curr.),Price/Unit,Paid
105,Asha,2024,6,5000,100,150,8,5400
105,Meena,2024,6,5200,100,150,8,0
`
	ledger := newStubLedger()
	logs := &stubLogStore{}

	log, err := NewReconciler(ledger, logs).Run(context.Background(), normalizedBatch(t, data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ledger.records) != 1 {
		t.Fatalf("colliding rows must collapse to one entry, got %d", len(ledger.records))
	}
	if log.CreatedCount != 1 || log.UpdatedCount != 1 {
		t.Fatalf("expected 1 create + 1 update, got %+v", log)
	}
	if got := ledger.records["105_2024_6"].TenantName; got != "Meena" {
		t.Fatalf("last row in source order must win, got tenant %q", got)
	}
}

func TestRunHardErrorRowExcludedButLogged(t *testing.T) {
	data := `Room No.,Tenant Name,Year,Month,Rent,Reading (Prev.),Reading (Curr.),Price/Unit,Paid
abc,Asha,2024,6,5000,100,150,8,5400
210,Ravi,2023,3,4500,200,260,8,0
`
	ledger := newStubLedger()
	logs := &stubLogStore{}

	log, err := NewReconciler(ledger, logs).Run(context.Background(), normalizedBatch(t, data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ledger.records) != 1 {
		t.Fatalf("hard-error row must not reach the ledger, got %d entries", len(ledger.records))
	}
	if log.ErrorCount != 1 {
		t.Fatalf("expected 1 error, got %+v", log)
	}
	if !strings.Contains(log.Errors[0], "row 2") {
		t.Fatalf("error must carry the source row index, got %q", log.Errors[0])
	}
}

func TestRunStoreFailureOnOneRecordDoesNotAbort(t *testing.T) {
	ledger := newStubLedger()
	ledger.failRooms[105] = true
	logs := &stubLogStore{}

	log, err := NewReconciler(ledger, logs).Run(context.Background(), normalizedBatch(t, sampleCSV))
	if err != nil {
		t.Fatalf("a single record failure must not fail the run: %v", err)
	}

	if log.CreatedCount != 1 || log.ErrorCount != 1 {
		t.Fatalf("expected 1 created and 1 error, got %+v", log)
	}
	if _, ok := ledger.records["210_2023_3"]; !ok {
		t.Fatalf("remaining rows must still be written")
	}
	if !strings.Contains(log.Errors[0], "row 2") {
		t.Fatalf("failure must carry the source row index, got %q", log.Errors[0])
	}
}

func TestRunEmptyBatchIsPipelineFailure(t *testing.T) {
	ledger := newStubLedger()
	logs := &stubLogStore{}

	_, err := NewReconciler(ledger, logs).Run(context.Background(), &Batch{FileName: "history.csv"})
	if !errors.Is(err, ErrNothingToImport) {
		t.Fatalf("expected ErrNothingToImport, got %v", err)
	}
	if len(logs.logs) != 0 {
		t.Fatalf("pipeline failure must not write an import log")
	}
}

func TestRunLogWriteFailureFailsTheRun(t *testing.T) {
	ledger := newStubLedger()
	logs := &stubLogStore{fail: true}

	_, err := NewReconciler(ledger, logs).Run(context.Background(), normalizedBatch(t, sampleCSV))
	if err == nil {
		t.Fatalf("expected an error when the import log cannot be written")
	}
}

func TestRunCapsStoredMessagesAtOneHundred(t *testing.T) {
	record, _, err := NormalizeAndCalculate(baseRow())
	if err != nil {
		t.Fatalf("fixture row failed to normalize: %v", err)
	}
	batch := &Batch{
		FileName:  "history.csv",
		TotalRows: 1,
		Rows:      []Row{{RowNumber: 2, Record: record}},
	}
	for i := 0; i < 150; i++ {
		batch.Warnings = append(batch.Warnings, fmt.Sprintf("warning %d", i))
		batch.Errors = append(batch.Errors, fmt.Sprintf("error %d", i))
	}

	ledger := newStubLedger()
	logs := &stubLogStore{}

	log, err := NewReconciler(ledger, logs).Run(context.Background(), batch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(log.Warnings) != 100 || len(log.Errors) != 100 {
		t.Fatalf("stored lists must cap at 100, got %d warnings %d errors", len(log.Warnings), len(log.Errors))
	}
	if log.WarningCount != 150 || log.ErrorCount != 150 {
		t.Fatalf("counts must stay uncapped, got %+v", log)
	}
}
