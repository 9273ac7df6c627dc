package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrPaymentNotFound is returned by ledger lookups that match no entry.
var ErrPaymentNotFound = errors.New("payment not found")

// PaymentRecord is one month's bill for one room: the normalized, fully
// calculated form of a spreadsheet row, and the unit the ledger stores.
// TenantName is a snapshot taken from the sheet; it is never checked against
// the tenant registry (TenantValidated stays false for imported records).
type PaymentRecord struct {
	ID              string          `db:"id" json:"id"`
	RoomNumber      int             `db:"room_number" json:"room_number"`
	Floor           int             `db:"floor" json:"floor"`
	TenantName      string          `db:"tenant_name" json:"tenant_name"`
	Year            int             `db:"year" json:"year"`
	Month           int             `db:"month" json:"month"`
	Date            *string         `db:"payment_date" json:"date,omitempty"`
	Rent            decimal.Decimal `db:"rent" json:"rent"`
	OldReading      decimal.Decimal `db:"old_reading" json:"old_reading"`
	CurrentReading  decimal.Decimal `db:"current_reading" json:"current_reading"`
	RatePerUnit     decimal.Decimal `db:"rate_per_unit" json:"rate_per_unit"`
	Units           decimal.Decimal `db:"units" json:"units"`
	Electricity     decimal.Decimal `db:"electricity" json:"electricity"`
	Total           decimal.Decimal `db:"total" json:"total"`
	PaidAmount      decimal.Decimal `db:"paid_amount" json:"paid_amount"`
	Balance         decimal.Decimal `db:"balance" json:"balance"`
	BalanceType     string          `db:"balance_type" json:"balance_type"`
	Status          string          `db:"status" json:"status"`
	DebitCredit     *string         `db:"debit_credit" json:"debit_credit,omitempty"`
	Remark          *string         `db:"remark" json:"remark,omitempty"`
	PaymentMode     string          `db:"payment_mode" json:"payment_mode"`
	Source          string          `db:"source" json:"source"`
	TenantValidated bool            `db:"tenant_validated" json:"tenant_validated"`
	CreatedAt       time.Time       `db:"created_at" json:"-"`
	UpdatedAt       time.Time       `db:"updated_at" json:"-"`
	ImportedAt      time.Time       `db:"imported_at" json:"-"`
}

// NaturalKey returns the ledger identity for the record. Tenant identity is
// deliberately not part of it: two tenants billed for the same room and month
// overwrite each other, matching the back office's historical behavior.
func (p *PaymentRecord) NaturalKey() string {
	return fmt.Sprintf("%d_%d_%d", p.RoomNumber, p.Year, p.Month)
}

// ImportLog is the append-only audit record of one import run. It is written
// once after the run finishes and never mutated.
type ImportLog struct {
	ID           string    `db:"id" json:"id"`
	FileName     string    `db:"file_name" json:"file_name"`
	TotalRows    int       `db:"total_rows" json:"total_rows"`
	CreatedCount int       `db:"created_count" json:"created_count"`
	UpdatedCount int       `db:"updated_count" json:"updated_count"`
	ErrorCount   int       `db:"error_count" json:"error_count"`
	WarningCount int       `db:"warning_count" json:"warning_count"`
	Errors       []string  `db:"errors" json:"errors,omitempty"`
	Warnings     []string  `db:"warnings" json:"warnings,omitempty"`
	ImportedAt   time.Time `db:"imported_at" json:"imported_at"`
}

// Payment status constants
const (
	StatusUnpaid  = "unpaid"
	StatusPartial = "partial"
	StatusPaid    = "paid"
	StatusAdvance = "advance"
)

// Balance classification constants
const (
	BalanceDue     = "due"
	BalanceAdvance = "advance"
	BalanceSettled = "settled"
)

// SourceCSVImport marks records produced by the spreadsheet importer.
const SourceCSVImport = "csv_import"

// DefaultPaymentMode is assumed when the sheet carries no payment mode.
const DefaultPaymentMode = "cash"
