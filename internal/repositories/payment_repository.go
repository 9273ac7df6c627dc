package repositories

import (
	"context"
	"database/sql"
	"errors"

	"lodge-backoffice/internal/models"
)

type PaymentRepository interface {
	FindByNaturalKey(ctx context.Context, roomNumber, year, month int) (*models.PaymentRecord, error)
	Insert(ctx context.Context, p *models.PaymentRecord) error
	Update(ctx context.Context, p *models.PaymentRecord) error
	ListByRoom(ctx context.Context, roomNumber int) ([]*models.PaymentRecord, error)
	ListByPeriod(ctx context.Context, year, month int) ([]*models.PaymentRecord, error)
}

type paymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

const paymentColumns = `
	id, room_number, floor, tenant_name, ` + "`year`, `month`" + `, payment_date,
	rent, old_reading, current_reading, rate_per_unit, units, electricity,
	total, paid_amount, balance, balance_type, status, debit_credit, remark,
	payment_mode, source, tenant_validated, created_at, updated_at, imported_at
`

// FindByNaturalKey looks a ledger entry up by (room, year, month), the sole
// identity the ledger uses. Tenant identity is not part of the key.
func (r *paymentRepository) FindByNaturalKey(ctx context.Context, roomNumber, year, month int) (*models.PaymentRecord, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE room_number = ? AND ` + "`year`" + ` = ? AND ` + "`month`" + ` = ?
	`
	p, err := scanPayment(r.db.QueryRowContext(ctx, query, roomNumber, year, month))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *paymentRepository) Insert(ctx context.Context, p *models.PaymentRecord) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.RoomNumber,
		p.Floor,
		p.TenantName,
		p.Year,
		p.Month,
		p.Date,
		p.Rent,
		p.OldReading,
		p.CurrentReading,
		p.RatePerUnit,
		p.Units,
		p.Electricity,
		p.Total,
		p.PaidAmount,
		p.Balance,
		p.BalanceType,
		p.Status,
		p.DebitCredit,
		p.Remark,
		p.PaymentMode,
		p.Source,
		p.TenantValidated,
		p.CreatedAt,
		p.UpdatedAt,
		p.ImportedAt,
	)
	return err
}

// Update overwrites every imported field of an existing entry. created_at is
// deliberately left alone so the original creation time survives re-imports.
// No rows-affected check: MySQL reports zero affected rows when an update
// writes identical values, which is the normal case for a re-imported file.
func (r *paymentRepository) Update(ctx context.Context, p *models.PaymentRecord) error {
	query := `
		UPDATE payments
		SET room_number = ?,
		    floor = ?,
		    tenant_name = ?,
		    ` + "`year`" + ` = ?,
		    ` + "`month`" + ` = ?,
		    payment_date = ?,
		    rent = ?,
		    old_reading = ?,
		    current_reading = ?,
		    rate_per_unit = ?,
		    units = ?,
		    electricity = ?,
		    total = ?,
		    paid_amount = ?,
		    balance = ?,
		    balance_type = ?,
		    status = ?,
		    debit_credit = ?,
		    remark = ?,
		    payment_mode = ?,
		    source = ?,
		    tenant_validated = ?,
		    updated_at = ?,
		    imported_at = ?
		WHERE id = ?
	`
	_, err := r.db.ExecContext(ctx, query,
		p.RoomNumber,
		p.Floor,
		p.TenantName,
		p.Year,
		p.Month,
		p.Date,
		p.Rent,
		p.OldReading,
		p.CurrentReading,
		p.RatePerUnit,
		p.Units,
		p.Electricity,
		p.Total,
		p.PaidAmount,
		p.Balance,
		p.BalanceType,
		p.Status,
		p.DebitCredit,
		p.Remark,
		p.PaymentMode,
		p.Source,
		p.TenantValidated,
		p.UpdatedAt,
		p.ImportedAt,
		p.ID,
	)
	return err
}

func (r *paymentRepository) ListByRoom(ctx context.Context, roomNumber int) ([]*models.PaymentRecord, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE room_number = ?
		ORDER BY ` + "`year`" + ` DESC, ` + "`month`" + ` DESC
	`
	return r.queryPayments(ctx, query, roomNumber)
}

func (r *paymentRepository) ListByPeriod(ctx context.Context, year, month int) ([]*models.PaymentRecord, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE ` + "`year`" + ` = ? AND ` + "`month`" + ` = ?
		ORDER BY room_number ASC
	`
	return r.queryPayments(ctx, query, year, month)
}

func (r *paymentRepository) queryPayments(ctx context.Context, query string, args ...any) ([]*models.PaymentRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*models.PaymentRecord
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return payments, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPayment(row rowScanner) (*models.PaymentRecord, error) {
	p := &models.PaymentRecord{}
	err := row.Scan(
		&p.ID,
		&p.RoomNumber,
		&p.Floor,
		&p.TenantName,
		&p.Year,
		&p.Month,
		&p.Date,
		&p.Rent,
		&p.OldReading,
		&p.CurrentReading,
		&p.RatePerUnit,
		&p.Units,
		&p.Electricity,
		&p.Total,
		&p.PaidAmount,
		&p.Balance,
		&p.BalanceType,
		&p.Status,
		&p.DebitCredit,
		&p.Remark,
		&p.PaymentMode,
		&p.Source,
		&p.TenantValidated,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.ImportedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}
