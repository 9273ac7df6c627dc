package importer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"lodge-backoffice/internal/models"
)

// NormalizeAndCalculate maps one header-mapped spreadsheet row onto a
// calculated payment record. It is pure: no I/O, identical input always
// yields the identical record and warning list.
//
// Only two defects are hard errors: a missing or non-positive room number,
// an empty tenant name, plus a year outside 2000-2100 (treated as invalid
// input, not a data-quality issue). Every other defect degrades to a warning
// with a defined fallback so an import is never blocked on soft problems.
func NormalizeAndCalculate(row RawRow) (*models.PaymentRecord, []string, error) {
	var warnings []string

	roomNumber, ok := parseInt(row[FieldRoomNumber])
	if !ok || roomNumber <= 0 {
		return nil, nil, fmt.Errorf("missing or invalid room number %q", row[FieldRoomNumber])
	}

	floor := 1
	if roomNumber >= 200 {
		floor = 2
	}

	tenantName := strings.TrimSpace(row[FieldTenantName])
	if tenantName == "" {
		return nil, nil, fmt.Errorf("tenant name is required")
	}

	year, ok := parseInt(row[FieldYear])
	if !ok || year < 2000 || year > 2100 {
		return nil, nil, fmt.Errorf("invalid year %q, expected 2000-2100", row[FieldYear])
	}

	// Out-of-range months are kept as parsed, never clamped or rejected:
	// downstream screens rely on the raw value for manual correction.
	month, _ := parseInt(row[FieldMonth])
	if month < 1 || month > 12 {
		warnings = append(warnings, fmt.Sprintf("month %d is outside 1-12, kept as-is", month))
	}

	// The date is stored verbatim, trimmed but never reformatted or
	// validated: historical sheets mix date spellings, and the screens show
	// the entered value so an operator can correct it there.
	var date *string
	if d := strings.TrimSpace(row[FieldDate]); d != "" {
		date = &d
	} else {
		warnings = append(warnings, "payment date is missing")
	}

	rent := parseAmount(row[FieldRent])
	if rent.IsZero() {
		warnings = append(warnings, "rent is missing or zero, defaulted to 0")
	}
	oldReading := parseAmount(row[FieldOldReading])
	if oldReading.IsZero() {
		warnings = append(warnings, "old meter reading is missing or zero, defaulted to 0")
	}
	currentReading := parseAmount(row[FieldCurrentReading])
	if currentReading.IsZero() {
		warnings = append(warnings, "current meter reading is missing or zero, defaulted to 0")
	}
	ratePerUnit := parseAmount(row[FieldRatePerUnit])
	if ratePerUnit.IsZero() {
		warnings = append(warnings, "rate per unit is missing or zero, defaulted to 0")
	}

	units := currentReading.Sub(oldReading)
	if units.IsNegative() {
		warnings = append(warnings, fmt.Sprintf("units consumed is negative (%s), clamped to 0", units))
		units = decimal.Zero
	}

	electricity := units.Mul(ratePerUnit)
	total := rent.Add(electricity)

	// A missing paid amount is a legitimate unpaid record, not a warning.
	paidAmount := parseAmount(row[FieldPaidAmount])

	balance := total.Sub(paidAmount).Round(2)

	balanceType := models.BalanceSettled
	switch {
	case balance.IsPositive():
		balanceType = models.BalanceDue
	case balance.IsNegative():
		balanceType = models.BalanceAdvance
	}

	var status string
	switch {
	case paidAmount.IsZero():
		status = models.StatusUnpaid
	case paidAmount.GreaterThanOrEqual(total):
		if balance.IsNegative() {
			status = models.StatusAdvance
		} else {
			status = models.StatusPaid
		}
	default:
		status = models.StatusPartial
	}

	paymentMode := strings.ToLower(strings.TrimSpace(row[FieldPaymentMode]))
	if paymentMode == "" {
		paymentMode = models.DefaultPaymentMode
	}

	record := &models.PaymentRecord{
		RoomNumber:      roomNumber,
		Floor:           floor,
		TenantName:      tenantName,
		Year:            year,
		Month:           month,
		Date:            date,
		Rent:            rent,
		OldReading:      oldReading,
		CurrentReading:  currentReading,
		RatePerUnit:     ratePerUnit,
		Units:           units,
		Electricity:     electricity,
		Total:           total,
		PaidAmount:      paidAmount,
		Balance:         balance,
		BalanceType:     balanceType,
		Status:          status,
		DebitCredit:     trimmedOrNil(row[FieldDebitCredit]),
		Remark:          trimmedOrNil(row[FieldRemark]),
		PaymentMode:     paymentMode,
		Source:          models.SourceCSVImport,
		TenantValidated: false,
	}
	record.ID = record.NaturalKey()

	return record, warnings, nil
}

// parseInt accepts plain integers and float spellings that are losslessly
// integral ("105.0"), which spreadsheet exports produce for numeric cells.
func parseInt(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n, true
	}
	if d, err := decimal.NewFromString(raw); err == nil && d.IsInteger() {
		return int(d.IntPart()), true
	}
	return 0, false
}

// parseAmount falls back to zero on any parse failure; callers decide
// whether the zero is worth a warning.
func parseAmount(raw string) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func trimmedOrNil(raw string) *string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
