package importer

import "strings"

// Canonical field names produced by the column mapper. Raw sheet headers are
// mapped onto these before any row is normalized.
const (
	FieldRoomNumber     = "roomNumber"
	FieldTenantName     = "tenantName"
	FieldYear           = "year"
	FieldMonth          = "month"
	FieldDate           = "date"
	FieldRent           = "rent"
	FieldOldReading     = "oldReading"
	FieldCurrentReading = "currentReading"
	FieldRatePerUnit    = "ratePerUnit"
	FieldPaidAmount     = "paidAmount"
	FieldPaymentMode    = "paymentMode"
	FieldDebitCredit    = "debitCredit"
	FieldRemark         = "remark"
)

// requiredFields must each have at least one matching header in an uploaded
// sheet or the import is rejected before any row is processed.
var requiredFields = []string{
	FieldRoomNumber,
	FieldTenantName,
	FieldYear,
	FieldMonth,
	FieldRent,
	FieldOldReading,
	FieldCurrentReading,
	FieldRatePerUnit,
	FieldPaidAmount,
}

// columnAliases maps the header spellings seen in the lodge's historical
// spreadsheets onto canonical fields. Keys are compared after lowercasing
// and whitespace collapsing, so "Room  No." and "room no." are the same
// alias. Extending a synonym list is a data change, not a code change.
// Headers with no alias are dropped silently.
var columnAliases = map[string]string{
	"room no.":    FieldRoomNumber,
	"room no":     FieldRoomNumber,
	"room number": FieldRoomNumber,
	"room #":      FieldRoomNumber,
	"room":        FieldRoomNumber,
	"rm no":       FieldRoomNumber,

	"tenant name": FieldTenantName,
	"tenant":      FieldTenantName,
	"name":        FieldTenantName,
	"occupant":    FieldTenantName,

	"year": FieldYear,
	"yr":   FieldYear,

	"month":     FieldMonth,
	"month no":  FieldMonth,
	"month no.": FieldMonth,

	"date":         FieldDate,
	"payment date": FieldDate,
	"paid date":    FieldDate,
	"paid on":      FieldDate,

	"rent":        FieldRent,
	"room rent":   FieldRent,
	"rent amount": FieldRent,

	"reading (prev.)":  FieldOldReading,
	"reading (prev)":   FieldOldReading,
	"old reading":      FieldOldReading,
	"previous reading": FieldOldReading,
	"prev reading":     FieldOldReading,
	"prev. reading":    FieldOldReading,

	"reading (curr.)": FieldCurrentReading,
	"reading (curr)":  FieldCurrentReading,
	"current reading": FieldCurrentReading,
	"curr reading":    FieldCurrentReading,
	"curr. reading":   FieldCurrentReading,
	"new reading":     FieldCurrentReading,
	"reading":         FieldCurrentReading,

	"price/unit":    FieldRatePerUnit,
	"price / unit":  FieldRatePerUnit,
	"rate/unit":     FieldRatePerUnit,
	"rate per unit": FieldRatePerUnit,
	"unit price":    FieldRatePerUnit,
	"unit rate":     FieldRatePerUnit,
	"rate":          FieldRatePerUnit,

	"paid":        FieldPaidAmount,
	"paid amount": FieldPaidAmount,
	"paid amt":    FieldPaidAmount,
	"amount paid": FieldPaidAmount,
	"received":    FieldPaidAmount,

	"payment mode": FieldPaymentMode,
	"mode":         FieldPaymentMode,
	"paid via":     FieldPaymentMode,

	"debit/credit": FieldDebitCredit,
	"debit credit": FieldDebitCredit,
	"dr/cr":        FieldDebitCredit,

	"remark":   FieldRemark,
	"remarks":  FieldRemark,
	"note":     FieldRemark,
	"notes":    FieldRemark,
	"comment":  FieldRemark,
	"comments": FieldRemark,
}

// canonicalField resolves a raw sheet header to its canonical field name.
func canonicalField(header string) (string, bool) {
	field, ok := columnAliases[normalizeHeader(header)]
	return field, ok
}

func normalizeHeader(header string) string {
	return strings.ToLower(strings.Join(strings.Fields(header), " "))
}
