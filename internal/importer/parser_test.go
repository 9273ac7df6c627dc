package importer

import (
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"lodge-backoffice/internal/models"
)

const sampleCSV = `Room No.,Tenant Name,Year,Month,Rent,Reading (Prev.),Reading (Curr.),Price/Unit,Paid
105,Asha,2024,6,5000,100,150,8,5400
210,Ravi,2023,3,4500,200,260,8,0
`

func TestParseSheetMapsAliases(t *testing.T) {
	sheet, err := ParseSheet("history.csv", []byte(sampleCSV))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sheet.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(sheet.Rows))
	}

	row := sheet.Rows[0]
	want := map[string]string{
		FieldRoomNumber:     "105",
		FieldTenantName:     "Asha",
		FieldYear:           "2024",
		FieldMonth:          "6",
		FieldRent:           "5000",
		FieldOldReading:     "100",
		FieldCurrentReading: "150",
		FieldRatePerUnit:    "8",
		FieldPaidAmount:     "5400",
	}
	for field, value := range want {
		if row[field] != value {
			t.Fatalf("field %s = %q, want %q", field, row[field], value)
		}
	}

	if sheet.RowNumbers[0] != 2 || sheet.RowNumbers[1] != 3 {
		t.Fatalf("row numbers = %v, want [2 3]", sheet.RowNumbers)
	}
}

func TestParseSheetHeaderSpellingVariants(t *testing.T) {
	data := `room,name,YR,Month,Room Rent,Old Reading,Current Reading,Rate per Unit,Amount Paid
105,Asha,2024,6,5000,100,150,8,5400
`
	sheet, err := ParseSheet("history.csv", []byte(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sheet.Rows[0][FieldOldReading] != "100" || sheet.Rows[0][FieldPaidAmount] != "5400" {
		t.Fatalf("variant headers not mapped: %v", sheet.Rows[0])
	}
}

func TestParseSheetRejectsMissingRequiredColumn(t *testing.T) {
	data := `Room No.,Tenant Name,Year,Month,Reading (Prev.),Reading (Curr.),Price/Unit,Paid
105,Asha,2024,6,100,150,8,5400
`
	_, err := ParseSheet("history.csv", []byte(data))
	if err == nil {
		t.Fatalf("expected rejection for missing rent column")
	}
	if !strings.Contains(err.Error(), "rent") {
		t.Fatalf("error should name the missing column, got %v", err)
	}
}

func TestParseSheetStripsByteOrderMark(t *testing.T) {
	payload := append([]byte{0xEF, 0xBB, 0xBF}, []byte(sampleCSV)...)
	sheet, err := ParseSheet("history.csv", payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sheet.Rows[0][FieldRoomNumber] != "105" {
		t.Fatalf("BOM header not mapped: %v", sheet.Rows[0])
	}
}

func TestParseSheetSkipsEmptyRowsKeepingSourceNumbers(t *testing.T) {
	data := `Room No.,Tenant Name,Year,Month,Rent,Reading (Prev.),Reading (Curr.),Price/Unit,Paid
105,Asha,2024,6,5000,100,150,8,5400
,,,,,,,,
210,Ravi,2023,3,4500,200,260,8,0
`
	sheet, err := ParseSheet("history.csv", []byte(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sheet.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(sheet.Rows))
	}
	if sheet.RowNumbers[1] != 4 {
		t.Fatalf("row after blank line should keep source number 4, got %d", sheet.RowNumbers[1])
	}
}

func TestParseSheetDropsUnknownHeaders(t *testing.T) {
	data := `Room No.,Tenant Name,Year,Month,Rent,Reading (Prev.),Reading (Curr.),Price/Unit,Paid,Aadhaar No
105,Asha,2024,6,5000,100,150,8,5400,1234
`
	sheet, err := ParseSheet("history.csv", []byte(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for field := range sheet.Rows[0] {
		if field == "Aadhaar No" {
			t.Fatalf("unknown header leaked into row: %v", sheet.Rows[0])
		}
	}
	if len(sheet.Fields) != 9 {
		t.Fatalf("expected 9 mapped fields, got %d: %v", len(sheet.Fields), sheet.Fields)
	}
}

func TestParseSheetReadsWorkbook(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	headers := []interface{}{"Room No.", "Tenant Name", "Year", "Month", "Rent", "Reading (Prev.)", "Reading (Curr.)", "Price/Unit", "Paid"}
	if err := f.SetSheetRow("Sheet1", "A1", &headers); err != nil {
		t.Fatalf("failed to write header row: %v", err)
	}
	values := []interface{}{105, "Asha", 2024, 6, 5000, 100, 150, 8, 5400}
	if err := f.SetSheetRow("Sheet1", "A2", &values); err != nil {
		t.Fatalf("failed to write data row: %v", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("failed to serialize workbook: %v", err)
	}

	sheet, err := ParseSheet("history.xlsx", buf.Bytes())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sheet.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(sheet.Rows))
	}
	if sheet.Rows[0][FieldRoomNumber] != "105" || sheet.Rows[0][FieldPaidAmount] != "5400" {
		t.Fatalf("workbook headers not mapped: %v", sheet.Rows[0])
	}

	record, warnings, err := NormalizeAndCalculate(sheet.Rows[0])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.ID != "105_2024_6" {
		t.Fatalf("record ID = %q, want 105_2024_6", record.ID)
	}
	if record.Status != models.StatusPaid {
		t.Fatalf("status = %q, want %q", record.Status, models.StatusPaid)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "date") {
		t.Fatalf("expected only the missing-date warning, got %v", warnings)
	}
}

func TestParseSheetUnsupportedFormat(t *testing.T) {
	_, err := ParseSheet("history.pdf", []byte("%PDF-1.4"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestParseSheetHeaderOnlyFile(t *testing.T) {
	data := "Room No.,Tenant Name,Year,Month,Rent,Reading (Prev.),Reading (Curr.),Price/Unit,Paid\n"
	_, err := ParseSheet("history.csv", []byte(data))
	if !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("expected ErrEmptyFile, got %v", err)
	}
}
