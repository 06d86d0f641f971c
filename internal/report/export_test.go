package report

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"reflect"
	"testing"

	"wtodash/pkg/dataset"
)

func exportTable() dataset.Table {
	return dataset.Table{
		{Year: 2021, Reporter: "China", ProductGroup: "Machinery", Value: 1200.5},
		{Year: 2022, Reporter: "Germany", ProductGroup: "Fuels", Value: 800},
	}
}

func TestExportToCSV(t *testing.T) {
	path, err := ExportToCSV(exportTable(), "test_report", t.TempDir())
	if err != nil {
		t.Fatalf("ExportToCSV returned error: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening exported file: %v", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("reading exported CSV: %v", err)
	}

	expect := [][]string{
		{"Year", "Reporter", "Product Group", "Value (Million USD)"},
		{"2021", "China", "Machinery", "1200.50"},
		{"2022", "Germany", "Fuels", "800.00"},
	}
	if !reflect.DeepEqual(rows, expect) {
		t.Fatalf("unexpected CSV content.\nwant: %#v\ngot:  %#v", expect, rows)
	}
}

func TestExportToJSONRoundTrips(t *testing.T) {
	table := exportTable()
	path, err := ExportToJSON(table, "test_report", t.TempDir())
	if err != nil {
		t.Fatalf("ExportToJSON returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading exported file: %v", err)
	}

	var got dataset.Table
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("invalid exported JSON: %v", err)
	}
	if !reflect.DeepEqual(got, table) {
		t.Fatalf("exported JSON does not round trip.\nwant: %#v\ngot:  %#v", table, got)
	}
}

func TestExportToPDFWritesFile(t *testing.T) {
	path, err := ExportToPDF(exportTable(), "test_report", t.TempDir())
	if err != nil {
		t.Fatalf("ExportToPDF returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat on exported file: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("exported PDF is empty")
	}
}
