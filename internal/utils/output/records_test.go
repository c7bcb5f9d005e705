package output

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func sampleRecords() []map[string]interface{} {
	return []map[string]interface{}{
		{"title": "Red Mug", "price": "$9.99"},
		{"title": "Blue Mug", "price": "$8.99", "tags": []interface{}{"sale", "new"}},
	}
}

func TestSaveRecordsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.json")
	if err := SaveRecords(sampleRecords(), path); err != nil {
		t.Fatalf("save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got []map[string]interface{}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(got) != 2 || got[0]["title"] != "Red Mug" {
		t.Errorf("unexpected records: %+v", got)
	}
}

func TestSaveRecordsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.csv")
	if err := SaveRecords(sampleRecords(), path); err != nil {
		t.Fatalf("save: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("want header + 2 rows, got %d", len(rows))
	}
	// Header is the sorted union of keys.
	want := []string{"price", "tags", "title"}
	for i, h := range want {
		if rows[0][i] != h {
			t.Errorf("header[%d] = %q, want %q", i, rows[0][i], h)
		}
	}
	// First record has no tags: empty cell, not an error.
	if rows[1][1] != "" {
		t.Errorf("missing field should be empty, got %q", rows[1][1])
	}
	// Nested values embed as JSON.
	if rows[2][1] != `["sale","new"]` {
		t.Errorf("nested value = %q", rows[2][1])
	}
}

func TestSaveRecordsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := SaveRecords(nil, path); err != nil {
		t.Fatalf("save: %v", err)
	}
}
