// Package output saves scraped records to disk in common formats.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// SaveRecords writes records to path. The format follows the file
// extension: .csv for CSV, anything else gets indented JSON.
func SaveRecords(records []map[string]interface{}, path string) error {
	if strings.HasSuffix(path, ".csv") {
		return saveCSV(records, path)
	}
	return saveJSON(records, path)
}

func saveJSON(records []map[string]interface{}, path string) error {
	content, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, content, 0644)
}

// saveCSV flattens records into rows. The header is the sorted union of all
// record keys, so ragged records produce empty cells instead of errors.
func saveCSV(records []map[string]interface{}, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	headers := unionKeys(records)
	if err := writer.Write(headers); err != nil {
		return err
	}

	for _, record := range records {
		row := make([]string, len(headers))
		for i, h := range headers {
			if v, ok := record[h]; ok && v != nil {
				row[i] = cell(v)
			}
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	return writer.Error()
}

func unionKeys(records []map[string]interface{}) []string {
	seen := map[string]bool{}
	var keys []string
	for _, record := range records {
		for k := range record {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return keys
}

// cell renders one value for CSV. Nested structures are embedded as JSON.
func cell(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]interface{}, []interface{}:
		encoded, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(encoded)
	default:
		return fmt.Sprintf("%v", t)
	}
}
