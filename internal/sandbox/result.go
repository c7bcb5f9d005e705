package sandbox

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/SameerVers3/Scrapply/pkg/models"
)

// Stdout/stderr are captured whole but surfaced in previews only.
const previewLen = 500

func preview(b []byte) string {
	if len(b) > previewLen {
		b = b[:previewLen]
	}
	return string(b)
}

// parseOutput interprets the child's stdout per the single-JSON-object
// contract. Anything that does not decode as an object becomes a failed
// result carrying previews for diagnosis.
func parseOutput(stdout, stderr []byte) models.SandboxResult {
	trimmed := bytes.TrimSpace(stdout)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return models.SandboxResult{
			Success:       false,
			Error:         fmt.Sprintf("invalid JSON output: %v", err),
			ErrorType:     "malformed_output",
			StdoutPreview: preview(stdout),
			StderrPreview: preview(stderr),
		}
	}

	res := models.SandboxResult{}

	if s, ok := raw["success"]; ok {
		json.Unmarshal(s, &res.Success)
	} else {
		// Missing success means the script printed its own object; treat
		// the presence of an error key as the verdict.
		_, hasError := raw["error"]
		res.Success = !hasError
	}

	if d, ok := raw["data"]; ok {
		res.Data = decodeRecords(d)
	}
	if m, ok := raw["metadata"]; ok {
		json.Unmarshal(m, &res.Metadata)
	}
	if e, ok := raw["error"]; ok {
		json.Unmarshal(e, &res.Error)
	}
	if et, ok := raw["error_type"]; ok {
		json.Unmarshal(et, &res.ErrorType)
	}
	if tb, ok := raw["traceback"]; ok {
		json.Unmarshal(tb, &res.Traceback)
	}
	return res
}

// decodeRecords accepts the data array. Items are expected to be objects;
// scalar items are preserved under a "value" key rather than dropped, so
// thin-result heuristics still see them.
func decodeRecords(raw json.RawMessage) []map[string]interface{} {
	var records []map[string]interface{}
	if err := json.Unmarshal(raw, &records); err == nil {
		return records
	}

	var loose []interface{}
	if err := json.Unmarshal(raw, &loose); err != nil {
		return nil
	}
	records = make([]map[string]interface{}, 0, len(loose))
	for _, item := range loose {
		if obj, ok := item.(map[string]interface{}); ok {
			records = append(records, obj)
			continue
		}
		records = append(records, map[string]interface{}{"value": item})
	}
	return records
}
