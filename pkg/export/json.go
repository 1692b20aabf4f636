package export

import (
	"encoding/json"
	"fmt"

	"brightbooks-hq/ledgerport/pkg/qbo"
)

// marshalRecordsJSON serializes records losslessly with stable
// two-space indentation. An empty input renders as an empty array.
func marshalRecordsJSON(records []qbo.Record) ([]byte, error) {
	if len(records) == 0 {
		return []byte("[]"), nil
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err == nil {
		return data, nil
	}

	// Caller-built records can hold values the encoder rejects; retry
	// with those degraded to their string form.
	degraded := make([]qbo.Record, len(records))
	for i, rec := range records {
		degraded[i] = degradeRecord(rec)
	}
	data, err = json.MarshalIndent(degraded, "", "  ")
	if err != nil {
		return nil, NewSerializationError(err)
	}
	return data, nil
}

// marshalLinesJSON serializes flattened line rows with the same
// indentation as record output.
func marshalLinesJSON(rows []LineRow) ([]byte, error) {
	if len(rows) == 0 {
		return []byte("[]"), nil
	}

	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return nil, NewSerializationError(err)
	}
	return data, nil
}

// degradeRecord replaces any value the JSON encoder cannot represent
// with its string form, walking containers element by element.
func degradeRecord(rec qbo.Record) qbo.Record {
	out, ok := degradeValue(map[string]any(rec)).(map[string]any)
	if !ok {
		return rec
	}
	return out
}

func degradeValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = degradeValue(val)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = degradeValue(val)
		}
		return out
	case nil, string, bool, float64:
		return x
	default:
		if _, err := json.Marshal(v); err != nil {
			return fmt.Sprint(v)
		}
		return v
	}
}
