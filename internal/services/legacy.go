package services

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// rewriteLegacy decodes a version 0 array, applies fix to every element and re-encodes it.
// Numeric ids written by the earlier storefront are turned into strings first.
func rewriteLegacy(items json.RawMessage, fix func(map[string]any)) (json.RawMessage, error) {
	var rows []map[string]any
	dec := json.NewDecoder(bytes.NewReader(items))
	dec.UseNumber()
	if err := dec.Decode(&rows); err != nil {
		return nil, err
	}
	for _, row := range rows {
		for _, field := range []string{"id", "productId"} {
			if n, ok := row[field].(json.Number); ok {
				row[field] = n.String()
			}
		}
		if fix != nil {
			fix(row)
		}
	}
	return json.Marshal(rows)
}

// legacyTime converts a millisecond epoch to a timestamp. Strings are kept as they are.
func legacyTime(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	ms, err := strconv.ParseInt(n.String(), 10, 64)
	if err != nil {
		return v
	}
	return time.UnixMilli(ms).UTC()
}
