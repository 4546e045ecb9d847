package service

import (
	"encoding/json"
	"strings"
)

// decoded is the outcome of parsing JSON-shaped model output: either a
// typed value or the raw text the caller's fallback path can reuse. The two
// cases stay explicit so degradation is a branch, not an exception.
type decoded[T any] struct {
	value T
	ok    bool
	raw   string
}

// decodeModelJSON strips markdown fences the model sometimes wraps its
// output in and attempts a strict JSON decode.
func decodeModelJSON[T any](raw string) decoded[T] {
	cleaned := stripFences(strings.TrimSpace(raw))

	var v T
	if err := json.Unmarshal([]byte(cleaned), &v); err != nil {
		return decoded[T]{raw: cleaned}
	}
	return decoded[T]{value: v, ok: true, raw: cleaned}
}

func stripFences(raw string) string {
	if !strings.HasPrefix(raw, "```") {
		return raw
	}
	raw = strings.Trim(raw, "`")
	if len(raw) >= 4 && strings.EqualFold(raw[:4], "json") {
		raw = strings.TrimSpace(raw[4:])
	}
	return strings.TrimSpace(raw)
}
