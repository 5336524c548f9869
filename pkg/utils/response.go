package utils

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// JSON writes v as a JSON response. The body is encoded before any
// header is written, so an encoding failure still yields a clean 500
// instead of a torn 200 body.
func JSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, `{"error":"response encoding failed"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
