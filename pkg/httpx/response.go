package httpx

import (
	"encoding/json"
	"net/http"
	"strings"
)

// WriteJSON writes v with the given status. Responses through here are
// never cacheable; everything the gateway returns is credential-adjacent.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// NoCache sets the standard do-not-store headers.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// SplitScopes parses a space-delimited scope list. Nil for blank input.
func SplitScopes(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return strings.Fields(s)
}
