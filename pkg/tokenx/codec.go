package tokenx

import (
	"encoding/base64"
	"encoding/json"
)

// EncodeSegment marshals v to JSON and encodes it as a base64url segment
// (no padding), the form used for the header and payload of a token.
func EncodeSegment(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// DecodeSegment decodes a base64url segment and unmarshals it into v.
func DecodeSegment(segment string, v any) error {
	raw, err := base64.RawURLEncoding.DecodeString(segment)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}
