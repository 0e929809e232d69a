package apierr_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/oxleyhq/apigate/pkg/apierr"
	"github.com/stretchr/testify/require"
)

func TestCodeStatusTable(t *testing.T) {
	cases := map[apierr.Code]int{
		apierr.CodeValidation:   http.StatusBadRequest,
		apierr.CodeUnauthorized: http.StatusUnauthorized,
		apierr.CodeForbidden:    http.StatusForbidden,
		apierr.CodeNotFound:     http.StatusNotFound,
		apierr.CodeRateLimited:  http.StatusTooManyRequests,
		apierr.CodeInternal:     http.StatusInternalServerError,
	}
	for code, status := range cases {
		require.Equal(t, status, code.Status(), "code %s", code)
	}
}

func TestWithHelpersCopy(t *testing.T) {
	base := apierr.New(apierr.CodeNotFound, "no such key")

	withID := base.WithRequestID("req_1")
	require.Empty(t, base.RequestID)
	require.Equal(t, "req_1", withID.RequestID)

	withDetails := base.WithDetails(map[string]any{"field": "id"})
	require.Nil(t, base.Details)
	require.NotNil(t, withDetails.Details)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestResponderWrite(t *testing.T) {
	t.Run("development keeps details", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e := apierr.New(apierr.CodeInternal, "store exploded").
			WithDetails(map[string]any{"stack": "..."})

		apierr.Responder{}.Write(rec, "req_42", e)

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

		body := decodeBody(t, rec)
		require.Equal(t, "INTERNAL", body["code"])
		require.Equal(t, "store exploded", body["message"])
		require.Equal(t, float64(500), body["status"])
		require.Equal(t, "req_42", body["requestId"])
		require.NotNil(t, body["details"])
	})

	t.Run("production is generic", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e := apierr.New(apierr.CodeInternal, "store exploded").
			WithDetails(map[string]any{"stack": "..."})

		apierr.Responder{Production: true}.Write(rec, "req_42", e)

		body := decodeBody(t, rec)
		require.Equal(t, "internal server error", body["message"])
		require.NotContains(t, body, "details")
	})

	t.Run("production keeps non-internal messages", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e := apierr.New(apierr.CodeForbidden, "missing required scope")

		apierr.Responder{Production: true}.Write(rec, "req_42", e)

		body := decodeBody(t, rec)
		require.Equal(t, "missing required scope", body["message"])
		require.Equal(t, float64(403), body["status"])
	})

	t.Run("write does not mutate the original", func(t *testing.T) {
		e := apierr.New(apierr.CodeInternal, "boom").
			WithDetails(map[string]any{"stack": "..."})

		apierr.Responder{Production: true}.Write(httptest.NewRecorder(), "req_1", e)

		require.Equal(t, "boom", e.Message)
		require.NotNil(t, e.Details)
		require.Empty(t, e.RequestID)
	})
}
