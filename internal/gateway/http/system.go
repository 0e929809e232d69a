package http

import (
	"net/http"
	"time"

	"github.com/oxleyhq/apigate/internal/gateway/store"
	"github.com/oxleyhq/apigate/pkg/httpx"
)

type healthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
	Checks struct {
		Database string `json:"database"`
	} `json:"checks"`
}

// HealthzHandler reports service health, checking store connectivity.
func HealthzHandler(startTime time.Time, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{
			Status: "ok",
			Uptime: time.Since(startTime).String(),
		}
		resp.Checks.Database = "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			resp.Status = "degraded"
			resp.Checks.Database = "error: " + err.Error()
			statusCode = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, statusCode, resp)
	}
}
