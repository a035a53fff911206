package health

import (
	"encoding/json"
	"net/http"
)

// Response is the JSON body of a probe.
type Response struct {
	Status  string                 `json:"status"` // "healthy" | "unhealthy"
	Checks  map[string]CheckStatus `json:"checks,omitempty"`
	Message string                 `json:"message,omitempty"`
}

// CheckStatus is one check's entry in a Response.
type CheckStatus struct {
	Status  string `json:"status"` // "ok" | "error"
	Error   string `json:"error,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// LivenessHandler serves the liveness probe: 200 when healthy, 503 otherwise.
func (c *Checker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := c.CheckLiveness(r.Context())
		c.write(w, status, err)
	}
}

// ReadinessHandler serves the readiness probe: 200 when ready, 503 otherwise.
func (c *Checker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := c.CheckReadiness(r.Context())
		c.write(w, status, err)
	}
}

func (c *Checker) write(w http.ResponseWriter, status *Status, err error) {
	resp := Response{Status: "healthy", Checks: make(map[string]CheckStatus, len(status.Checks))}
	code := http.StatusOK
	if !status.Healthy {
		resp.Status = "unhealthy"
		code = http.StatusServiceUnavailable
		if err != nil {
			resp.Message = err.Error()
		}
	}

	for _, result := range status.Checks {
		entry := CheckStatus{Status: "ok", Latency: result.Latency.String()}
		if !result.Healthy {
			entry.Status = "error"
			entry.Error = result.Error
		}
		resp.Checks[result.Name] = entry
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
