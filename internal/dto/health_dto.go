package dto

type HealthResponse struct {
	Status   string            `json:"status"` // "healthy" or "degraded"
	Services map[string]string `json:"services"`
}
