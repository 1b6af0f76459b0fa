package dtos

type HealthCheckResponse struct {
	Status string `json:"status"`
}

// ServiceInfoResponse is returned by the macro test endpoint.
type ServiceInfoResponse struct {
	Message             string    `json:"message"`
	Timestamp           string    `json:"timestamp"`
	AvailableOperations []string  `json:"availableOperations"`
	PriorityFiles       []string  `json:"priorityFiles"`
	Policy              PolicyDTO `json:"policy"`
}

type PolicyDTO struct {
	IncludeMarkers []string `json:"includeMarkers"`
	ExcludeMarker  string   `json:"excludeMarker"`
}
