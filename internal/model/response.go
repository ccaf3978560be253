package model

// Request is the input accepted by the request/response layer.
type Request struct {
	// IPs is a newline-separated list of address strings.
	IPs string `json:"ips"`

	// UseDefaultOutput selects the timestamped file under the results
	// directory; otherwise the fixed custom file name is used.
	UseDefaultOutput bool `json:"use_default_output"`
}

// MetricsSummary is the metrics block of a Response.
type MetricsSummary struct {
	// TotalRequests is success plus failure.
	TotalRequests int `json:"total_requests"`

	// SuccessRate is the percentage of addresses with a resolved location.
	SuccessRate float64 `json:"success_rate"`

	// AverageResponseTime is the batch time per address in milliseconds.
	AverageResponseTime float64 `json:"average_response_time"`
}

// Response is the structured report returned for one processed batch.
type Response struct {
	// Message describes where the results were written, or why writing failed.
	Message string `json:"message"`

	// Metrics summarizes the batch.
	Metrics MetricsSummary `json:"metrics"`

	// Results holds one record per input address, in input order.
	Results []Record `json:"results"`

	// TotalIPs is the number of non-empty input lines.
	TotalIPs int `json:"total_ips"`
}

// NewMetricsSummary converts BatchMetrics into its response form.
func NewMetricsSummary(m BatchMetrics) MetricsSummary {
	return MetricsSummary{
		TotalRequests:       m.Success + m.Failure,
		SuccessRate:         m.SuccessRate(),
		AverageResponseTime: m.AverageResponseTime(),
	}
}
