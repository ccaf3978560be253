package model

import "time"

// BatchMetrics aggregates the outcome of one batch.
// It is derived from the final records and the batch wall-clock time and is
// never updated independently.
type BatchMetrics struct {
	// Total is the number of addresses in the batch.
	Total int `json:"total"`

	// Success is the number of records with a resolved location.
	Success int `json:"success"`

	// Failure is Total minus Success.
	Failure int `json:"failure"`

	// Elapsed is the wall-clock duration of the whole batch,
	// not the sum of per-address durations.
	Elapsed time.Duration `json:"elapsed"`
}

// NewBatchMetrics derives metrics from completed records.
func NewBatchMetrics(records []Record, elapsed time.Duration) BatchMetrics {
	m := BatchMetrics{
		Total:   len(records),
		Elapsed: elapsed,
	}
	for _, r := range records {
		if r.HasLocation() {
			m.Success++
		}
	}
	m.Failure = m.Total - m.Success
	return m
}

// SuccessRate returns the percentage of records with a location.
// An empty batch has a success rate of 0.
func (m BatchMetrics) SuccessRate() float64 {
	if m.Total == 0 {
		return 0
	}
	return float64(m.Success) / float64(m.Total) * 100
}

// AverageResponseTime returns the batch wall-clock time divided by the
// number of addresses, in milliseconds. An empty batch averages 0.
func (m BatchMetrics) AverageResponseTime() float64 {
	if m.Total == 0 {
		return 0
	}
	return float64(m.Elapsed.Microseconds()) / 1000 / float64(m.Total)
}
