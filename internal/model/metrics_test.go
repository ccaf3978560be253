package model

import (
	"testing"
	"time"
)

func TestNewBatchMetrics(t *testing.T) {
	t.Parallel()

	t.Run("counts records with location as success", func(t *testing.T) {
		t.Parallel()

		records := []Record{
			{IP: "1.1.1.1", Location: "Sydney, AU"},
			{IP: "8.8.8.8", Location: "Mountain View, US"},
			{IP: "not-an-ip"},
			{IP: "192.0.2.1"},
		}

		m := NewBatchMetrics(records, 2*time.Second)

		if m.Total != 4 {
			t.Errorf("Total = %d, want 4", m.Total)
		}
		if m.Success != 2 {
			t.Errorf("Success = %d, want 2", m.Success)
		}
		if m.Success+m.Failure != m.Total {
			t.Errorf("Success+Failure = %d, want %d", m.Success+m.Failure, m.Total)
		}
		if m.SuccessRate() != 50 {
			t.Errorf("SuccessRate() = %v, want 50", m.SuccessRate())
		}
		if m.AverageResponseTime() != 500 {
			t.Errorf("AverageResponseTime() = %v, want 500", m.AverageResponseTime())
		}
	})

	t.Run("empty batch has zero rates", func(t *testing.T) {
		t.Parallel()

		m := NewBatchMetrics(nil, time.Second)

		if m.Total != 0 || m.Success != 0 || m.Failure != 0 {
			t.Errorf("unexpected counts: %+v", m)
		}
		if m.SuccessRate() != 0 {
			t.Errorf("SuccessRate() = %v, want 0", m.SuccessRate())
		}
		if m.AverageResponseTime() != 0 {
			t.Errorf("AverageResponseTime() = %v, want 0", m.AverageResponseTime())
		}
	})
}

func TestNewMetricsSummary(t *testing.T) {
	t.Parallel()

	m := BatchMetrics{Total: 4, Success: 3, Failure: 1, Elapsed: 400 * time.Millisecond}
	s := NewMetricsSummary(m)

	if s.TotalRequests != 4 {
		t.Errorf("TotalRequests = %d, want 4", s.TotalRequests)
	}
	if s.SuccessRate != 75 {
		t.Errorf("SuccessRate = %v, want 75", s.SuccessRate)
	}
	if s.AverageResponseTime != 100 {
		t.Errorf("AverageResponseTime = %v, want 100", s.AverageResponseTime)
	}
}
