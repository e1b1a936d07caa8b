package bulk

import "math"

// Stats are the aggregate readiness figures for a batch.
type Stats struct {
	Total          int `json:"total"`
	QRSuccess      int `json:"qr_success"`
	QRFailed       int `json:"qr_failed"`
	Ready          int `json:"ready"`
	NeedsAttention int `json:"needs_attention"`

	// Rates are percentages rounded to the nearest integer, 0 for an empty batch.
	QRSuccessRate int `json:"qr_success_rate"`
	ReadyRate     int `json:"ready_rate"`
}

// ComputeStats aggregates readiness statistics over a batch item list.
func ComputeStats(items []Item) Stats {
	stats := Stats{Total: len(items)}

	for idx := range items {
		switch items[idx].Status {
		case StatusQRSuccess:
			stats.QRSuccess++
		case StatusQRFailed:
			stats.QRFailed++
		}
		if items[idx].IsValid {
			stats.Ready++
		} else {
			stats.NeedsAttention++
		}
	}

	if stats.Total > 0 {
		stats.QRSuccessRate = int(math.Round(float64(stats.QRSuccess) * 100 / float64(stats.Total)))
		stats.ReadyRate = int(math.Round(float64(stats.Ready) * 100 / float64(stats.Total)))
	}
	return stats
}
