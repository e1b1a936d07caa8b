package bulk

import "testing"

func TestComputeStats(t *testing.T) {
	statusItem := func(status Status, valid bool) Item {
		item := NewItem("f.pdf", nil)
		item.Status = status
		item.IsValid = valid
		return item
	}

	items := []Item{
		statusItem(StatusQRSuccess, true),
		statusItem(StatusQRSuccess, true),
		statusItem(StatusQRSuccess, false),
		statusItem(StatusQRFailed, false),
		statusItem(StatusManualEntry, true),
	}

	stats := ComputeStats(items)

	if stats.Total != 5 {
		t.Errorf("Total = %d, want 5", stats.Total)
	}
	if stats.QRSuccess != 3 || stats.QRFailed != 1 {
		t.Errorf("QRSuccess/QRFailed = %d/%d, want 3/1", stats.QRSuccess, stats.QRFailed)
	}
	if stats.Ready != 3 || stats.NeedsAttention != 2 {
		t.Errorf("Ready/NeedsAttention = %d/%d, want 3/2", stats.Ready, stats.NeedsAttention)
	}
	if stats.QRSuccessRate != 60 || stats.ReadyRate != 60 {
		t.Errorf("rates = %d/%d, want 60/60", stats.QRSuccessRate, stats.ReadyRate)
	}
}

func TestComputeStatsRounding(t *testing.T) {
	items := make([]Item, 3)
	for idx := range items {
		items[idx] = NewItem("f.pdf", nil)
	}
	items[0].Status = StatusQRSuccess
	items[0].IsValid = true
	items[1].Status = StatusQRSuccess
	items[1].IsValid = true
	items[2].Status = StatusQRFailed

	stats := ComputeStats(items)

	// 2/3 rounds to 67, not truncates to 66.
	if stats.QRSuccessRate != 67 {
		t.Errorf("QRSuccessRate = %d, want 67", stats.QRSuccessRate)
	}
	if stats.ReadyRate != 67 {
		t.Errorf("ReadyRate = %d, want 67", stats.ReadyRate)
	}
}

func TestComputeStatsEmptyBatch(t *testing.T) {
	stats := ComputeStats(nil)
	if stats.Total != 0 || stats.QRSuccessRate != 0 || stats.ReadyRate != 0 {
		t.Errorf("empty batch stats = %+v, want all zero", stats)
	}
}
