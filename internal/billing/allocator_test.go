package billing

import (
	"errors"
	"testing"

	"gorm.io/gorm"
)

// Pins the guarded-decrement branch directly: a unit of stock disappears
// after the availability read but before the decrement executes, so the
// guarded UPDATE matches zero rows and the walk must report the race
// instead of writing a stale value.
func TestAllocateFIFODetectsStolenStock(t *testing.T) {
	db := setupTestDB(t)
	p := seedProduct(t, db, "Contended", 10)
	lot := seedLot(t, db, p.ID, "2024-01-01", 5)

	stolen := false
	err := db.Callback().Update().Before("gorm:update").Register("stealStock", func(_ *gorm.DB) {
		if stolen {
			return
		}
		stolen = true
		if err := db.Exec(
			"UPDATE lots SET available_quantity = available_quantity - 1 WHERE id = ?",
			lot.ID).Error; err != nil {
			t.Errorf("concurrent deduction: %v", err)
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	_, allocErr := allocateFIFO(db, p.ID, 5)
	if !errors.Is(allocErr, ErrAllocationRace) {
		t.Fatalf("expected ErrAllocationRace, got %v", allocErr)
	}
	if !stolen {
		t.Fatal("concurrent deduction never ran")
	}
	if got := lotAvailable(t, db, lot.ID); got != 4 {
		t.Fatalf("available = %d, want 4 (only the concurrent deduction applied)", got)
	}
}
