package data

import "testing"

func TestInventoryClamp(t *testing.T) {
	tests := []struct {
		name          string
		total         int32
		available     int32
		wantAvailable int32
	}{
		{"within bounds", 5, 3, 3},
		{"available above total", 5, 9, 5},
		{"negative available", 5, -2, 0},
		{"zero total", 0, 4, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inventory := Inventory{TotalCopies: tt.total, AvailableCopies: tt.available}
			inventory.Clamp()
			if inventory.AvailableCopies != tt.wantAvailable {
				t.Errorf("Clamp() left available = %d, want %d", inventory.AvailableCopies, tt.wantAvailable)
			}
		})
	}
}
