package domain

import "testing"

func TestCanTransitionVehicle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		from VehicleStatus
		to   VehicleStatus
		want bool
	}{
		{"parked to requested", VehicleStatusParked, VehicleStatusRetrievalRequested, true},
		{"requested to retrieving", VehicleStatusRetrievalRequested, VehicleStatusRetrieving, true},
		{"retrieving to retrieved", VehicleStatusRetrieving, VehicleStatusRetrieved, true},
		{"skip a step", VehicleStatusParked, VehicleStatusRetrieving, false},
		{"skip to retrieved", VehicleStatusRetrievalRequested, VehicleStatusRetrieved, false},
		{"cancel from requested", VehicleStatusRetrievalRequested, VehicleStatusParked, true},
		{"cancel from retrieving", VehicleStatusRetrieving, VehicleStatusParked, true},
		{"no return from retrieved", VehicleStatusRetrieved, VehicleStatusParked, false},
		{"no backward step", VehicleStatusRetrieving, VehicleStatusRetrievalRequested, false},
		{"unknown status", VehicleStatus("TOWED"), VehicleStatusParked, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := CanTransitionVehicle(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransitionVehicle(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}
