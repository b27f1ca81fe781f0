package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"utter/internal/domain"
)

func TestReconcileTarget(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	dev := func(id, name string, age time.Duration) domain.Device {
		return domain.Device{ID: domain.DeviceID(id), Name: name, LastSeen: now.Add(-age)}
	}

	cases := []struct {
		name    string
		cur     domain.Target
		devices []domain.Device
		want    domain.Target
	}{
		{
			name:    "nothing selected",
			devices: []domain.Device{dev("b1", "laptop", 0)},
		},
		{
			name:    "id still present",
			cur:     domain.Target{DeviceID: "b1", DeviceName: "laptop"},
			devices: []domain.Device{dev("b1", "laptop", 0)},
			want:    domain.Target{DeviceID: "b1", DeviceName: "laptop"},
		},
		{
			name:    "id present under a new name",
			cur:     domain.Target{DeviceID: "b1", DeviceName: "laptop"},
			devices: []domain.Device{dev("b1", "work-laptop", 0)},
			want:    domain.Target{DeviceID: "b1", DeviceName: "work-laptop"},
		},
		{
			name:    "id gone, rebind by name",
			cur:     domain.Target{DeviceID: "b1", DeviceName: "laptop"},
			devices: []domain.Device{dev("b2", "laptop", 0), dev("c1", "desk", 0)},
			want:    domain.Target{DeviceID: "b2", DeviceName: "laptop"},
		},
		{
			name:    "id gone, name not yet back",
			cur:     domain.Target{DeviceID: "b1", DeviceName: "laptop"},
			devices: []domain.Device{dev("c1", "desk", 0)},
			want:    domain.Target{DeviceName: "laptop"},
		},
		{
			name:    "pending name appears",
			cur:     domain.Target{DeviceName: "laptop"},
			devices: []domain.Device{dev("b3", "laptop", 0)},
			want:    domain.Target{DeviceID: "b3", DeviceName: "laptop"},
		},
		{
			name:    "duplicate names pick most recent",
			cur:     domain.Target{DeviceName: "laptop"},
			devices: []domain.Device{dev("old", "laptop", time.Minute), dev("new", "laptop", 0)},
			want:    domain.Target{DeviceID: "new", DeviceName: "laptop"},
		},
		{
			name:    "never binds to self",
			cur:     domain.Target{DeviceName: "me"},
			devices: []domain.Device{dev("self", "me", 0)},
			want:    domain.Target{DeviceName: "me"},
		},
		{
			name:    "id gone without name clears",
			cur:     domain.Target{DeviceID: "b1"},
			devices: []domain.Device{dev("b2", "laptop", 0)},
			want:    domain.Target{},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ReconcileTarget(tc.cur, tc.devices, "self"))
		})
	}
}
