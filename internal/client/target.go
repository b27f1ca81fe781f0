package client

import "utter/internal/domain"

// ReconcileTarget rebinds cur against a fresh directory snapshot.
//
// A target whose id is still listed is kept and its cached name refreshed.
// Otherwise the id is cleared and, if a name is cached, the target is bound
// to the device now reporting that name. When several devices share the
// name the most recently seen one wins. self is never selected.
func ReconcileTarget(cur domain.Target, devices []domain.Device, self domain.DeviceID) domain.Target {
	if cur.IsZero() {
		return cur
	}
	if cur.DeviceID != "" {
		for _, d := range devices {
			if d.ID == cur.DeviceID {
				return domain.Target{DeviceID: d.ID, DeviceName: d.Name}
			}
		}
	}

	next := domain.Target{DeviceName: cur.DeviceName}
	if cur.DeviceName == "" {
		return next
	}
	var best *domain.Device
	for i := range devices {
		d := &devices[i]
		if d.ID == self || d.Name != cur.DeviceName {
			continue
		}
		if best == nil || d.LastSeen.After(best.LastSeen) {
			best = d
		}
	}
	if best != nil {
		next.DeviceID = best.ID
	}
	return next
}
