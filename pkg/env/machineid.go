// Package env provides helpers shared by the device and connector configs.
package env

import (
	"github.com/denisbrodbeck/machineid"
)

// MachineID retrieves the unique ID identifying the machine.
// It returns empty string if the ID is not available, e.g. in a container.
func MachineID() string {
	id, err := machineid.ProtectedID("tiller")
	if err != nil {
		return ""
	}
	// long enough to be unique, short enough for topics.
	if len(id) > 12 {
		id = id[:12]
	}
	return id
}
