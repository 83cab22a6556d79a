package mqtt

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver"
)

// Ref is a reference to a device.
type Ref struct {
	// Type is the device type.
	Type string
	// ID is unique ID of the device.
	ID string
}

// Name retrieves the name from ref, which is also the topic prefix.
func (r Ref) Name() string {
	return r.Type + "/" + r.ID
}

// IsValid indicates Ref is valid.
func (r Ref) IsValid() bool {
	return r.Type != "" && r.ID != "" &&
		!strings.ContainsAny(r.Type+r.ID, "/+#")
}

// Topic builds the topic of a device.
func (r Ref) Topic(suffix string) string {
	return r.Name() + "/" + suffix
}

// Meta provides metadata advertised by a device.
type Meta struct {
	Description string            `json:"description,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
}

// Info provides information of a device.
type Info struct {
	Ref  Ref
	Meta Meta
}

// Command protocol versions.
const (
	LabelProtocol = "protocol"
	// ProtocolVersion is advertised by Peripheral.
	ProtocolVersion = "1.0.0"
	// ProtocolConstraint is what a Central can talk to.
	ProtocolConstraint = "^1.0.0"
)

// CheckProtocol checks the advertised protocol version.
// Devices not advertising a version are assumed compatible.
func (info Info) CheckProtocol() error {
	ver, ok := info.Meta.Labels[LabelProtocol]
	if !ok {
		return nil
	}
	semVer, err := semver.NewVersion(ver)
	if err != nil {
		return fmt.Errorf("%s: invalid protocol version %q: %v", info.Ref.Name(), ver, err)
	}
	constraint, err := semver.NewConstraint(ProtocolConstraint)
	if err != nil {
		return err
	}
	if !constraint.Check(semVer) {
		return fmt.Errorf("%s: protocol %s, require %s", info.Ref.Name(), ver, ProtocolConstraint)
	}
	return nil
}

// Topic suffixes
const (
	TopicMeta  = "meta"
	TopicCmd   = "cmd"
	TopicRead  = "read"
	TopicValue = "value"
	TopicMsg   = "msg"
)
