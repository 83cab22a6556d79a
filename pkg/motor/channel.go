package motor

import "fmt"

// Channel identifies a duty-cycle output.
type Channel int

// Channels
const (
	Indicator Channel = iota
	DirectionA
	DirectionB

	// NumChannels is the total number of channels.
	NumChannels = 3
)

// String implements fmt.Stringer.
func (c Channel) String() string {
	switch c {
	case Indicator:
		return "indicator"
	case DirectionA:
		return "direction-a"
	case DirectionB:
		return "direction-b"
	}
	return fmt.Sprintf("channel(%d)", int(c))
}

// IsValid checks if it's a known channel.
func (c Channel) IsValid() bool {
	return c >= Indicator && c < NumChannels
}

// Levels is a snapshot of the last level written to each channel.
type Levels struct {
	Indicator uint8 `json:"indicator"`
	A         uint8 `json:"level_a"`
	B         uint8 `json:"level_b"`
}

// Of gets the level of a channel.
func (l Levels) Of(ch Channel) uint8 {
	switch ch {
	case Indicator:
		return l.Indicator
	case DirectionA:
		return l.A
	case DirectionB:
		return l.B
	}
	return 0
}

// Energized tells whether both direction channels are non-zero,
// which must never be observed after a command completes.
func (l Levels) Energized() bool {
	return l.A != 0 && l.B != 0
}
