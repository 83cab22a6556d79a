package motor

import (
	"errors"
	"fmt"
)

// CommandSize is the minimum number of bytes of a command buffer.
const CommandSize = 2

// Direction is the decoded direction selector.
type Direction int

// Directions
const (
	DirA Direction = iota
	DirB
)

// Selector values on the wire.
const (
	// SelectorA is the only byte value selecting DirA.
	SelectorA byte = 1
	// SelectorB is what senders write for DirB. Any value
	// other than SelectorA decodes to DirB as well.
	SelectorB byte = 0
)

// DecodeDirection decodes the direction selector byte.
// Only the literal value 1 selects DirA; 0 and every other value select DirB.
// Deployed senders rely on this mapping, keep it as is.
func DecodeDirection(b byte) Direction {
	if b == SelectorA {
		return DirA
	}
	return DirB
}

// Selector encodes the direction to the wire value.
func (d Direction) Selector() byte {
	if d == DirA {
		return SelectorA
	}
	return SelectorB
}

// String implements fmt.Stringer.
func (d Direction) String() string {
	if d == DirA {
		return "A"
	}
	return "B"
}

// ErrMalformedCommand indicates the buffer is too short to be a command.
var ErrMalformedCommand = errors.New("malformed command")

// MalformedCommandError carries the length of the rejected buffer.
type MalformedCommandError struct {
	Len int
}

// Error implements error.
func (e *MalformedCommandError) Error() string {
	return fmt.Sprintf("%v: %d bytes, at least %d expected", ErrMalformedCommand, e.Len, CommandSize)
}

// Unwrap returns ErrMalformedCommand.
func (e *MalformedCommandError) Unwrap() error {
	return ErrMalformedCommand
}

// Command is a decoded motor command.
type Command struct {
	Intensity uint8
	Direction Direction
}

// ParseCommand decodes a buffer. Bytes after the selector are ignored.
func ParseCommand(buf []byte) (cmd Command, err error) {
	if len(buf) < CommandSize {
		return cmd, &MalformedCommandError{Len: len(buf)}
	}
	cmd.Intensity = buf[0]
	cmd.Direction = DecodeDirection(buf[1])
	return
}

// Levels resolves the levels of the two direction channels.
// The selected side gets the intensity and the other side 0.
func (c Command) Levels() (a, b uint8) {
	if c.Direction == DirA {
		return c.Intensity, 0
	}
	return 0, c.Intensity
}

// IsStop indicates the command stops the motor.
func (c Command) IsStop() bool {
	return c.Intensity == 0
}

// Bytes encodes the command for sending.
func (c Command) Bytes() []byte {
	return []byte{c.Intensity, c.Direction.Selector()}
}

// String implements fmt.Stringer.
func (c Command) String() string {
	if c.IsStop() {
		return "stop"
	}
	return fmt.Sprintf("%s@%d", c.Direction, c.Intensity)
}
