// Package pwm provides duty-cycle backends for motor.Output.
package pwm

import (
	"fmt"
	"io/ioutil"

	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/physic"
)

// Defaults of the reference board.
const (
	DefaultFrequencyHz    = 1000
	DefaultResolutionBits = 8
)

// PinConfig binds a channel to a physical pin.
type PinConfig struct {
	Pin       string `yaml:"pin"`
	ActiveLow bool   `yaml:"active_low,omitempty"`
}

// Board describes how the three channels are wired.
type Board struct {
	FrequencyHz    int64 `yaml:"frequency_hz"`
	ResolutionBits int   `yaml:"resolution_bits"`

	Indicator  PinConfig `yaml:"indicator"`
	DirectionA PinConfig `yaml:"direction_a"`
	DirectionB PinConfig `yaml:"direction_b"`
}

// DefaultBoard is the reference wiring (on-board LED, GPIO12, GPIO13).
func DefaultBoard() *Board {
	return &Board{
		FrequencyHz:    DefaultFrequencyHz,
		ResolutionBits: DefaultResolutionBits,
		Indicator:      PinConfig{Pin: "GPIO2"},
		DirectionA:     PinConfig{Pin: "GPIO12"},
		DirectionB:     PinConfig{Pin: "GPIO13"},
	}
}

// LoadBoard reads a board from a YAML file. Missing fields keep defaults.
func LoadBoard(path string) (*Board, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseBoard(data)
}

// ParseBoard parses a board from YAML.
func ParseBoard(data []byte) (*Board, error) {
	b := DefaultBoard()
	if err := yaml.Unmarshal(data, b); err != nil {
		return nil, fmt.Errorf("invalid board config: %v", err)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Validate checks the board.
func (b *Board) Validate() error {
	if b.FrequencyHz <= 0 {
		return fmt.Errorf("invalid frequency %d Hz", b.FrequencyHz)
	}
	// intensity is 8-bit end to end.
	if b.ResolutionBits != DefaultResolutionBits {
		return fmt.Errorf("unsupported resolution %d bits, only %d is supported",
			b.ResolutionBits, DefaultResolutionBits)
	}
	pins := map[string]bool{}
	for _, p := range []PinConfig{b.Indicator, b.DirectionA, b.DirectionB} {
		if p.Pin == "" {
			return fmt.Errorf("pin required for all channels")
		}
		if pins[p.Pin] {
			return fmt.Errorf("pin %q bound to more than one channel", p.Pin)
		}
		pins[p.Pin] = true
	}
	return nil
}

// Frequency gets the carrier frequency.
func (b *Board) Frequency() physic.Frequency {
	return physic.Frequency(b.FrequencyHz) * physic.Hertz
}
