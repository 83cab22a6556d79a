package pwm

import (
	"fmt"

	"github.com/golang/glog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/robotalks/tiller.go/pkg/motor"
)

// Pin drives a hardware PWM pin through periph.io.
type Pin struct {
	pin       gpio.PinIO
	freq      physic.Frequency
	activeLow bool
}

// NewPin wraps a periph pin.
func NewPin(pin gpio.PinIO, freq physic.Frequency, activeLow bool) *Pin {
	return &Pin{pin: pin, freq: freq, activeLow: activeLow}
}

// Duty converts an 8-bit level into a periph duty cycle.
// 255 maps to gpio.DutyMax.
func Duty(level uint8, activeLow bool) gpio.Duty {
	d := gpio.Duty(int64(level) * int64(gpio.DutyMax) / 255)
	if activeLow {
		d = gpio.DutyMax - d
	}
	return d
}

// SetLevel implements motor.PWM.
func (p *Pin) SetLevel(level uint8) error {
	return p.pin.PWM(Duty(level, p.activeLow), p.freq)
}

// Halt releases the pin.
func (p *Pin) Halt() error {
	return p.pin.Halt()
}

// Open initializes the host drivers and binds the board pins.
// The returned Output has all channels at level 0.
func Open(b *Board) (*motor.Output, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init error: %v", err)
	}
	var pins [motor.NumChannels]*Pin
	for n, conf := range []PinConfig{b.Indicator, b.DirectionA, b.DirectionB} {
		p := gpioreg.ByName(conf.Pin)
		if p == nil {
			return nil, fmt.Errorf("%v: unknown pin %q", motor.Channel(n), conf.Pin)
		}
		pins[n] = NewPin(p, b.Frequency(), conf.ActiveLow)
		glog.Infof("%v bound to %s at %s", motor.Channel(n), p.Name(), b.Frequency())
	}
	return motor.NewOutput(pins[motor.Indicator], pins[motor.DirectionA], pins[motor.DirectionB]), nil
}
