// Package helm steers the tiller from the sender side.
//
// A power level in [-1, 1] is turned into a command: positive power
// drives Direction A, zero or negative power drives Direction B.
package helm

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/tiller.go/pkg/link"
	"github.com/robotalks/tiller.go/pkg/motor"
)

// DefaultInterval is the period of re-sending the command.
const DefaultInterval = 200 * time.Millisecond

// Level converts power into a command.
func Level(power float64) motor.Command {
	if math.IsNaN(power) {
		power = 0
	}
	dir := motor.DirB
	if power > 0 {
		dir = motor.DirA
	}
	mag := math.Min(math.Abs(power), 1)
	return motor.Command{Intensity: uint8(math.Round(mag * 255)), Direction: dir}
}

// Move drives dir at full power.
func Move(dir motor.Direction) motor.Command {
	return motor.Command{Intensity: 255, Direction: dir}
}

// StopCommand stops the motor, encoded as [0, 0].
func StopCommand() motor.Command {
	return motor.Command{Direction: motor.DirB}
}

// Helm keeps sending the latest power level while running, so the
// actuator follows the sender even after a write is lost.
type Helm struct {
	Writer   link.CommandWriter
	Interval time.Duration

	power float64
	lock  sync.Mutex
}

// New creates a Helm.
func New(w link.CommandWriter) *Helm {
	return &Helm{Writer: w, Interval: DefaultInterval}
}

// Name implements Named.
func (h *Helm) Name() string {
	return "helm"
}

// SetPower sets the power level sent on the next tick.
func (h *Helm) SetPower(power float64) motor.Command {
	h.lock.Lock()
	h.power = power
	h.lock.Unlock()
	return Level(power)
}

// Power returns the current power level.
func (h *Helm) Power() float64 {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.power
}

// Stop sets the power level to 0.
func (h *Helm) Stop() motor.Command {
	return h.SetPower(0)
}

// Send writes the command of current power level.
func (h *Helm) Send() error {
	return h.Writer.WriteCommand(Level(h.Power()).Bytes())
}

// Run implements Runnable.
func (h *Helm) Run(ctx context.Context) error {
	interval := h.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := h.Send(); err != nil {
			glog.Warningf("helm: write error: %v", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
