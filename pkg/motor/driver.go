package motor

import (
	"sync"

	"github.com/golang/glog"
)

// Driver sets the output intensity of a channel.
// It always succeeds from the caller's perspective.
type Driver interface {
	SetIntensity(ch Channel, level uint8)
}

// PWM is a duty-cycle signal generator bound to one physical pin.
type PWM interface {
	SetLevel(level uint8) error
}

// Output implements Driver on top of one PWM per channel.
// It is the only owner of the channel levels.
type Output struct {
	pwms   [NumChannels]PWM
	levels [NumChannels]uint8
	lock   sync.RWMutex
}

// NewOutput binds the PWMs to channels in the order of
// Indicator, DirectionA, DirectionB and drives all of them to 0.
// A nil PWM only tracks levels.
func NewOutput(indicator, a, b PWM) *Output {
	o := &Output{pwms: [NumChannels]PWM{indicator, a, b}}
	for ch := Indicator; ch < NumChannels; ch++ {
		o.write(ch, 0)
	}
	return o
}

// SetIntensity implements Driver.
func (o *Output) SetIntensity(ch Channel, level uint8) {
	if !ch.IsValid() {
		glog.Errorf("set intensity on unknown %v ignored", ch)
		return
	}
	o.lock.Lock()
	o.levels[ch] = level
	o.lock.Unlock()
	o.write(ch, level)
}

// Levels gets the last level written to each channel.
func (o *Output) Levels() Levels {
	o.lock.RLock()
	defer o.lock.RUnlock()
	return Levels{
		Indicator: o.levels[Indicator],
		A:         o.levels[DirectionA],
		B:         o.levels[DirectionB],
	}
}

func (o *Output) write(ch Channel, level uint8) {
	if p := o.pwms[ch]; p != nil {
		if err := p.SetLevel(level); err != nil {
			glog.Errorf("%v: set level %d error: %v", ch, level, err)
		}
	}
}
