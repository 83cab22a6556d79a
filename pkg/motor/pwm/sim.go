package pwm

import (
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/tiller.go/pkg/motor"
)

// Sim is a simulated PWM which only records and logs levels.
type Sim struct {
	Name string

	level  uint8
	writes int
	lock   sync.Mutex
}

// SetLevel implements motor.PWM.
func (s *Sim) SetLevel(level uint8) error {
	s.lock.Lock()
	changed := s.writes == 0 || s.level != level
	s.level = level
	s.writes++
	s.lock.Unlock()
	if changed {
		glog.V(2).Infof("PWM %s: %d/255", s.Name, level)
	}
	return nil
}

// Level gets the last level.
func (s *Sim) Level() uint8 {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.level
}

// Writes gets the number of writes.
func (s *Sim) Writes() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.writes
}

// OpenSim creates an Output backed by simulated PWMs.
func OpenSim() (*motor.Output, [motor.NumChannels]*Sim) {
	var sims [motor.NumChannels]*Sim
	for ch := motor.Indicator; ch < motor.NumChannels; ch++ {
		sims[ch] = &Sim{Name: ch.String()}
	}
	return motor.NewOutput(sims[motor.Indicator], sims[motor.DirectionA], sims[motor.DirectionB]), sims
}
