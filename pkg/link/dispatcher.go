package link

import (
	"context"
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/tiller.go/pkg/framework"
	"github.com/robotalks/tiller.go/pkg/motor"
	"github.com/robotalks/tiller.go/pkg/msgs"
)

// LevelReader reads the current channel levels.
type LevelReader interface {
	Levels() motor.Levels
}

// StatusNotifier publishes status events.
type StatusNotifier interface {
	SendEvent(context.Context, fx.Message) error
}

// Notifiers sends status events to every notifier.
type Notifiers []StatusNotifier

// SendEvent implements StatusNotifier.
func (n Notifiers) SendEvent(ctx context.Context, msg fx.Message) error {
	var errs fx.AggregatedError
	for _, notifier := range n {
		errs.Add(notifier.SendEvent(ctx, msg))
	}
	return errs.Aggregate()
}

// ValueSource provides the last written buffer for read-back.
type ValueSource interface {
	Value() []byte
}

// Dispatcher consumes link events and drives the Interpreter.
type Dispatcher struct {
	Interpreter *motor.Interpreter
	// Levels is optional, used for status events.
	Levels LevelReader
	// Notifier is optional, receives MotorStatus after changes.
	Notifier StatusNotifier
	// StopOnDisconnect drives all channels to 0 when a peer is lost.
	// When false the last command keeps running.
	StopOnDisconnect bool

	value     []byte
	valueLock sync.RWMutex

	applied   uint64
	malformed uint64
	changed   bool
}

// NewDispatcher creates a Dispatcher with an Output driving the Interpreter.
func NewDispatcher(out *motor.Output) *Dispatcher {
	return &Dispatcher{
		Interpreter: motor.NewInterpreter(out),
		Levels:      out,
		changed:     true, // send initial status.
	}
}

// AddToLoop implements LoopAdder.
func (d *Dispatcher) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvControl, d)
	l.AddController(fx.PrLvPostProc, fx.ControlFunc(d.NotifyChanges))
}

// Control implements Controller.
func (d *Dispatcher) Control(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
		if ev, ok := mctx.CurrentMessage().(Event); ok {
			mctx.MessageTaken()
			d.Dispatch(ev)
		}
	}))
	return nil
}

// Dispatch handles a single event. The returned error is for
// diagnostics only; it has already been logged.
func (d *Dispatcher) Dispatch(ev Event) error {
	name := linkName(ev.Source())
	switch e := ev.(type) {
	case *Connected:
		glog.Infof("%s: peer %s connected", name, e.Peer)
	case *Disconnected:
		if e.Err != nil {
			glog.Infof("%s: peer %s disconnected: %v", name, e.Peer, e.Err)
		} else {
			glog.Infof("%s: peer %s disconnected", name, e.Peer)
		}
		if d.StopOnDisconnect {
			glog.Info("stop on disconnect")
			d.Interpreter.Stop()
			d.changed = true
		}
		if e.Link != nil {
			if err := e.Link.Advertise(); err != nil {
				glog.Errorf("%s: advertise error: %v", name, err)
				return err
			}
		}
	case *Written:
		d.setValue(e.Data)
		cmd, err := d.Interpreter.Apply(e.Data)
		if err != nil {
			d.malformed++
			d.changed = true
			glog.Warningf("%s: peer %s: %v", name, e.Peer, err)
			return err
		}
		d.applied++
		d.changed = true
		glog.V(1).Infof("%s: peer %s: %v", name, e.Peer, cmd)
	}
	return nil
}

// Value implements ValueSource. It's safe to call from any goroutine.
func (d *Dispatcher) Value() []byte {
	d.valueLock.RLock()
	defer d.valueLock.RUnlock()
	if d.value == nil {
		return nil
	}
	val := make([]byte, len(d.value))
	copy(val, d.value)
	return val
}

// Status builds the current MotorStatus.
func (d *Dispatcher) Status() *msgs.MotorStatus {
	var status msgs.MotorStatus
	if d.Levels != nil {
		status = *msgs.NewMotorStatus(d.Levels.Levels())
	}
	status.Applied, status.Malformed = d.applied, d.malformed
	return &status
}

// NotifyChanges sends MotorStatus if anything changed.
func (d *Dispatcher) NotifyChanges(cc fx.ControlContext) error {
	changed := d.changed
	d.changed = false
	if changed && d.Notifier != nil {
		return d.Notifier.SendEvent(cc.Context(), d.Status())
	}
	return nil
}

func (d *Dispatcher) setValue(buf []byte) {
	d.valueLock.Lock()
	d.value = append(d.value[:0], buf...)
	d.valueLock.Unlock()
}

func linkName(l Link) string {
	if l == nil {
		return "link"
	}
	return l.Name()
}
