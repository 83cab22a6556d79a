package stream

import (
	"context"
	"os"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/tiller.go/pkg/framework"
)

// Defaults of Port.
const (
	DefaultReopenInterval = time.Second
	DefaultBaud           = 115200
)

// Port reads packets from a serial device. The device is opened
// again after it's lost, e.g. a USB adapter is unplugged.
type Port struct {
	Path           string
	Baud           int
	ReopenInterval time.Duration
}

// Name implements link.Link.
func (p *Port) Name() string {
	return "serial:" + p.Path
}

// Advertise implements link.Link.
func (p *Port) Advertise() error {
	return nil
}

// AddToLoop implements LoopAdder.
func (p *Port) AddToLoop(l *fx.Loop) {
	l.AddRunnable(p)
}

// Run implements Runnable.
func (p *Port) Run(ctx context.Context) error {
	ctl := fx.LoopCtlFrom(ctx)
	interval := p.ReopenInterval
	if interval <= 0 {
		interval = DefaultReopenInterval
	}
	baud := p.Baud
	if baud == 0 {
		baud = DefaultBaud
	}
	for {
		f, err := os.OpenFile(p.Path, os.O_RDWR, 0)
		if err != nil {
			glog.V(1).Infof("%s: open error: %v", p.Name(), err)
		} else if err = makeRaw(f, baud); err != nil {
			glog.Errorf("%s: %v", p.Name(), err)
			f.Close()
		} else if err = Serve(ctx, ctl, p, p.Path, f); err != nil {
			glog.Warningf("%s: %v", p.Name(), err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}
