package link

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/tiller.go/pkg/framework"
	"github.com/robotalks/tiller.go/pkg/motor"
	"github.com/robotalks/tiller.go/pkg/msgs"
)

type fakeLink struct {
	advertised int
	err        error
}

func (l *fakeLink) Name() string { return "fake" }

func (l *fakeLink) Advertise() error {
	l.advertised++
	return l.err
}

type fakeNotifier struct {
	events []*msgs.MotorStatus
}

func (n *fakeNotifier) SendEvent(ctx context.Context, msg fx.Message) error {
	n.events = append(n.events, msg.(*msgs.MotorStatus))
	return nil
}

func newTestDispatcher() (*Dispatcher, *motor.Output) {
	out := motor.NewOutput(nil, nil, nil)
	return NewDispatcher(out), out
}

func TestDispatcherScenarios(t *testing.T) {
	testCases := []struct {
		name   string
		writes [][]byte
		expect motor.Levels
	}{
		{"forward", [][]byte{{200, 1}}, motor.Levels{Indicator: 200, A: 200}},
		{"reverse", [][]byte{{200, 0}}, motor.Levels{Indicator: 200, B: 200}},
		{"stop", [][]byte{{0, 1}}, motor.Levels{}},
		{"malformed keeps state", [][]byte{{60, 1}, {150}}, motor.Levels{Indicator: 60, A: 60}},
		{"switch direction", [][]byte{{90, 1}, {90, 0}}, motor.Levels{Indicator: 90, B: 90}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d, out := newTestDispatcher()
			l := &fakeLink{}
			for _, w := range tc.writes {
				d.Dispatch(Write(l, "peer", w))
			}
			require.Equal(t, tc.expect, out.Levels())
			require.Equal(t, tc.writes[len(tc.writes)-1], d.Value())
		})
	}
}

func TestDispatcherMalformed(t *testing.T) {
	d, _ := newTestDispatcher()
	err := d.Dispatch(Write(&fakeLink{}, "peer", []byte{1}))
	require.True(t, errors.Is(err, motor.ErrMalformedCommand))
	status := d.Status()
	require.Equal(t, uint64(1), status.Malformed)
	require.Zero(t, status.Applied)
}

func TestDispatcherDisconnect(t *testing.T) {
	testCases := []struct {
		name   string
		stop   bool
		expect motor.Levels
	}{
		{"keep running", false, motor.Levels{Indicator: 120, A: 120}},
		{"stop on disconnect", true, motor.Levels{}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d, out := newTestDispatcher()
			d.StopOnDisconnect = tc.stop
			l := &fakeLink{}
			d.Dispatch(&Connected{Link: l, Peer: "peer"})
			d.Dispatch(Write(l, "peer", []byte{120, 1}))
			require.NoError(t, d.Dispatch(&Disconnected{Link: l, Peer: "peer"}))
			require.Equal(t, 1, l.advertised)
			require.Equal(t, tc.expect, out.Levels())
		})
	}
}

func TestDispatcherAdvertiseError(t *testing.T) {
	d, _ := newTestDispatcher()
	l := &fakeLink{err: errors.New("radio busy")}
	require.EqualError(t, d.Dispatch(&Disconnected{Link: l}), "radio busy")
}

func TestDispatcherInLoop(t *testing.T) {
	d, out := newTestDispatcher()
	notifier := &fakeNotifier{}
	d.Notifier = notifier
	loop := fx.NewLoop().Add(d)
	l := &fakeLink{}

	loop.RunOnce(context.TODO())
	require.Len(t, notifier.events, 1, "initial status")
	require.Equal(t, motor.Levels{}, notifier.events[0].Levels())

	Post(loop, &Connected{Link: l, Peer: "p"})
	Post(loop, Write(l, "p", []byte{90, 1}))
	Post(loop, Write(l, "p", []byte{90, 0}))
	loop.RunOnce(context.TODO())
	require.Equal(t, motor.Levels{Indicator: 90, B: 90}, out.Levels())
	require.Len(t, notifier.events, 2)
	require.Equal(t, uint64(2), notifier.events[1].Applied)
	require.Equal(t, motor.Levels{Indicator: 90, B: 90}, notifier.events[1].Levels())

	loop.RunOnce(context.TODO())
	require.Len(t, notifier.events, 2, "no change, no status")
}

func TestWriteCopiesBuffer(t *testing.T) {
	buf := []byte{1, 1}
	ev := Write(&fakeLink{}, "p", buf)
	buf[0] = 9
	require.Equal(t, []byte{1, 1}, ev.Data)
}
