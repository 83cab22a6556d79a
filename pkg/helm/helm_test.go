package helm

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/tiller.go/pkg/motor"
)

type recorder struct {
	lock   sync.Mutex
	writes [][]byte
	err    error
}

func (r *recorder) WriteCommand(buf []byte) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.writes = append(r.writes, append([]byte(nil), buf...))
	return r.err
}

func (r *recorder) count() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return len(r.writes)
}

func (r *recorder) last() []byte {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.writes[len(r.writes)-1]
}

func TestLevel(t *testing.T) {
	testCases := []struct {
		power  float64
		expect []byte
	}{
		{0, []byte{0, 0}},
		{1, []byte{255, 1}},
		{-1, []byte{255, 0}},
		{0.5, []byte{128, 1}},
		{-0.25, []byte{64, 0}},
		{0.001, []byte{0, 1}},
		{2, []byte{255, 1}},
		{-7, []byte{255, 0}},
		{math.NaN(), []byte{0, 0}},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.expect, Level(tc.power).Bytes(), "power %v", tc.power)
	}
}

func TestLevelDrivesActuator(t *testing.T) {
	for _, power := range []float64{-1, -0.6, -0.2, 0, 0.2, 0.6, 1} {
		out := motor.NewOutput(nil, nil, nil)
		_, err := motor.NewInterpreter(out).Apply(Level(power).Bytes())
		require.NoError(t, err)
		levels := out.Levels()
		require.Equal(t, uint8(math.Round(math.Abs(power)*255)), levels.Indicator)
		if power > 0 {
			require.Zero(t, levels.B)
			require.Equal(t, levels.Indicator, levels.A)
		} else {
			require.Zero(t, levels.A)
			require.Equal(t, levels.Indicator, levels.B)
		}
	}
}

func TestMoveAndStop(t *testing.T) {
	require.Equal(t, []byte{255, 1}, Move(motor.DirA).Bytes())
	require.Equal(t, []byte{255, 0}, Move(motor.DirB).Bytes())
	require.Equal(t, []byte{0, 0}, StopCommand().Bytes())
}

func TestHelmRun(t *testing.T) {
	r := &recorder{err: errors.New("link lost")}
	h := New(r)
	h.Interval = 5 * time.Millisecond
	require.Equal(t, []byte{51, 0}, h.SetPower(-0.2).Bytes())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- h.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for r.count() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	require.True(t, r.count() >= 3, "keeps sending after errors")
	require.Equal(t, []byte{51, 0}, r.last())

	h.Stop()
	for string(r.last()) != "\x00\x00" && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	cancel()
	require.Equal(t, context.Canceled, <-errCh)
	require.Equal(t, []byte{0, 0}, r.last())
	require.Zero(t, h.Power())
}
