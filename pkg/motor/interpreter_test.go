package motor

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type setCall struct {
	ch    Channel
	level uint8
}

type recordingDriver struct {
	calls  []setCall
	levels Levels
	// overlap is set if both direction channels are ever energized
	// by the time a command completes.
	overlap bool
}

func (d *recordingDriver) SetIntensity(ch Channel, level uint8) {
	d.calls = append(d.calls, setCall{ch: ch, level: level})
	switch ch {
	case Indicator:
		d.levels.Indicator = level
	case DirectionA:
		d.levels.A = level
	case DirectionB:
		d.levels.B = level
		if d.levels.Energized() {
			d.overlap = true
		}
	}
}

func TestInterpreterScenarios(t *testing.T) {
	testCases := []struct {
		name   string
		inputs [][]byte
		expect Levels
	}{
		{"forward", [][]byte{{200, 1}}, Levels{Indicator: 200, A: 200}},
		{"reverse", [][]byte{{200, 0}}, Levels{Indicator: 200, B: 200}},
		{"stop", [][]byte{{0, 1}}, Levels{}},
		{"switch direction", [][]byte{{90, 1}, {90, 0}}, Levels{Indicator: 90, B: 90}},
		{"selector 2", [][]byte{{10, 2}}, Levels{Indicator: 10, B: 10}},
		{"selector 200", [][]byte{{30, 200}}, Levels{Indicator: 30, B: 30}},
		{"selector 255", [][]byte{{255, 255}}, Levels{Indicator: 255, B: 255}},
		{"trailing bytes", [][]byte{{40, 1, 9, 9}}, Levels{Indicator: 40, A: 40}},
		{"full power", [][]byte{{255, 1}}, Levels{Indicator: 255, A: 255}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			drv := &recordingDriver{}
			interp := NewInterpreter(drv)
			for n, in := range tc.inputs {
				_, err := interp.Apply(in)
				require.NoErrorf(t, err, "input[%d]", n)
				require.Equal(t, StateIdle, interp.State())
			}
			require.Equal(t, tc.expect, drv.levels)
			require.False(t, drv.overlap)
		})
	}
}

func TestInterpreterWriteOrder(t *testing.T) {
	drv := &recordingDriver{}
	interp := NewInterpreter(drv)
	cmd, err := interp.Apply([]byte{120, 1})
	require.NoError(t, err)
	require.Equal(t, Command{Intensity: 120, Direction: DirA}, cmd)
	require.Equal(t, []setCall{
		{Indicator, 120},
		{DirectionA, 120},
		{DirectionB, 0},
	}, drv.calls)
}

func TestInterpreterMalformed(t *testing.T) {
	for _, in := range [][]byte{nil, {}, {150}} {
		t.Run(fmt.Sprintf("len %d", len(in)), func(t *testing.T) {
			drv := &recordingDriver{}
			interp := NewInterpreter(drv)
			_, err := interp.Apply([]byte{70, 0})
			require.NoError(t, err)
			drv.calls = nil

			_, err = interp.Apply(in)
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrMalformedCommand))
			var merr *MalformedCommandError
			require.True(t, errors.As(err, &merr))
			require.Equal(t, len(in), merr.Len)
			require.Empty(t, drv.calls)
			require.Equal(t, Levels{Indicator: 70, B: 70}, drv.levels)
			require.Equal(t, StateIdle, interp.State())
		})
	}
}

func TestInterpreterProperties(t *testing.T) {
	for i := 0; i < 256; i += 15 {
		for _, sel := range []byte{0, 1, 2, 127, 200, 255} {
			in := []byte{byte(i), sel}
			drv := &recordingDriver{}
			interp := NewInterpreter(drv)
			_, err := interp.Apply(in)
			require.NoError(t, err)
			require.Equal(t, in[0], drv.levels.Indicator)
			if sel == 1 {
				require.Equal(t, in[0], drv.levels.A)
				require.Zero(t, drv.levels.B)
			} else {
				require.Equal(t, in[0], drv.levels.B)
				require.Zero(t, drv.levels.A)
			}

			once := drv.levels
			_, err = interp.Apply(in)
			require.NoError(t, err)
			require.Equal(t, once, drv.levels, "apply twice must be idempotent")
		}
	}
}

func TestInterpreterStop(t *testing.T) {
	drv := &recordingDriver{}
	interp := NewInterpreter(drv)
	_, err := interp.Apply([]byte{180, 1})
	require.NoError(t, err)
	interp.Stop()
	require.Equal(t, Levels{}, drv.levels)
}

func TestCommand(t *testing.T) {
	testCases := []struct {
		buf    []byte
		expect Command
		str    string
	}{
		{[]byte{200, 1}, Command{Intensity: 200, Direction: DirA}, "A@200"},
		{[]byte{200, 0}, Command{Intensity: 200, Direction: DirB}, "B@200"},
		{[]byte{0, 1}, Command{Direction: DirA}, "stop"},
	}
	for _, tc := range testCases {
		t.Run(tc.str, func(t *testing.T) {
			cmd, err := ParseCommand(tc.buf)
			require.NoError(t, err)
			require.Equal(t, tc.expect, cmd)
			require.Equal(t, tc.buf, cmd.Bytes())
			require.Equal(t, tc.str, cmd.String())
		})
	}

	// any selector other than 1 re-encodes as 0.
	cmd, err := ParseCommand([]byte{5, 200})
	require.NoError(t, err)
	require.Equal(t, []byte{5, 0}, cmd.Bytes())
}
