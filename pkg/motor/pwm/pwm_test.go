package pwm

import (
	"testing"

	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"

	"github.com/robotalks/tiller.go/pkg/motor"
)

func TestDuty(t *testing.T) {
	testCases := []struct {
		level     uint8
		activeLow bool
		expect    gpio.Duty
	}{
		{0, false, 0},
		{255, false, gpio.DutyMax},
		{0, true, gpio.DutyMax},
		{255, true, 0},
		{51, false, gpio.DutyMax / 5},
	}
	for _, tc := range testCases {
		require.Equalf(t, tc.expect, Duty(tc.level, tc.activeLow), "level %d activeLow %v", tc.level, tc.activeLow)
	}
}

func TestPin(t *testing.T) {
	a := &gpiotest.Pin{N: "GPIO12"}
	b := &gpiotest.Pin{N: "GPIO13"}
	out := motor.NewOutput(nil,
		NewPin(a, physic.KiloHertz, false),
		NewPin(b, physic.KiloHertz, true))
	require.Equal(t, gpio.Duty(0), a.D)
	require.Equal(t, gpio.DutyMax, b.D, "active low is inverted")
	require.Equal(t, physic.KiloHertz, a.F)

	_, err := motor.NewInterpreter(out).Apply([]byte{255, 1})
	require.NoError(t, err)
	require.Equal(t, gpio.DutyMax, a.D)
	require.Equal(t, gpio.DutyMax, b.D)
}

func TestParseBoard(t *testing.T) {
	testCases := []struct {
		name   string
		yaml   string
		expect *Board
		err    bool
	}{
		{
			name:   "empty uses defaults",
			yaml:   "",
			expect: DefaultBoard(),
		},
		{
			name: "override pins",
			yaml: `
frequency_hz: 2000
indicator:
  pin: GPIO5
direction_a:
  pin: GPIO6
  active_low: true
`,
			expect: &Board{
				FrequencyHz:    2000,
				ResolutionBits: 8,
				Indicator:      PinConfig{Pin: "GPIO5"},
				DirectionA:     PinConfig{Pin: "GPIO6", ActiveLow: true},
				DirectionB:     PinConfig{Pin: "GPIO13"},
			},
		},
		{
			name: "resolution must be 8",
			yaml: "resolution_bits: 10\n",
			err:  true,
		},
		{
			name: "shared pin",
			yaml: "direction_b:\n  pin: GPIO12\n",
			err:  true,
		},
		{
			name: "bad frequency",
			yaml: "frequency_hz: 0\n",
			err:  true,
		},
		{
			name: "bad yaml",
			yaml: "indicator: [",
			err:  true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := ParseBoard([]byte(tc.yaml))
			if tc.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expect, b)
		})
	}
}

func TestBoardFrequency(t *testing.T) {
	require.Equal(t, 1000*physic.Hertz, DefaultBoard().Frequency())
}

func TestSim(t *testing.T) {
	out, sims := OpenSim()
	for _, s := range sims {
		require.Equal(t, 1, s.Writes())
		require.Zero(t, s.Level())
	}
	interp := motor.NewInterpreter(out)
	_, err := interp.Apply([]byte{200, 1})
	require.NoError(t, err)
	require.Equal(t, uint8(200), sims[motor.Indicator].Level())
	require.Equal(t, uint8(200), sims[motor.DirectionA].Level())
	require.Zero(t, sims[motor.DirectionB].Level())
	require.Equal(t, motor.Levels{Indicator: 200, A: 200}, out.Levels())
}
