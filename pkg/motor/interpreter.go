package motor

// State is the state of the Interpreter.
type State int

// States
const (
	// StateIdle means no command is in flight.
	StateIdle State = iota
	// StateApplying means a command is being written to the channels.
	// It always returns to StateIdle before Apply returns.
	StateApplying
)

// String implements fmt.Stringer.
func (s State) String() string {
	if s == StateApplying {
		return "applying"
	}
	return "idle"
}

// Interpreter decodes command buffers and drives the channels.
// It must not be called concurrently; the caller serializes invocations.
type Interpreter struct {
	driver Driver
	state  State
}

// NewInterpreter creates an Interpreter driving the given Driver.
func NewInterpreter(driver Driver) *Interpreter {
	return &Interpreter{driver: driver}
}

// State gets the current state.
func (i *Interpreter) State() State {
	return i.state
}

// Apply decodes buf and applies it. On error no channel is touched.
func (i *Interpreter) Apply(buf []byte) (Command, error) {
	cmd, err := ParseCommand(buf)
	if err != nil {
		return cmd, err
	}
	i.ApplyCommand(cmd)
	return cmd, nil
}

// ApplyCommand writes the indicator, then DirectionA, then DirectionB.
// The unselected side is always written as 0.
func (i *Interpreter) ApplyCommand(cmd Command) {
	i.state = StateApplying
	defer func() { i.state = StateIdle }()

	i.driver.SetIntensity(Indicator, cmd.Intensity)
	a, b := cmd.Levels()
	i.driver.SetIntensity(DirectionA, a)
	i.driver.SetIntensity(DirectionB, b)
}

// Stop drives all channels to 0.
func (i *Interpreter) Stop() {
	i.ApplyCommand(Command{Direction: DirB})
}
