package led

// Controller abstracts one managed LED unit.
// *IO drives real hardware; the no-op controller is used for dry runs.
type Controller interface {
	// ID returns the LED index.
	ID() int

	// State returns the last successfully applied state.
	State() State

	// SetState applies a new state. Applying the current state is a no-op.
	SetState(s State) error

	// BlinkDegraded reports whether the current state is shown solid
	// because a blink attribute could not be written.
	BlinkDegraded() bool
}

var _ Controller = (*IO)(nil)
