package workflow

// State represents a workflow state in the approval lifecycle. The state
// vocabulary is not fixed: pending states are synthesized from each
// department's flow template, so validity is decided by the machine a
// state was configured into rather than by a package-level enum.
type State string

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}
