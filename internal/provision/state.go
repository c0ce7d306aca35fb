package provision

// State is a position in the provisioning state machine. A run only moves
// forward; any fatal step moves it to Failed.
type State string

const (
	Start          State = "start"
	Detected       State = "detected"
	Validated      State = "validated"
	DepsVerified   State = "deps-verified"
	AccessVerified State = "access-verified"
	Installed      State = "installed"
	Configured     State = "configured"
	ServiceEnabled State = "service-enabled"

	ServiceDisabled State = "service-disabled"
	Removed         State = "removed"

	Done   State = "done"
	Failed State = "failed"
)

// Terminal reports whether no further step can run from s.
func (s State) Terminal() bool {
	return s == Done || s == Failed
}
