package zipdir

// seekState drives the locate-and-verify loops that get one compensating
// retry: the Zip64 end record lookup and the central directory seek.
type seekState int

const (
	stateSeeking seekState = iota
	stateVerifying
	stateCompensating
	stateResolved
	stateFailed
)

var seekStateNames = [...]string{"seeking", "verifying", "compensating", "resolved", "failed"}

func (s seekState) String() string {
	if s < 0 || int(s) >= len(seekStateNames) {
		return "unknown"
	}
	return seekStateNames[s]
}

func (s seekState) done() bool {
	return s == stateResolved || s == stateFailed
}
