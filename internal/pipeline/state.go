package pipeline

import (
	"errors"
	"fmt"

	"github.com/pressroomhq/scrubpress/internal/validate"
)

// State is the pipeline's position in its run.
type State int

const (
	Idle State = iota
	SnapshotReady
	Transformed
	ValidatedPass
	ValidatedFail
	Published
	Rejected
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case SnapshotReady:
		return "snapshot-ready"
	case Transformed:
		return "transformed"
	case ValidatedPass:
		return "validated(pass)"
	case ValidatedFail:
		return "validated(fail)"
	case Published:
		return "published"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// legal transitions; ValidatedFail can only move to Rejected.
var transitions = map[State][]State{
	Idle:          {SnapshotReady},
	SnapshotReady: {Transformed},
	Transformed:   {ValidatedPass, ValidatedFail},
	ValidatedPass: {Published, Rejected},
	ValidatedFail: {Rejected},
}

// transition moves the pipeline to next, panicking on an illegal edge. An
// illegal edge is a programming error, not an operator condition.
func (p *Pipeline) transition(next State) {
	for _, allowed := range transitions[p.state] {
		if allowed == next {
			p.state = next
			return
		}
	}
	panic(fmt.Sprintf("illegal pipeline transition %s -> %s", p.state, next))
}

// ValidationError blocks publishing and carries the complete findings list so
// the operator can extend configuration in one iteration.
type ValidationError struct {
	Result *validate.Result
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d finding(s)", len(e.Result.Findings))
}

// AsValidationError unwraps err into a *ValidationError when possible.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
