package progress

// Outcome is the final state of one test.
type Outcome int

const (
	Passed Outcome = iota
	Failed
	Error
	Timeout
	Canceled
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case Passed:
		return "passed"
	case Failed:
		return "failed"
	case Error:
		return "error"
	case Timeout:
		return "timeout"
	case Canceled:
		return "canceled"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// IsFailure reports whether the outcome counts as a failed test.
func (o Outcome) IsFailure() bool {
	switch o {
	case Failed, Error, Timeout, Canceled:
		return true
	default:
		return false
	}
}
