package domain

import "fmt"

type OutcomeKind int

const (
	Success OutcomeKind = iota
	UserFailure
	SystemFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case Success:
		return "success"
	case UserFailure:
		return "user_failure"
	case SystemFailure:
		return "system_failure"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// Outcome is the result of one command run. A UserFailure carries a message that is safe to show verbatim,
// a SystemFailure carries an internal error that must only be logged.
type Outcome struct {
	Kind    OutcomeKind
	Message string
	Err     error
}

func Ok() Outcome {
	return Outcome{Kind: Success}
}

func Fail(message string) Outcome {
	return Outcome{Kind: UserFailure, Message: message}
}

func Failf(format string, args ...any) Outcome {
	return Fail(fmt.Sprintf(format, args...))
}

func Fault(err error) Outcome {
	if err == nil {
		err = fmt.Errorf("unspecified system failure")
	}

	return Outcome{Kind: SystemFailure, Err: err}
}

// Faultf wraps err with context, like fmt.Errorf with a trailing %w.
func Faultf(err error, format string, args ...any) Outcome {
	return Fault(fmt.Errorf(format+": %w", append(args, err)...))
}
