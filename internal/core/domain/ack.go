package domain

type AckState int32

const (
	AckUnacked AckState = iota
	AckInFlight
	AckAcked
	AckFailed
)

func (s AckState) String() string {
	switch s {
	case AckUnacked:
		return "unacked"
	case AckInFlight:
		return "in_flight"
	case AckAcked:
		return "acked"
	case AckFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition can happen.
func (s AckState) Terminal() bool {
	return s == AckAcked || s == AckFailed
}
