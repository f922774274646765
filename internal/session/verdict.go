package session

// Verdict is the gate's belief about whether the current credential grants
// access to protected content. The zero value is Unknown.
type Verdict int

const (
	Unknown Verdict = iota
	Authorized
	Unauthorized
)

func (v Verdict) String() string {
	switch v {
	case Unknown:
		return "unknown"
	case Authorized:
		return "authorized"
	case Unauthorized:
		return "unauthorized"
	default:
		return "invalid"
	}
}

// Settled reports whether v is one of the terminal verdicts.
func (v Verdict) Settled() bool {
	return v == Authorized || v == Unauthorized
}
