package sqlx

// Outcome tells a successful call apart from one an observer vetoed.
// A veto is not an error.
type Outcome int

const (
	// Applied means the transition happened.
	Applied Outcome = iota
	// Cancelled means an observer cancelled the Before event and the
	// state was left untouched.
	Cancelled
)

func (o Outcome) String() string {
	if o == Cancelled {
		return "cancelled"
	}
	return "applied"
}
