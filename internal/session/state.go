package session

// State is the session lifecycle state
type State int

const (
	Anonymous State = iota
	Authenticated
	// PasswordChangeRequired withholds the game until the password is changed
	PasswordChangeRequired
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	case PasswordChangeRequired:
		return "password_change_required"
	default:
		return "unknown"
	}
}
