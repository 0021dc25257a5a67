package models

type Role int

const (
	User Role = iota
	Bot
)

func (r Role) String() string {
	switch r {
	case User:
		return "user"
	case Bot:
		return "bot"
	default:
		return "unknown"
	}
}

// Message is one transcript entry. Content is display markup produced by
// markup.Format, never raw user text.
type Message struct {
	ID      string // Stable identifier, used to update an entry while it is revealed
	Role    Role
	Content string
	Typing  bool // Ephemeral typing indicator placeholder, not a committed message
}
