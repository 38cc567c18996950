// Package chat defines the platform-neutral surface the bot consumes:
// delivering messages, posting interactive affordances, and resolving the
// review chat's membership. Services depend on these interfaces only; the
// Telegram adapter in internal/telegram implements them.
package chat

import "context"

// User identifies a chat user.
type User struct {
	ID   int64
	Name string
}

// Attachment references a file sent with a message.
type Attachment struct {
	URL         string
	FileName    string
	ContentType string
}

// Message is an incoming chat message routed to the bot.
type Message struct {
	From        User
	ChatID      int64
	Text        string
	Attachments []Attachment
	Private     bool
}

// Command is a parsed slash command.
type Command struct {
	From    User
	ChatID  int64
	Name    string
	Args    string
	Private bool
}

// Callback is a button or selection interaction.
type Callback struct {
	ID        string
	From      User
	ChatID    int64
	MessageID int
	Data      string
}

// Button is one interactive control on a posted affordance.
type Button struct {
	Label string
	Data  string
}

// Member is a review chat member together with their role title.
type Member struct {
	User      User
	RoleTitle string
	IsAdmin   bool
}

// Messenger delivers outgoing messages and affordances.
type Messenger interface {
	// SendDirect delivers a private message to a user. Users may have
	// blocked the bot; callers treat failures as non-fatal.
	SendDirect(ctx context.Context, userID int64, text string) error
	Send(ctx context.Context, chatID int64, text string) error
	SendWithButtons(ctx context.Context, chatID int64, text string, rows [][]Button) (int, error)
	EditButtons(ctx context.Context, chatID int64, messageID int, text string, rows [][]Button) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
}

// Directory resolves the membership of a chat.
type Directory interface {
	Members(ctx context.Context, chatID int64) ([]Member, error)
}

// Downloader fetches attachment bytes for the attachment store.
type Downloader interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

// Handler consumes events produced by a gateway update loop.
type Handler interface {
	HandleCommand(ctx context.Context, cmd Command)
	HandleMessage(ctx context.Context, msg Message)
	HandleCallback(ctx context.Context, cb Callback)
}
