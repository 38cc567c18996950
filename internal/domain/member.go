package domain

// Moderator is a member of the review chat eligible to handle tickets.
type Moderator struct {
	Identity
	RoleTitle string
}

// RosterEntry is one row of the team roster sheet.
type RosterEntry struct {
	UserID       int64
	UserName     string
	GameNickname string
	Role         string
}
