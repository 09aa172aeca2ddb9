package models

// User represents a registered account. PasswordHash is the bcrypt hash of
// the signup password and never leaves the server.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

// Session is a server-side browser session. LoggedInUser is nil for
// anonymous sessions; sign-out clears it without deleting the row.
type Session struct {
	ID           int64  `json:"id"`
	LoggedInUser *int64 `json:"logged_in_user,omitempty"`
}

// App is a registered external integration owned by a user.
type App struct {
	ID             int64  `json:"id"`
	OwnerID        int64  `json:"owner_id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Domain         string `json:"domain"`
	Token          string `json:"-"` // Never expose the token
	Connected      bool   `json:"connected"`
	ConnectedError string `json:"connected_error"`
}

// Repo is a named collection of apps. Apps holds member app ids in
// insertion order; the same id may appear more than once.
type Repo struct {
	ID          int64   `json:"id"`
	OwnerID     int64   `json:"owner_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Apps        []int64 `json:"apps"`
}
