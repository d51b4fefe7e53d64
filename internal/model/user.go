package model

// User is the identity resolved from the bearer credential via /users/me.
// Fetched once per session validation and cached by the session resolver;
// it goes stale only on logout or a resolver error.
type User struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}
