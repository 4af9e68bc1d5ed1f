package domain

// User is a Square account as returned by the users endpoints. Also used for
// task assignees and the authenticated profile.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
