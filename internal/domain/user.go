package domain

// User is the domain model for account holders. The password field carries
// the bcrypt hash, never plaintext, and matches the stored file format.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	PasswordHash string `json:"password"`
}

// PublicUser is the subset of a user record safe to expose to clients.
type PublicUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Public strips the password hash from a user record.
func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email, Name: u.Name}
}
