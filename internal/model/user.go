package model

import "fmt"

// UserType distinguishes students from administrators.
type UserType string

const (
	UserTypeStudent UserType = "STUDENT"
	UserTypeAdmin   UserType = "ADMIN"
)

// Valid reports whether t is a known user type.
func (t UserType) Valid() bool {
	return t == UserTypeStudent || t == UserTypeAdmin
}

// User is an account that can own tickets, teach courses and submit answers.
type User struct {
	ID       UserID   `json:"id"`
	Name     string   `json:"name"`
	Password string   `json:"password"`
	Type     UserType `json:"type"`
}

// NewUser creates a user. An empty id is replaced by a fresh one. The name
// is NFC normalized; id and password are kept as given.
func NewUser(id UserID, name, password string, typ UserType) (User, error) {
	u := User{
		ID:       UserID(newIDValue(string(id))),
		Name:     normalizeText(name),
		Password: password,
		Type:     typ,
	}
	if err := u.Validate(); err != nil {
		return User{}, err
	}
	return u, nil
}

func (u User) EntityID() ID { return u.ID }

// Validate checks the record invariants.
func (u User) Validate() error {
	if err := requireID(u.ID); err != nil {
		return err
	}
	if err := requireName(KindUser, u.Name); err != nil {
		return err
	}
	if !u.Type.Valid() {
		return fmt.Errorf("%w: user %s has type %q", ErrInvalidRecord, u.ID, u.Type)
	}
	return nil
}
