package models

import (
	"strings"

	"github.com/SkylarKelty/Rapid/pkg/fieldtypes"
	base "github.com/SkylarKelty/Rapid/pkg/models"
)

// GuestUsername is the username of the anonymous user
const GuestUsername = "guest"

// UserSchema backs the "users" table. The password hash never leaves the
// process through the public projection.
var UserSchema = base.NewSchema("User", "users").
	Field("id", fieldtypes.Int, base.Locked()).
	Field("username", fieldtypes.String, base.WithLength(64)).
	Field("firstname", fieldtypes.String, base.WithLength(100)).
	Field("lastname", fieldtypes.String, base.WithLength(100)).
	Field("email", fieldtypes.String, base.WithLength(255)).
	Field("password", fieldtypes.String, base.Hidden()).
	Field("created", fieldtypes.Timestamp)

// User is an account record
type User struct {
	*base.Record
}

// NewUser returns an empty User
func NewUser() *User {
	return &User{Record: base.NewRecord(UserSchema)}
}

// NewGuest returns the anonymous user: id 0, username "guest"
func NewGuest() *User {
	u := NewUser()
	_ = u.Hydrate(map[string]interface{}{
		"id":        int64(0),
		"username":  GuestUsername,
		"firstname": "Guest",
		"lastname":  "User",
		"email":     "",
	}, true)
	return u
}

func (u *User) ID() int64         { return u.IntValue("id") }
func (u *User) Username() string  { return u.StringValue("username") }
func (u *User) Email() string     { return u.StringValue("email") }
func (u *User) Firstname() string { return u.StringValue("firstname") }
func (u *User) Lastname() string  { return u.StringValue("lastname") }

// FullName joins first and last name
func (u *User) FullName() string {
	return strings.TrimSpace(u.Firstname() + " " + u.Lastname())
}

// LoggedIn reports whether this is a real account rather than the guest
func (u *User) LoggedIn() bool {
	return u.Username() != GuestUsername
}
