package model

// User represents an application user record as stored in the
// `users` table.  Username and email are unique.  The password is
// stored only as a bcrypt hash.  IsAdmin gates the management
// endpoints; it is set directly in the database and never exposed
// through the API for modification.
//
// Fields:
//  ID             – primary key identifier of the user.
//  Username       – unique login name.
//  Email          – unique email address.
//  HashedPassword – bcrypt hashed password.
//  IsAdmin        – whether the user may call admin endpoints.
type User struct {
	ID             uint64 // users.id
	Username       string // users.username
	Email          string // users.email
	HashedPassword string // users.hashed_password
	IsAdmin        bool   // users.is_admin
}
