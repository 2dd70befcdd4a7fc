package user

import (
	"time"

	"github.com/google/uuid"
)

// User is an operator account. Its only purpose here is backing the access
// gate: a token subject must resolve to one of these rows.
type User struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Email          string    `db:"email" json:"email"`
	FullName       string    `db:"full_name" json:"full_name"`
	HashedPassword string    `db:"hashed_password" json:"-"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
