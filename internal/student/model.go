package student

import (
	"time"

	"github.com/uptrace/bun"
)

type Student struct {
	bun.BaseModel `bun:"table:students,alias:s"`

	ID         int       `bun:"id,pk,autoincrement" json:"id"`
	Name       string    `bun:"name,notnull" json:"name"`
	Email      string    `bun:"email,unique,notnull" json:"email"`
	Department string    `bun:"department,notnull" json:"department"`
	CreatedAt  time.Time `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt  time.Time `bun:"updated_at,notnull" json:"updatedAt"`
}

// Input is the write-request shape: timestamps and id are never client-supplied.
type Input struct {
	Name       string `json:"name" validate:"required,max=100"`
	Email      string `json:"email" validate:"required,email,max=100"`
	Department string `json:"department" validate:"required,max=50"`
}

// Event is published to the message broker after a successful mutation.
type Event struct {
	Type    string   `json:"type"`
	Student *Student `json:"student,omitempty"`
	ID      int      `json:"id,omitempty"`
}

const (
	EventCreated = "student.created"
	EventUpdated = "student.updated"
	EventDeleted = "student.deleted"
)
