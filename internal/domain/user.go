package domain

import "context"

// User holds the fields this subsystem reads for display and receipts.
// Account management is owned elsewhere.
type User struct {
	ID        int
	FirstName string
	LastName  string
	Email     string
}

type UserRepository interface {
	GetByID(ctx context.Context, id int) (*User, error)
}
