package user

import (
	"context"
)

// Repository defines the contract for user storage.
//
// Delete must release every book the user holds in the same atomic step as
// removing the account.
type Repository interface {
	CreateUser(ctx context.Context, u *User) error
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByID(ctx context.Context, id string) (User, error)
	DeleteUser(ctx context.Context, id string) error
}
