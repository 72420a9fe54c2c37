package core

import "context"

// UserRepository define el acceso a persistencia de usuarios.
// Las implementaciones deben mapear violaciones de unicidad de email
// a ErrConflict y ausencia de filas a ErrNotFound.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Update aplica sólo los campos no-nil y devuelve el registro actualizado.
	Update(ctx context.Context, id string, upd UserUpdate) (*User, error)

	UpdatePasswordHash(ctx context.Context, id string, phc string) error
	SetStripeCustomerID(ctx context.Context, id string, customerID string) error
}
