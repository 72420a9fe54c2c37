package core

import "time"

// User es el registro de identidad. PasswordHash vacío sólo para cuentas
// creadas vía login social (google/linkedin).
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	GoogleID     string `json:"google_id,omitempty"`
	LinkedinID   string `json:"linkedin_id,omitempty"`
	Role         string `json:"role"`

	StripeCustomerID string `json:"stripe_customer_id,omitempty"`

	// Datos de cuenta/empresa (mutables vía account/update)
	CompanyName     string `json:"company_name,omitempty"`
	CompanyWebsite  string `json:"company_website,omitempty"`
	JobTitle        string `json:"job_title,omitempty"`
	Industry        string `json:"industry,omitempty"`
	CompanySize     string `json:"company_size,omitempty"`
	Phone           string `json:"phone,omitempty"`
	Location        string `json:"location,omitempty"`
	LinkedinProfile string `json:"linkedin_profile,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserUpdate lista los campos mutables por account/update.
// El email es inmutable por este camino; nil = no tocar.
type UserUpdate struct {
	Name            *string
	CompanyName     *string
	CompanyWebsite  *string
	JobTitle        *string
	Industry        *string
	CompanySize     *string
	Phone           *string
	Location        *string
	LinkedinProfile *string
}
