package pg

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/launchbase/internal/store/core"
)

const userColumns = `
	id, name, email,
	COALESCE(password_hash, ''), COALESCE(google_id, ''), COALESCE(linkedin_id, ''),
	role, COALESCE(stripe_customer_id, ''),
	COALESCE(company_name, ''), COALESCE(company_website, ''), COALESCE(job_title, ''),
	COALESCE(industry, ''), COALESCE(company_size, ''), COALESCE(phone, ''),
	COALESCE(location, ''), COALESCE(linkedin_profile, ''),
	created_at, updated_at`

func scanUser(row pgx.Row) (*core.User, error) {
	var u core.User
	err := row.Scan(
		&u.ID, &u.Name, &u.Email,
		&u.PasswordHash, &u.GoogleID, &u.LinkedinID,
		&u.Role, &u.StripeCustomerID,
		&u.CompanyName, &u.CompanyWebsite, &u.JobTitle,
		&u.Industry, &u.CompanySize, &u.Phone,
		&u.Location, &u.LinkedinProfile,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create persiste el usuario. Email duplicado -> core.ErrConflict.
// Genera id (uuid v4), normaliza el email y setea role por defecto.
func (s *Store) Create(ctx context.Context, u *core.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = "user"
	}
	u.Email = strings.TrimSpace(strings.ToLower(u.Email))

	now := time.Now().UTC()
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (id, name, email, password_hash, google_id, linkedin_id, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING created_at, updated_at`,
		u.ID, u.Name, u.Email, nullIfEmpty(u.PasswordHash),
		nullIfEmpty(u.GoogleID), nullIfEmpty(u.LinkedinID), u.Role, now,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return core.ErrConflict
		}
		return err
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*core.User, error) {
	return scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*core.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	return scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// Update aplica los campos no-nil del allow-list y devuelve el registro fresco.
func (s *Store) Update(ctx context.Context, id string, upd core.UserUpdate) (*core.User, error) {
	cols := []string{}
	args := []any{}
	add := func(col string, v *string) {
		if v == nil {
			return
		}
		args = append(args, *v)
		cols = append(cols, col)
	}
	add("name", upd.Name)
	add("company_name", upd.CompanyName)
	add("company_website", upd.CompanyWebsite)
	add("job_title", upd.JobTitle)
	add("industry", upd.Industry)
	add("company_size", upd.CompanySize)
	add("phone", upd.Phone)
	add("location", upd.Location)
	add("linkedin_profile", upd.LinkedinProfile)

	if len(cols) == 0 {
		return s.GetByID(ctx, id)
	}

	var sb strings.Builder
	sb.WriteString("UPDATE users SET ")
	for i, c := range cols {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(c)
		sb.WriteString(" = $")
		sb.WriteString(strconv.Itoa(i + 1))
	}
	sb.WriteString(", updated_at = now() WHERE id = $")
	sb.WriteString(strconv.Itoa(len(cols) + 1))
	args = append(args, id)

	tag, err := s.pool.Exec(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, core.ErrNotFound
	}
	return s.GetByID(ctx, id)
}

func (s *Store) UpdatePasswordHash(ctx context.Context, id string, phc string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`, phc, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *Store) SetStripeCustomerID(ctx context.Context, id string, customerID string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET stripe_customer_id = $1, updated_at = now() WHERE id = $2`, customerID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}
