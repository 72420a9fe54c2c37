// Package auth implementa el orquestador de autenticación: coordina el
// repositorio de usuarios, el issuer de tokens, los adapters de
// federación y el gateway de mail para los flujos de registro, login,
// refresh, verify, social y reset de contraseña.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/dropDatabas3/launchbase/internal/email"
	"github.com/dropDatabas3/launchbase/internal/jwt"
	"github.com/dropDatabas3/launchbase/internal/oauth"
	"github.com/dropDatabas3/launchbase/internal/observability/logger"
	"github.com/dropDatabas3/launchbase/internal/security/password"
	"github.com/dropDatabas3/launchbase/internal/store/core"
)

// Mensajes de respuesta estables (contrato con el frontend).
const (
	// ForgotMessage es idéntico exista o no la cuenta (anti-enumeración).
	ForgotMessage  = "If that email exists, a password reset link has been sent."
	resetMessage   = "Password has been reset successfully"
	updatedMessage = "Account details updated successfully"
)

// GoogleVerifier es el contrato del adapter de Google.
type GoogleVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*oauth.Profile, error)
	ExchangeCode(ctx context.Context, code string) (*oauth.Profile, error)
}

// LinkedinVerifier es el contrato del adapter de LinkedIn.
type LinkedinVerifier interface {
	FetchProfile(ctx context.Context, accessToken string) (*oauth.Profile, error)
	ExchangeCode(ctx context.Context, code string) (*oauth.Profile, error)
}

// Session es el resultado de register/login: tokens + claims públicas
// (nunca el hash).
type Session struct {
	Token        string
	RefreshToken string
	Claims       jwt.Claims
}

// UserSession agrega el registro completo del usuario (refresh y social).
type UserSession struct {
	Token        string
	RefreshToken string
	User         *core.User
}

type Service struct {
	users    core.UserRepository
	issuer   *jwt.Issuer
	google   GoogleVerifier
	linkedin LinkedinVerifier
	mailer   email.Sender
	tmpl     *email.Templates

	frontendURL string
	hashParams  password.Params
}

func NewService(
	users core.UserRepository,
	issuer *jwt.Issuer,
	google GoogleVerifier,
	linkedin LinkedinVerifier,
	mailer email.Sender,
	tmpl *email.Templates,
	frontendURL string,
) *Service {
	return &Service{
		users:       users,
		issuer:      issuer,
		google:      google,
		linkedin:    linkedin,
		mailer:      mailer,
		tmpl:        tmpl,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		hashParams:  password.Default,
	}
}

func claimsFor(u *core.User) jwt.Claims {
	return jwt.Claims{Email: u.Email, UserID: u.ID, UserName: u.Name}
}

func (s *Service) issuePair(c jwt.Claims) (token, refresh string, err error) {
	token, _, err = s.issuer.IssueAccess(c)
	if err != nil {
		return "", "", fmt.Errorf("issue access: %w", err)
	}
	refresh, _, err = s.issuer.IssueRefresh(c)
	if err != nil {
		return "", "", fmt.Errorf("issue refresh: %w", err)
	}
	return token, refresh, nil
}

// Register crea la cuenta con hash argon2id y emite access+refresh.
// Email duplicado -> ErrEmailTaken; no queda registro a medias.
func (s *Service) Register(ctx context.Context, name, emailAddr, plain string) (*Session, error) {
	phc, err := password.Hash(s.hashParams, plain)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &core.User{
		Name:         name,
		Email:        strings.TrimSpace(strings.ToLower(emailAddr)),
		PasswordHash: phc,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, core.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	c := claimsFor(u)
	token, refresh, err := s.issuePair(c)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, RefreshToken: refresh, Claims: c}, nil
}

// Login valida credenciales contra el hash almacenado (comparación en
// tiempo constante vía argon2id). Cuenta inexistente, sin password
// (creada por social) o hash que no matchea -> ErrUnauthorized.
func (s *Service) Login(ctx context.Context, emailAddr, plain string) (*Session, error) {
	u, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if u.PasswordHash == "" || !password.Verify(plain, u.PasswordHash) {
		return nil, ErrUnauthorized
	}

	c := claimsFor(u)
	token, refresh, err := s.issuePair(c)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, RefreshToken: refresh, Claims: c}, nil
}

// Refresh verifica el refresh token y re-emite el par. El access nuevo
// se firma con las claims ORIGINALES del refresh presentado (un rename
// posterior no se refleja hasta el próximo login); el refresh nuevo sí
// sale del registro fresco. Comportamiento heredado, no cambiarlo sin
// versionar el contrato.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*UserSession, error) {
	claims, err := s.issuer.Verify(refreshToken, jwt.KindRefresh)
	if err != nil {
		return nil, ErrUnauthorized
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	token, _, err := s.issuer.IssueAccess(claims)
	if err != nil {
		return nil, fmt.Errorf("issue access: %w", err)
	}
	refresh, _, err := s.issuer.IssueRefresh(claimsFor(u))
	if err != nil {
		return nil, fmt.Errorf("issue refresh: %w", err)
	}
	return &UserSession{Token: token, RefreshToken: refresh, User: u}, nil
}

// VerifyToken valida un access token y devuelve las claims canónicas
// re-derivadas del registro actual.
func (s *Service) VerifyToken(ctx context.Context, token string) (jwt.Claims, error) {
	claims, err := s.issuer.Verify(token, jwt.KindAccess)
	if err != nil {
		return jwt.Claims{}, ErrUnauthorized
	}
	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return jwt.Claims{}, ErrUnauthorized
		}
		return jwt.Claims{}, fmt.Errorf("lookup user: %w", err)
	}
	return claimsFor(u), nil
}

// --- Login federado ---

func (s *Service) GoogleLogin(ctx context.Context, idToken string) (*UserSession, error) {
	p, err := s.google.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}
	return s.federatedLogin(ctx, p)
}

func (s *Service) GoogleCallback(ctx context.Context, code string) (*UserSession, error) {
	p, err := s.google.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.federatedLogin(ctx, p)
}

func (s *Service) LinkedinLogin(ctx context.Context, accessToken string) (*UserSession, error) {
	p, err := s.linkedin.FetchProfile(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return s.federatedLogin(ctx, p)
}

func (s *Service) LinkedinCallback(ctx context.Context, code string) (*UserSession, error) {
	p, err := s.linkedin.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.federatedLogin(ctx, p)
}

// federatedLogin hace find-or-create por email. Un ErrConflict en el
// create significa que otra request con el mismo email ganó la carrera:
// re-fetch y seguimos, no se falla el flujo.
func (s *Service) federatedLogin(ctx context.Context, p *oauth.Profile) (*UserSession, error) {
	u, err := s.users.GetByEmail(ctx, p.Email)
	switch {
	case err == nil:
		// cuenta existente, seguimos con ella
	case errors.Is(err, core.ErrNotFound):
		nu := &core.User{Name: p.Name, Email: p.Email}
		switch p.Provider {
		case "linkedin":
			nu.LinkedinID = p.Subject
		default:
			nu.GoogleID = p.Subject
		}
		if cerr := s.users.Create(ctx, nu); cerr != nil {
			if !errors.Is(cerr, core.ErrConflict) {
				return nil, fmt.Errorf("create user: %w", cerr)
			}
			// carrera perdida: alguien la creó primero
			nu, cerr = s.users.GetByEmail(ctx, p.Email)
			if cerr != nil {
				return nil, fmt.Errorf("refetch user: %w", cerr)
			}
		}
		u = nu
	default:
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	// Payload social: email + id solamente.
	c := jwt.Claims{Email: u.Email, UserID: u.ID}
	token, refresh, err := s.issuePair(c)
	if err != nil {
		return nil, err
	}
	return &UserSession{Token: token, RefreshToken: refresh, User: u}, nil
}

// --- Reset de contraseña ---

// ForgotPassword devuelve siempre el mismo mensaje genérico. Si la
// cuenta existe, emite un token reset (1h) y despacha el mail con el
// link; errores de template/SMTP sí se propagan (500 en el borde).
func (s *Service) ForgotPassword(ctx context.Context, emailAddr string) (string, error) {
	u, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return ForgotMessage, nil
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}

	resetToken, _, err := s.issuer.IssueReset(jwt.Claims{Email: u.Email, UserID: u.ID})
	if err != nil {
		return "", fmt.Errorf("issue reset: %w", err)
	}
	link := s.frontendURL + "/reset-password?token=" + url.QueryEscape(resetToken)

	html, txt, err := s.tmpl.RenderForgot(email.ForgotVars{
		Name:      u.Name,
		ResetLink: link,
		TTL:       "1 hour",
	})
	if err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	if err := s.mailer.Send(u.Email, "Password Reset", html, txt); err != nil {
		return "", fmt.Errorf("send mail: %w", err)
	}

	logger.From(ctx).Info("reset mail dispatched", logger.UserID(u.ID))
	return ForgotMessage, nil
}

// ResetPassword verifica el token reset y aplica el hash nuevo. Falla
// antes de mutar: token inválido/vencido o cuenta ausente no tocan el
// hash almacenado.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) (string, error) {
	claims, err := s.issuer.Verify(token, jwt.KindReset)
	if err != nil {
		return "", ErrUnauthorized
	}
	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return "", ErrUnauthorized
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}

	phc, err := password.Hash(s.hashParams, newPassword)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePasswordHash(ctx, u.ID, phc); err != nil {
		return "", fmt.Errorf("update password: %w", err)
	}
	return resetMessage, nil
}

// --- Cuenta ---

// AccountDetails devuelve el registro por email (ruta protegida por
// guard upstream).
func (s *Service) AccountDetails(ctx context.Context, emailAddr string) (*core.User, error) {
	u, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return u, nil
}

// UpdateAccountInput es el allow-list de campos mutables. El email sólo
// identifica la cuenta, nunca se actualiza por acá. PrimaryContact pisa
// el campo name.
type UpdateAccountInput struct {
	Email          string
	PrimaryContact *string
	CompanyName    *string
	CompanyWebsite *string
	JobTitle       *string
	Industry       *string
	CompanySize    *string
	Phone          *string
	Location       *string
	LinkedIn       *string
}

func (s *Service) UpdateAccount(ctx context.Context, in UpdateAccountInput) (string, *core.User, error) {
	u, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return "", nil, ErrUnauthorized
		}
		return "", nil, fmt.Errorf("lookup user: %w", err)
	}

	updated, err := s.users.Update(ctx, u.ID, core.UserUpdate{
		Name:            in.PrimaryContact,
		CompanyName:     in.CompanyName,
		CompanyWebsite:  in.CompanyWebsite,
		JobTitle:        in.JobTitle,
		Industry:        in.Industry,
		CompanySize:     in.CompanySize,
		Phone:           in.Phone,
		Location:        in.Location,
		LinkedinProfile: in.LinkedIn,
	})
	if err != nil {
		return "", nil, fmt.Errorf("update user: %w", err)
	}
	return updatedMessage, updated, nil
}
