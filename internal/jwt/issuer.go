// Package jwt implementa el servicio de tokens: emisión y verificación
// de JWTs HS256 en tres variantes (access, refresh, reset), cada una
// firmada con un secreto propio. Un token de una variante nunca valida
// contra otra: el secreto distinto hace fallar la firma.
package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
	KindReset   Kind = "reset"
)

var (
	ErrTokenInvalid = errors.New("token_invalid")
	ErrTokenExpired = errors.New("token_expired")
)

// Claims es el payload firmado. No se persiste: la validez se re-deriva
// de la firma y el exp.
type Claims struct {
	Email    string `json:"email"`
	UserID   string `json:"userId"`
	UserName string `json:"userName,omitempty"`
}

// Issuer firma y verifica tokens. Es función pura de secreto+claims+reloj.
type Issuer struct {
	AccessSecret  []byte
	RefreshSecret []byte
	ResetSecret   []byte

	AccessTTL  time.Duration // default 7d
	RefreshTTL time.Duration // default 7d
	ResetTTL   time.Duration // default 1h

	// now permite inyectar reloj en tests.
	now func() time.Time
}

func NewIssuer(accessSecret, refreshSecret, resetSecret string) *Issuer {
	return &Issuer{
		AccessSecret:  []byte(accessSecret),
		RefreshSecret: []byte(refreshSecret),
		ResetSecret:   []byte(resetSecret),
		AccessTTL:     7 * 24 * time.Hour,
		RefreshTTL:    7 * 24 * time.Hour,
		ResetTTL:      1 * time.Hour,
	}
}

// NewIssuerAt es NewIssuer con reloj inyectado (tests).
func NewIssuerAt(accessSecret, refreshSecret, resetSecret string, now func() time.Time) *Issuer {
	i := NewIssuer(accessSecret, refreshSecret, resetSecret)
	i.now = now
	return i
}

func (i *Issuer) secretFor(kind Kind) ([]byte, time.Duration, error) {
	switch kind {
	case KindAccess:
		return i.AccessSecret, i.AccessTTL, nil
	case KindRefresh:
		return i.RefreshSecret, i.RefreshTTL, nil
	case KindReset:
		return i.ResetSecret, i.ResetTTL, nil
	default:
		return nil, 0, ErrTokenInvalid
	}
}

func (i *Issuer) clock() time.Time {
	if i.now != nil {
		return i.now()
	}
	return time.Now()
}

// Issue firma las claims con el secreto y TTL de la variante pedida.
func (i *Issuer) Issue(kind Kind, c Claims) (string, time.Time, error) {
	secret, ttl, err := i.secretFor(kind)
	if err != nil {
		return "", time.Time{}, err
	}
	now := i.clock().UTC()
	exp := now.Add(ttl)

	mc := jwtv5.MapClaims{
		"email":  c.Email,
		"userId": c.UserID,
		"iat":    now.Unix(),
		"exp":    exp.Unix(),
	}
	if c.UserName != "" {
		mc["userName"] = c.UserName
	}

	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, mc)
	tk.Header["typ"] = "JWT"
	signed, err := tk.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (i *Issuer) IssueAccess(c Claims) (string, time.Time, error)  { return i.Issue(KindAccess, c) }
func (i *Issuer) IssueRefresh(c Claims) (string, time.Time, error) { return i.Issue(KindRefresh, c) }
func (i *Issuer) IssueReset(c Claims) (string, time.Time, error)   { return i.Issue(KindReset, c) }

// Verify valida firma y expiración contra el secreto de la variante.
// Un token firmado con otro secreto (otra variante) falla como
// ErrTokenInvalid; exp vencido como ErrTokenExpired.
func (i *Issuer) Verify(raw string, kind Kind) (Claims, error) {
	secret, _, err := i.secretFor(kind)
	if err != nil {
		return Claims{}, err
	}

	tok, err := jwtv5.Parse(raw,
		func(t *jwtv5.Token) (any, error) { return secret, nil },
		jwtv5.WithValidMethods([]string{"HS256"}),
		jwtv5.WithTimeFunc(i.clock),
	)
	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}
	if !tok.Valid {
		return Claims{}, ErrTokenInvalid
	}

	mc, ok := tok.Claims.(jwtv5.MapClaims)
	if !ok {
		return Claims{}, ErrTokenInvalid
	}
	out := Claims{
		Email:    strClaim(mc, "email"),
		UserID:   strClaim(mc, "userId"),
		UserName: strClaim(mc, "userName"),
	}
	return out, nil
}

func strClaim(m jwtv5.MapClaims, k string) string {
	s, _ := m[k].(string)
	return s
}
