package auth

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/launchbase/internal/email"
	"github.com/dropDatabas3/launchbase/internal/jwt"
	"github.com/dropDatabas3/launchbase/internal/oauth"
	"github.com/dropDatabas3/launchbase/internal/security/password"
	"github.com/dropDatabas3/launchbase/internal/store/core"
)

// --- fakes ---

type memRepo struct {
	mu      sync.Mutex
	byID    map[string]*core.User
	byEmail map[string]string
}

func newMemRepo() *memRepo {
	return &memRepo{byID: map[string]*core.User{}, byEmail: map[string]string{}}
}

func (r *memRepo) Create(_ context.Context, u *core.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	em := strings.ToLower(u.Email)
	if _, ok := r.byEmail[em]; ok {
		return core.ErrConflict
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = "user"
	}
	u.Email = em
	cp := *u
	r.byID[u.ID] = &cp
	r.byEmail[em] = u.ID
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*core.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memRepo) GetByEmail(_ context.Context, em string) (*core.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byEmail[strings.ToLower(em)]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *r.byID[id]
	return &cp, nil
}

func (r *memRepo) Update(_ context.Context, id string, in core.UserUpdate) (*core.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&u.Name, in.Name)
	set(&u.CompanyName, in.CompanyName)
	set(&u.CompanyWebsite, in.CompanyWebsite)
	set(&u.JobTitle, in.JobTitle)
	set(&u.Industry, in.Industry)
	set(&u.CompanySize, in.CompanySize)
	set(&u.Phone, in.Phone)
	set(&u.Location, in.Location)
	set(&u.LinkedinProfile, in.LinkedinProfile)
	u.UpdatedAt = time.Now()
	cp := *u
	return &cp, nil
}

func (r *memRepo) UpdatePasswordHash(_ context.Context, id, phc string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return core.ErrNotFound
	}
	u.PasswordHash = phc
	return nil
}

func (r *memRepo) SetStripeCustomerID(_ context.Context, id, customerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return core.ErrNotFound
	}
	u.StripeCustomerID = customerID
	return nil
}

type memMailer struct {
	mu   sync.Mutex
	sent []struct{ To, Subject, HTML, Text string }
}

func (m *memMailer) Send(to, subject, html, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, struct{ To, Subject, HTML, Text string }{to, subject, html, text})
	return nil
}

type fakeGoogle struct{ p *oauth.Profile }

func (f *fakeGoogle) VerifyIDToken(context.Context, string) (*oauth.Profile, error) {
	if f.p == nil {
		return nil, oauth.ErrInvalid
	}
	return f.p, nil
}
func (f *fakeGoogle) ExchangeCode(ctx context.Context, _ string) (*oauth.Profile, error) {
	return f.VerifyIDToken(ctx, "")
}

type fakeLinkedin struct{ p *oauth.Profile }

func (f *fakeLinkedin) FetchProfile(context.Context, string) (*oauth.Profile, error) {
	if f.p == nil {
		return nil, oauth.ErrInvalid
	}
	return f.p, nil
}
func (f *fakeLinkedin) ExchangeCode(ctx context.Context, _ string) (*oauth.Profile, error) {
	return f.FetchProfile(ctx, "")
}

func testTemplates(t *testing.T) *email.Templates {
	t.Helper()
	tpl, err := email.LoadTemplates("../../templates/emails")
	require.NoError(t, err)
	return tpl
}

func newTestService(t *testing.T) (*Service, *memRepo, *memMailer) {
	t.Helper()
	repo := newMemRepo()
	mailer := &memMailer{}
	svc := NewService(
		repo,
		jwt.NewIssuer("access-secret", "refresh-secret", "reset-secret"),
		&fakeGoogle{},
		&fakeLinkedin{},
		mailer,
		testTemplates(t),
		"https://app.example.com/",
	)
	svc.hashParams = password.Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, KeyLen: 32}
	return svc, repo, mailer
}

// --- tests ---

func TestRegisterAndLogin(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	sess, err := svc.Register(ctx, "Ada", "Ada@Example.com", "Sup3r$ecret")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.NotEmpty(t, sess.RefreshToken)
	assert.Equal(t, "ada@example.com", sess.Claims.Email)
	assert.Equal(t, "Ada", sess.Claims.UserName)
	assert.NotEmpty(t, sess.Claims.UserID)

	// email duplicado -> conflicto, sin importar mayúsculas
	_, err = svc.Register(ctx, "Otra", "ada@example.com", "0tr0$ecret")
	assert.ErrorIs(t, err, ErrEmailTaken)

	login, err := svc.Login(ctx, "ada@example.com", "Sup3r$ecret")
	require.NoError(t, err)
	assert.Equal(t, sess.Claims.UserID, login.Claims.UserID)

	_, err = svc.Login(ctx, "ada@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Login(ctx, "nobody@example.com", "whatever1A$")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRefreshKeepsOriginalAccessClaims(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	sess, err := svc.Register(ctx, "Ada", "ada@example.com", "Sup3r$ecret")
	require.NoError(t, err)

	// rename posterior al login
	newName := "Ada Lovelace"
	_, err = repo.Update(ctx, sess.Claims.UserID, core.UserUpdate{Name: &newName})
	require.NoError(t, err)

	out, err := svc.Refresh(ctx, sess.RefreshToken)
	require.NoError(t, err)

	// el access nuevo conserva las claims con las que se emitió el refresh
	ac, err := jwt.NewIssuer("access-secret", "refresh-secret", "reset-secret").
		Verify(out.Token, jwt.KindAccess)
	require.NoError(t, err)
	assert.Equal(t, "Ada", ac.UserName)

	// el refresh nuevo sale del registro fresco
	rc, err := jwt.NewIssuer("access-secret", "refresh-secret", "reset-secret").
		Verify(out.RefreshToken, jwt.KindRefresh)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", rc.UserName)

	assert.Equal(t, "Ada Lovelace", out.User.Name)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	sess, err := svc.Register(ctx, "Ada", "ada@example.com", "Sup3r$ecret")
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestVerifyToken(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	sess, err := svc.Register(ctx, "Ada", "ada@example.com", "Sup3r$ecret")
	require.NoError(t, err)

	claims, err := svc.VerifyToken(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.Claims.UserID, claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)

	// un refresh no pasa como access
	_, err = svc.VerifyToken(ctx, sess.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.VerifyToken(ctx, "garbage")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestFederatedLoginCreatesOnce(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	g := &fakeGoogle{p: &oauth.Profile{
		Email: "grace@example.com", Name: "Grace", Subject: "google-sub-1", Provider: "google",
	}}
	svc.google = g

	first, err := svc.GoogleLogin(ctx, "id-token")
	require.NoError(t, err)
	assert.Equal(t, "grace@example.com", first.User.Email)
	assert.Equal(t, "google-sub-1", first.User.GoogleID)
	assert.Empty(t, first.User.PasswordHash)

	second, err := svc.GoogleLogin(ctx, "id-token")
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, second.User.ID)

	// el payload social no lleva userName
	claims, err := jwt.NewIssuer("access-secret", "refresh-secret", "reset-secret").
		Verify(first.Token, jwt.KindAccess)
	require.NoError(t, err)
	assert.Empty(t, claims.UserName)
	assert.Equal(t, first.User.ID, claims.UserID)

	// y la cuenta con password previa se reutiliza tal cual
	_, err = svc.Register(ctx, "Linus", "linus@example.com", "Sup3r$ecret")
	require.NoError(t, err)
	g.p = &oauth.Profile{Email: "linus@example.com", Name: "Linus", Subject: "google-sub-2", Provider: "google"}
	out, err := svc.GoogleLogin(ctx, "id-token")
	require.NoError(t, err)
	stored, err := repo.GetByEmail(ctx, "linus@example.com")
	require.NoError(t, err)
	assert.Equal(t, stored.ID, out.User.ID)
	assert.NotEmpty(t, stored.PasswordHash)
}

func TestLinkedinLoginStoresProviderID(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	svc.linkedin = &fakeLinkedin{p: &oauth.Profile{
		Email: "lin@example.com", Name: "Lin", Subject: "li-sub-9", Provider: "linkedin",
	}}

	out, err := svc.LinkedinLogin(ctx, "access-token")
	require.NoError(t, err)
	assert.Equal(t, "li-sub-9", out.User.LinkedinID)
	assert.Empty(t, out.User.GoogleID)
}

func TestFederatedLoginInvalidAssertion(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.GoogleLogin(context.Background(), "bad")
	assert.ErrorIs(t, err, oauth.ErrInvalid)
}

func TestForgotPasswordGenericMessage(t *testing.T) {
	svc, _, mailer := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ada", "ada@example.com", "Sup3r$ecret")
	require.NoError(t, err)

	known, err := svc.ForgotPassword(ctx, "ada@example.com")
	require.NoError(t, err)
	unknown, err := svc.ForgotPassword(ctx, "nobody@example.com")
	require.NoError(t, err)

	// respuesta idéntica byte a byte exista o no la cuenta
	assert.Equal(t, known, unknown)
	assert.Equal(t, ForgotMessage, known)

	// sólo la cuenta real recibe mail, con el link de reset
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "ada@example.com", mailer.sent[0].To)
	assert.Contains(t, mailer.sent[0].HTML, "/reset-password?token=")
}

func TestResetPassword(t *testing.T) {
	svc, repo, mailer := newTestService(t)
	ctx := context.Background()

	sess, err := svc.Register(ctx, "Ada", "ada@example.com", "Sup3r$ecret")
	require.NoError(t, err)
	before, err := repo.GetByID(ctx, sess.Claims.UserID)
	require.NoError(t, err)

	_, err = svc.ForgotPassword(ctx, "ada@example.com")
	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)

	issuer := jwt.NewIssuer("access-secret", "refresh-secret", "reset-secret")
	reset, _, err := issuer.IssueReset(jwt.Claims{Email: "ada@example.com", UserID: sess.Claims.UserID})
	require.NoError(t, err)

	msg, err := svc.ResetPassword(ctx, reset, "N3w$ecret!!")
	require.NoError(t, err)
	assert.Equal(t, "Password has been reset successfully", msg)

	_, err = svc.Login(ctx, "ada@example.com", "N3w$ecret!!")
	require.NoError(t, err)
	_, err = svc.Login(ctx, "ada@example.com", "Sup3r$ecret")
	assert.ErrorIs(t, err, ErrUnauthorized)

	after, err := repo.GetByID(ctx, sess.Claims.UserID)
	require.NoError(t, err)
	assert.NotEqual(t, before.PasswordHash, after.PasswordHash)
}

func TestResetPasswordRejectsWrongKindAndExpired(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	sess, err := svc.Register(ctx, "Ada", "ada@example.com", "Sup3r$ecret")
	require.NoError(t, err)
	before, err := repo.GetByID(ctx, sess.Claims.UserID)
	require.NoError(t, err)

	// un access token no sirve como reset
	_, err = svc.ResetPassword(ctx, sess.Token, "N3w$ecret!!")
	assert.ErrorIs(t, err, ErrUnauthorized)

	// token reset vencido
	old := jwt.NewIssuerAt("access-secret", "refresh-secret", "reset-secret",
		func() time.Time { return time.Now().Add(-2 * time.Hour) })
	expired, _, err := old.IssueReset(jwt.Claims{Email: "ada@example.com", UserID: sess.Claims.UserID})
	require.NoError(t, err)
	_, err = svc.ResetPassword(ctx, expired, "N3w$ecret!!")
	assert.ErrorIs(t, err, ErrUnauthorized)

	// el hash quedó intacto
	after, err := repo.GetByID(ctx, sess.Claims.UserID)
	require.NoError(t, err)
	assert.Equal(t, before.PasswordHash, after.PasswordHash)
}

func TestAccountDetailsAndUpdate(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ada", "ada@example.com", "Sup3r$ecret")
	require.NoError(t, err)

	u, err := svc.AccountDetails(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.Name)

	_, err = svc.AccountDetails(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrUnauthorized)

	contact := "Ada Lovelace"
	company := "Analytical Engines Ltd"
	msg, updated, err := svc.UpdateAccount(ctx, UpdateAccountInput{
		Email:          "ada@example.com",
		PrimaryContact: &contact,
		CompanyName:    &company,
	})
	require.NoError(t, err)
	assert.Equal(t, "Account details updated successfully", msg)
	assert.Equal(t, "Ada Lovelace", updated.Name)
	assert.Equal(t, "Analytical Engines Ltd", updated.CompanyName)
	// el email nunca cambia por esta vía
	assert.Equal(t, "ada@example.com", updated.Email)
}
