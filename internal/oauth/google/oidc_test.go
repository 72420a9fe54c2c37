package google

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/dropDatabas3/launchbase/internal/oauth"
)

// fakeProvider simula el lado de Google: discovery, JWKS con una clave
// RSA propia y un token endpoint programable.
type fakeProvider struct {
	key *rsa.PrivateKey
	srv *httptest.Server

	tokenHandler http.HandlerFunc
}

func newFakeProvider(t *testing.T) *fakeProvider {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("rsa.GenerateKey: %v", err)
	}
	fp := &fakeProvider{key: key}

	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"issuer":         "https://accounts.google.com",
			"token_endpoint": fp.srv.URL + "/token",
			"jwks_uri":       fp.srv.URL + "/jwks",
		})
	})
	mux.HandleFunc("/jwks", func(w http.ResponseWriter, r *http.Request) {
		pub := &key.PublicKey
		_ = json.NewEncoder(w).Encode(map[string]any{
			"keys": []map[string]string{{
				"kty": "RSA",
				"kid": "k1",
				"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString([]byte{0x01, 0x00, 0x01}),
			}},
		})
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if fp.tokenHandler != nil {
			fp.tokenHandler(w, r)
			return
		}
		w.WriteHeader(500)
	})

	fp.srv = httptest.NewServer(mux)
	t.Cleanup(fp.srv.Close)
	return fp
}

func (fp *fakeProvider) client() *OIDC {
	c := New("cid", "secret", "https://app.example.com/callback")
	c.DiscoveryURL = fp.srv.URL + "/.well-known/openid-configuration"
	return c
}

// sign emite un id_token RS256 con kid k1. El caller pisa claims según
// el caso que quiera provocar.
func (fp *fakeProvider) sign(t *testing.T, override map[string]any) string {
	t.Helper()
	claims := jwtv5.MapClaims{
		"iss":   "https://accounts.google.com",
		"aud":   "cid",
		"sub":   "g-777",
		"email": "Grace@Example.com",
		"name":  "Grace Hopper",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	for k, v := range override {
		if v == nil {
			delete(claims, k)
			continue
		}
		claims[k] = v
	}
	tok := jwtv5.NewWithClaims(jwtv5.SigningMethodRS256, claims)
	tok.Header["kid"] = "k1"
	signed, err := tok.SignedString(fp.key)
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	return signed
}

func TestVerifyIDToken_OK(t *testing.T) {
	t.Parallel()
	fp := newFakeProvider(t)
	c := fp.client()

	p, err := c.VerifyIDToken(context.Background(), fp.sign(t, nil))
	if err != nil {
		t.Fatalf("VerifyIDToken err: %v", err)
	}
	if p.Email != "grace@example.com" || p.Name != "Grace Hopper" || p.Subject != "g-777" || p.Provider != "google" {
		t.Fatalf("profile inesperado: %+v", p)
	}
}

func TestVerifyIDToken_BadAudience(t *testing.T) {
	t.Parallel()
	fp := newFakeProvider(t)
	c := fp.client()

	_, err := c.VerifyIDToken(context.Background(), fp.sign(t, map[string]any{"aud": "otro-cliente"}))
	if !errors.Is(err, oauth.ErrInvalid) {
		t.Fatalf("got %v, want oauth.ErrInvalid", err)
	}
}

func TestVerifyIDToken_BadIssuer(t *testing.T) {
	t.Parallel()
	fp := newFakeProvider(t)
	c := fp.client()

	_, err := c.VerifyIDToken(context.Background(), fp.sign(t, map[string]any{"iss": "https://evil.example.com"}))
	if !errors.Is(err, oauth.ErrInvalid) {
		t.Fatalf("got %v, want oauth.ErrInvalid", err)
	}
}

func TestVerifyIDToken_MissingEmail(t *testing.T) {
	t.Parallel()
	fp := newFakeProvider(t)
	c := fp.client()

	_, err := c.VerifyIDToken(context.Background(), fp.sign(t, map[string]any{"email": nil}))
	if !errors.Is(err, oauth.ErrInvalid) {
		t.Fatalf("got %v, want oauth.ErrInvalid", err)
	}
}

func TestVerifyIDToken_Garbage(t *testing.T) {
	t.Parallel()
	fp := newFakeProvider(t)
	c := fp.client()

	_, err := c.VerifyIDToken(context.Background(), "no-es-un-jwt")
	if !errors.Is(err, oauth.ErrInvalid) {
		t.Fatalf("got %v, want oauth.ErrInvalid", err)
	}
}

func TestExchangeCode_OK(t *testing.T) {
	t.Parallel()
	fp := newFakeProvider(t)
	c := fp.client()

	fp.tokenHandler = func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(400)
			return
		}
		if r.PostForm.Get("grant_type") != "authorization_code" ||
			r.PostForm.Get("code") != "code-abc" ||
			r.PostForm.Get("client_id") != "cid" ||
			r.PostForm.Get("redirect_uri") != "https://app.example.com/callback" {
			w.WriteHeader(400)
			return
		}
		fmt.Fprintf(w, `{"access_token":"at","id_token":%q,"expires_in":3600,"token_type":"Bearer"}`,
			fp.sign(t, nil))
	}

	p, err := c.ExchangeCode(context.Background(), "code-abc")
	if err != nil {
		t.Fatalf("ExchangeCode err: %v", err)
	}
	if p.Email != "grace@example.com" || p.Subject != "g-777" {
		t.Fatalf("profile inesperado: %+v", p)
	}
}

func TestExchangeCode_Rejected(t *testing.T) {
	t.Parallel()
	fp := newFakeProvider(t)
	c := fp.client()

	fp.tokenHandler = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(400)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"code expired"}`))
	}

	_, err := c.ExchangeCode(context.Background(), "code-viejo")
	if !errors.Is(err, oauth.ErrInvalid) {
		t.Fatalf("got %v, want oauth.ErrInvalid", err)
	}
}
