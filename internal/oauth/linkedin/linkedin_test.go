package linkedin

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dropDatabas3/launchbase/internal/oauth"
)

func newTestClient(api, auth string) *Client {
	c := New("cid", "secret", "https://app.example.com/callback")
	c.APIBase = api
	c.AuthBase = auth
	return c
}

func TestFetchProfile_OK(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-123" {
			w.WriteHeader(401)
			return
		}
		switch r.URL.Path {
		case "/v2/me":
			_, _ = w.Write([]byte(`{"id":"li-9","localizedFirstName":"Ada","localizedLastName":"Lovelace"}`))
		case "/v2/emailAddress":
			_, _ = w.Write([]byte(`{"elements":[{"handle~":{"emailAddress":"Ada@X.com"}}]}`))
		default:
			w.WriteHeader(404)
		}
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, srv.URL)
	p, err := c.FetchProfile(context.Background(), "tok-123")
	if err != nil {
		t.Fatalf("FetchProfile err: %v", err)
	}
	if p.Email != "ada@x.com" || p.Name != "Ada Lovelace" || p.Subject != "li-9" || p.Provider != "linkedin" {
		t.Fatalf("profile inesperado: %+v", p)
	}
}

func TestFetchProfile_BadToken(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(401)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, srv.URL)
	_, err := c.FetchProfile(context.Background(), "bad")
	if !errors.Is(err, oauth.ErrInvalid) {
		t.Fatalf("got %v, want oauth.ErrInvalid", err)
	}
}

func TestFetchProfile_MissingEmail(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/me":
			_, _ = w.Write([]byte(`{"id":"li-9","localizedFirstName":"A","localizedLastName":"B"}`))
		case "/v2/emailAddress":
			_, _ = w.Write([]byte(`{"elements":[]}`))
		}
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, srv.URL)
	_, err := c.FetchProfile(context.Background(), "tok")
	if !errors.Is(err, oauth.ErrInvalid) {
		t.Fatalf("got %v, want oauth.ErrInvalid", err)
	}
}

func TestExchangeCode_OK(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/v2/accessToken":
			if r.Method != http.MethodPost {
				w.WriteHeader(405)
				return
			}
			if err := r.ParseForm(); err != nil || r.Form.Get("code") != "the-code" || r.Form.Get("grant_type") != "authorization_code" {
				w.WriteHeader(400)
				return
			}
			_, _ = w.Write([]byte(`{"access_token":"tok-xyz","expires_in":3600}`))
		case "/v2/me":
			_, _ = w.Write([]byte(`{"id":"li-1","localizedFirstName":"Grace","localizedLastName":"Hopper"}`))
		case "/v2/emailAddress":
			_, _ = w.Write([]byte(`{"elements":[{"handle~":{"emailAddress":"grace@navy.mil"}}]}`))
		default:
			w.WriteHeader(404)
		}
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, srv.URL)
	p, err := c.ExchangeCode(context.Background(), "the-code")
	if err != nil {
		t.Fatalf("ExchangeCode err: %v", err)
	}
	if p.Email != "grace@navy.mil" || p.Subject != "li-1" {
		t.Fatalf("profile inesperado: %+v", p)
	}
}

func TestExchangeCode_BadCode(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(400)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, srv.URL)
	if _, err := c.ExchangeCode(context.Background(), "nope"); !errors.Is(err, oauth.ErrInvalid) {
		t.Fatalf("got %v, want oauth.ErrInvalid", err)
	}
}
