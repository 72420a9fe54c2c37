// Package linkedin resuelve perfiles vía la API REST de LinkedIn:
// con access token va directo a /v2/me + /v2/emailAddress; con
// authorization code primero lo canjea por un access token.
package linkedin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dropDatabas3/launchbase/internal/oauth"
)

const (
	defaultAPIBase  = "https://api.linkedin.com"
	defaultAuthBase = "https://www.linkedin.com"
)

type Client struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// APIBase/AuthBase se sobreescriben en tests.
	APIBase  string
	AuthBase string

	http *http.Client
}

func New(clientID, clientSecret, redirectURL string) *Client {
	return &Client{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		APIBase:      defaultAPIBase,
		AuthBase:     defaultAuthBase,
		http:         &http.Client{Timeout: 10 * time.Second},
	}
}

type profileResponse struct {
	ID                 string `json:"id"`
	LocalizedFirstName string `json:"localizedFirstName"`
	LocalizedLastName  string `json:"localizedLastName"`
}

type emailResponse struct {
	Elements []struct {
		Handle struct {
			EmailAddress string `json:"emailAddress"`
		} `json:"handle~"`
	} `json:"elements"`
}

func (c *Client) getJSON(ctx context.Context, rawURL, accessToken string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("linkedin http %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// FetchProfile arma el perfil canónico desde /v2/me y /v2/emailAddress.
// Falla como oauth.ErrInvalid ante no-2xx, transporte o email ausente.
func (c *Client) FetchProfile(ctx context.Context, accessToken string) (*oauth.Profile, error) {
	p, err := c.fetch(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", oauth.ErrInvalid, err)
	}
	return p, nil
}

func (c *Client) fetch(ctx context.Context, accessToken string) (*oauth.Profile, error) {
	var prof profileResponse
	if err := c.getJSON(ctx, c.APIBase+"/v2/me", accessToken, &prof); err != nil {
		return nil, err
	}

	var em emailResponse
	emailURL := c.APIBase + "/v2/emailAddress?q=members&projection=(elements*(handle~))"
	if err := c.getJSON(ctx, emailURL, accessToken, &em); err != nil {
		return nil, err
	}
	if len(em.Elements) == 0 || em.Elements[0].Handle.EmailAddress == "" {
		return nil, errors.New("email missing")
	}
	if prof.ID == "" {
		return nil, errors.New("profile id missing")
	}

	fullName := strings.TrimSpace(prof.LocalizedFirstName + " " + prof.LocalizedLastName)
	return &oauth.Profile{
		Email:    strings.ToLower(em.Elements[0].Handle.EmailAddress),
		Name:     fullName,
		Subject:  prof.ID,
		Provider: "linkedin",
	}, nil
}

// ExchangeCode canjea el authorization code y sigue con FetchProfile.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*oauth.Profile, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", c.RedirectURL)
	form.Set("client_id", c.ClientID)
	form.Set("client_secret", c.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, "POST",
		c.AuthBase+"/oauth/v2/accessToken", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", oauth.ErrInvalid, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", oauth.ErrInvalid, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("%w: token http %d", oauth.ErrInvalid, resp.StatusCode)
	}

	var tr struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("%w: %v", oauth.ErrInvalid, err)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("%w: no access_token in response", oauth.ErrInvalid)
	}
	return c.FetchProfile(ctx, tr.AccessToken)
}
