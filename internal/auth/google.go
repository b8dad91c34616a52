package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTokenEndpoint     = "https://oauth2.googleapis.com/token"
	defaultTokenInfoEndpoint = "https://oauth2.googleapis.com/tokeninfo"
)

var (
	// ErrCodeExchange is returned when Google rejects the authorization code.
	ErrCodeExchange = errors.New("google code exchange failed")

	// ErrIdentityRejected is returned when the ID token does not verify.
	ErrIdentityRejected = errors.New("google identity rejected")
)

// GoogleIdentity is the verified identity extracted from a Google ID token.
type GoogleIdentity struct {
	Subject    string
	Email      string
	GivenName  string
	FamilyName string
	Picture    string
}

// GoogleVerifier exchanges authorization codes and verifies the resulting
// ID tokens against Google's tokeninfo endpoint.
type GoogleVerifier struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string

	// Endpoint overrides for tests. Empty values use Google's endpoints.
	TokenEndpoint     string
	TokenInfoEndpoint string

	HTTPClient *http.Client
}

// NewGoogleVerifier returns a verifier for the given OAuth client.
func NewGoogleVerifier(clientID, clientSecret, redirectURI string) *GoogleVerifier {
	return &GoogleVerifier{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURI:  redirectURI,
		HTTPClient:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (v *GoogleVerifier) httpClient() *http.Client {
	if v.HTTPClient != nil {
		return v.HTTPClient
	}
	return http.DefaultClient
}

func (v *GoogleVerifier) tokenEndpoint() string {
	if v.TokenEndpoint != "" {
		return v.TokenEndpoint
	}
	return defaultTokenEndpoint
}

func (v *GoogleVerifier) tokenInfoEndpoint() string {
	if v.TokenInfoEndpoint != "" {
		return v.TokenInfoEndpoint
	}
	return defaultTokenInfoEndpoint
}

// Resolve exchanges the authorization code and returns the verified identity.
func (v *GoogleVerifier) Resolve(ctx context.Context, code string) (*GoogleIdentity, error) {
	idToken, err := v.exchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return v.verifyIDToken(ctx, idToken)
}

func (v *GoogleVerifier) exchangeCode(ctx context.Context, code string) (string, error) {
	form := url.Values{
		"code":          {code},
		"client_id":     {v.ClientID},
		"client_secret": {v.ClientSecret},
		"redirect_uri":  {v.RedirectURI},
		"grant_type":    {"authorization_code"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.tokenEndpoint(), strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.httpClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrCodeExchange, resp.StatusCode)
	}

	var body struct {
		IDToken string `json:"id_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if body.IDToken == "" {
		return "", fmt.Errorf("%w: no id_token in response", ErrCodeExchange)
	}
	return body.IDToken, nil
}

func (v *GoogleVerifier) verifyIDToken(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	endpoint := v.tokenInfoEndpoint() + "?id_token=" + url.QueryEscape(idToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build tokeninfo request: %w", err)
	}

	resp, err := v.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("tokeninfo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: tokeninfo status %d", ErrIdentityRejected, resp.StatusCode)
	}

	var info struct {
		Aud           string `json:"aud"`
		Sub           string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified string `json:"email_verified"`
		GivenName     string `json:"given_name"`
		FamilyName    string `json:"family_name"`
		Picture       string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode tokeninfo response: %w", err)
	}

	if info.Aud != v.ClientID {
		return nil, fmt.Errorf("%w: audience mismatch", ErrIdentityRejected)
	}
	if info.Email == "" || info.EmailVerified != "true" {
		return nil, fmt.Errorf("%w: unverified email", ErrIdentityRejected)
	}

	return &GoogleIdentity{
		Subject:    info.Sub,
		Email:      info.Email,
		GivenName:  info.GivenName,
		FamilyName: info.FamilyName,
		Picture:    info.Picture,
	}, nil
}
