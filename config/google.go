package config

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Config       *oauth2.Config
	HTTPClient   *http.Client
}

type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
}

// tokeninfo returns the subject as "sub" rather than "id".
type googleTokenInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Name          string `json:"name"`
	Aud           string `json:"aud"`
}

// NewGoogleConfig returns nil when Google sign-in is not configured.
func NewGoogleConfig() *GoogleConfig {
	clientID := os.Getenv("GOOGLE_CLIENT_ID")
	clientSecret := os.Getenv("GOOGLE_CLIENT_SECRET")
	redirectURL := os.Getenv("GOOGLE_REDIRECT_URL")

	if clientID == "" || clientSecret == "" {
		return nil
	}

	return &GoogleConfig{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		HTTPClient: http.DefaultClient,
	}
}

func (g *GoogleConfig) VerifyIDToken(ctx context.Context, idToken string) (*GoogleUserInfo, error) {
	endpoint := "https://oauth2.googleapis.com/tokeninfo?id_token=" + url.QueryEscape(idToken)

	var info googleTokenInfo
	if err := g.getJSON(ctx, endpoint, &info); err != nil {
		return nil, fmt.Errorf("failed to verify token: %w", err)
	}
	if info.Aud != g.ClientID {
		return nil, fmt.Errorf("token issued for another client")
	}

	return &GoogleUserInfo{
		ID:            info.Sub,
		Email:         info.Email,
		VerifiedEmail: info.EmailVerified == "true",
		Name:          info.Name,
	}, nil
}

func (g *GoogleConfig) GetUserInfo(ctx context.Context, accessToken string) (*GoogleUserInfo, error) {
	endpoint := "https://www.googleapis.com/oauth2/v2/userinfo?access_token=" + url.QueryEscape(accessToken)

	var userInfo GoogleUserInfo
	if err := g.getJSON(ctx, endpoint, &userInfo); err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	return &userInfo, nil
}

func (g *GoogleConfig) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	return g.Config.Exchange(ctx, code)
}

func (g *GoogleConfig) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := g.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("google responded %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
