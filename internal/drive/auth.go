package drive

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"
)

// GoogleTokenURL is the production OAuth2 token exchange endpoint.
// Tests point the Authenticator at an httptest server instead.
const GoogleTokenURL = "https://oauth2.googleapis.com/token"

// Authenticator performs the refresh-token grant and publishes the resulting
// access token to the TokenStore. Refresh is invoked reactively after a 401,
// never on a timer. Two callers failing at the same time each run their own
// exchange; the duplicate is redundant but harmless (last writer wins).
type Authenticator struct {
	conf         *oauth2.Config
	refreshToken string
	store        *TokenStore
	httpClient   *http.Client
	logger       *slog.Logger
}

// NewAuthenticator creates an Authenticator for the given OAuth2 client
// credentials and long-lived refresh token. tokenURL is typically
// GoogleTokenURL. httpClient may be nil to use http.DefaultClient.
func NewAuthenticator(
	clientID, clientSecret, refreshToken, tokenURL string,
	store *TokenStore, httpClient *http.Client, logger *slog.Logger,
) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Authenticator{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL: tokenURL,
				// Google takes client credentials as form fields, not basic auth.
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		refreshToken: refreshToken,
		store:        store,
		httpClient:   httpClient,
		logger:       logger,
	}
}

// Refresh performs one synchronous token exchange using the long-lived
// refresh token and atomically replaces the store's value on success.
// On failure the store is left untouched and the error is surfaced to the
// operation that depended on the refresh; it is not fatal to other workers.
func (a *Authenticator) Refresh(ctx context.Context) error {
	a.logger.Debug("refreshing access token")

	tok, err := a.exchange(ctx)
	if err != nil {
		a.logger.Error("token refresh failed", slog.String("error", err.Error()))
		return err
	}

	a.store.Replace(tok)
	a.logger.Info("access token refreshed")

	return nil
}

// exchange runs the refresh_token grant against the token endpoint.
// A fresh token source is built per call so every invocation hits the
// endpoint instead of returning a cached token.
func (a *Authenticator) exchange(ctx context.Context) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
	src := a.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: a.refreshToken})

	tok, err := src.Token()
	if err != nil {
		return "", fmt.Errorf("drive: token exchange failed: %w", err)
	}

	if tok.AccessToken == "" {
		return "", fmt.Errorf("drive: token exchange returned no access token: %w", ErrMalformedResponse)
	}

	return tok.AccessToken, nil
}
