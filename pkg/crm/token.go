package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mariostorable/friction-engine/pkg/config"
	"github.com/mariostorable/friction-engine/pkg/crypto"
	"github.com/mariostorable/friction-engine/pkg/repositories"
)

// TokenProvider exchanges stored credentials for a live CRM access token.
type TokenProvider interface {
	// AccessToken returns a bearer token and the instance base URL to use
	// with it. Implementations may cache; a failure here marks the account
	// as failed for the run, never aborts the batch.
	AccessToken(ctx context.Context) (token string, instanceURL string, err error)
}

// OAuthTokenProvider refreshes CRM access tokens using the encrypted
// refresh token held in the integration_credentials table.
type OAuthTokenProvider struct {
	cfg       *config.CRMConfig
	creds     repositories.CredentialRepository
	encryptor *crypto.CredentialEncryptor
	client    *http.Client
	logger    *zap.Logger

	// cached token, refreshed when within expirySlack of expiring
	token       string
	instanceURL string
	expiresAt   time.Time
}

// expirySlack forces a refresh slightly before the token's stated expiry.
const expirySlack = 2 * time.Minute

// NewOAuthTokenProvider creates a token provider backed by the credential store.
func NewOAuthTokenProvider(
	cfg *config.CRMConfig,
	creds repositories.CredentialRepository,
	encryptor *crypto.CredentialEncryptor,
	logger *zap.Logger,
) *OAuthTokenProvider {
	return &OAuthTokenProvider{
		cfg:       cfg,
		creds:     creds,
		encryptor: encryptor,
		client:    &http.Client{Timeout: 30 * time.Second},
		logger:    logger.Named("crm_auth"),
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	InstanceURL string `json:"instance_url"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// AccessToken implements TokenProvider.
func (p *OAuthTokenProvider) AccessToken(ctx context.Context) (string, string, error) {
	if p.token != "" && time.Now().Before(p.expiresAt.Add(-expirySlack)) {
		return p.token, p.instanceURL, nil
	}

	cred, err := p.creds.GetByProvider(ctx, "salesforce")
	if err != nil {
		return "", "", fmt.Errorf("load credentials: %w", err)
	}

	refreshToken, err := p.encryptor.Decrypt(cred.EncryptedRefreshToken)
	if err != nil {
		return "", "", fmt.Errorf("decrypt refresh token: %w", err)
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("client_id", p.cfg.ClientID)
	form.Set("client_secret", p.cfg.ClientSecret)
	form.Set("refresh_token", refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.TokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", "", fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("token refresh request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("token refresh failed with status %d", resp.StatusCode)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", "", fmt.Errorf("decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		return "", "", fmt.Errorf("token response missing access_token")
	}

	p.token = tok.AccessToken
	p.instanceURL = tok.InstanceURL
	if p.instanceURL == "" {
		p.instanceURL = cred.InstanceURL
	}
	if tok.ExpiresIn > 0 {
		p.expiresAt = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	} else {
		// CRM does not always report expiry; assume a short session.
		p.expiresAt = time.Now().Add(15 * time.Minute)
	}

	now := time.Now()
	if err := p.creds.TouchRefreshed(ctx, cred.ID, now); err != nil {
		p.logger.Warn("failed to record token refresh time", zap.Error(err))
	}

	p.logger.Debug("refreshed CRM access token",
		zap.Time("expires_at", p.expiresAt))

	return p.token, p.instanceURL, nil
}
