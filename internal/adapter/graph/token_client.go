package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/billingops/invoice-console/internal/domain"
)

const (
	// defaultScope requests application permissions for the client-credentials flow.
	defaultScope = "https://graph.microsoft.com/.default"
	tokenPath    = "/oauth2/v2.0/token"
)

// TokenClient performs the OAuth2 client-credentials exchange against a
// tenant's authority. It is stateless: one exchange per call, no caching,
// safe for concurrent use across tenants.
type TokenClient struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewTokenClient creates a TokenClient with a bounded request timeout.
func NewTokenClient(logger *slog.Logger) *TokenClient {
	return &TokenClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// AcquireToken exchanges the tenant's client credentials for a bearer token.
// Any failure (network, non-success status, malformed response) wraps
// domain.ErrAuthentication. A single attempt is made; there are no retries.
func (c *TokenClient) AcquireToken(ctx context.Context, tenant domain.TenantConfig) (string, error) {
	form := url.Values{
		"client_id":     {tenant.ClientID},
		"client_secret": {tenant.ClientSecret},
		"scope":         {defaultScope},
		"grant_type":    {"client_credentials"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tenant.Authority+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: create token request: %v", domain.ErrAuthentication, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("failed to get access token", "tenant", tenant.DisplayName, "error", err)
		return "", fmt.Errorf("%w: request token: %v", domain.ErrAuthentication, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("token request rejected", "tenant", tenant.DisplayName, "status", resp.StatusCode)
		return "", fmt.Errorf("%w: token request failed with status %d", domain.ErrAuthentication, resp.StatusCode)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("%w: decode token response: %v", domain.ErrAuthentication, err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("%w: token response missing access_token", domain.ErrAuthentication)
	}

	return tokenResp.AccessToken, nil
}
