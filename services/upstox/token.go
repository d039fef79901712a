package upstox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// RefreshCredentials carries the OAuth client identity plus the long-lived
// refresh token issued at first login.
type RefreshCredentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// RefreshAccessToken exchanges the refresh token for a fresh access token.
func (c *Client) RefreshAccessToken(ctx context.Context, creds RefreshCredentials) (string, error) {
	form := url.Values{}
	form.Set("client_id", creds.ClientID)
	form.Set("client_secret", creds.ClientSecret)
	form.Set("refresh_token", creds.RefreshToken)
	form.Set("grant_type", "refresh_token")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.authURL+"/login/authorization/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token refresh http %d: %s", resp.StatusCode, snippet(body))
	}
	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("token refresh returned an empty access_token")
	}
	return tok.AccessToken, nil
}
