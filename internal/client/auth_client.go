package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// AuthClient validates access tokens against the auth service. The service
// owns sessions; this service only needs the user ID out of a valid token.
type AuthClient interface {
	ValidateToken(ctx context.Context, token string) (uuid.UUID, error)
}

type authClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewAuthClient(baseURL string, timeout time.Duration) AuthClient {
	return &authClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *authClient) ValidateToken(ctx context.Context, token string) (uuid.UUID, error) {
	url := fmt.Sprintf("%s/api/auth/validate", c.baseURL)

	body, err := json.Marshal(map[string]string{"token": token})
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return uuid.Nil, fmt.Errorf("auth service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return uuid.Nil, fmt.Errorf("auth service returned status %d", resp.StatusCode)
	}

	var result struct {
		UserID string `json:"userId"`
		Valid  bool   `json:"valid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return uuid.Nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !result.Valid {
		return uuid.Nil, fmt.Errorf("token rejected by auth service")
	}

	return uuid.Parse(result.UserID)
}
