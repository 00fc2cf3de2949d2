package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const authValidatePath = "/auth/validate"

// AuthServiceClient validates user session tokens against the platform auth
// service. Only the direct-mobile fallback in the user-context middleware
// uses it; gateway-routed requests arrive with identity headers already set.
type AuthServiceClient struct {
	BaseURL      string
	ServiceToken string
	Client       *http.Client
}

// SessionValidation is the auth service's verdict on a session token. Roles
// are platform-level ("member", "coach", "admin"), not per-feature flags.
type SessionValidation struct {
	UserID   string   `json:"user_id"`
	DeviceID string   `json:"device_id"`
	Roles    []string `json:"roles"`
}

func NewAuthServiceClient(baseURL, serviceToken string) *AuthServiceClient {
	return &AuthServiceClient{
		BaseURL:      baseURL,
		ServiceToken: serviceToken,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// ValidateToken checks a session token (and the device it claims to be from)
// with the auth service. Any non-200 is a rejection; there is no cached or
// offline acceptance path for sessions.
func (c *AuthServiceClient) ValidateToken(sessionToken, deviceID string) (*SessionValidation, error) {
	reqBody := map[string]interface{}{
		"access_token": sessionToken,
		"device_id":    deviceID,
	}
	jsonData, _ := json.Marshal(reqBody)

	req, err := http.NewRequest("POST", c.BaseURL+authValidatePath, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.ServiceToken) // service-to-service credential

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		log.Printf("AuthService %s returned %d: %s", authValidatePath, resp.StatusCode, string(body))
		return nil, fmt.Errorf("session validation failed: %d", resp.StatusCode)
	}

	var out SessionValidation
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}

	return &out, nil
}
