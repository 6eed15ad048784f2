package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Client logs the terminal in against the backend's auth endpoints and keeps
// the resulting credentials in the injected store. The authentication
// protocol itself belongs to the backend; this client only moves tokens.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      Store
}

func NewClient(baseURL string, httpClient *http.Client, store Store) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		store:      store,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Session struct {
		AccessToken string `json:"access_token"`
	} `json:"session"`
	Tenant struct {
		ID           string `json:"id"`
		BusinessName string `json:"business_name"`
	} `json:"tenant"`
}

func (c *Client) Login(ctx context.Context, email, password string) (Credentials, error) {
	data, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return Credentials{}, fmt.Errorf("marshal login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", bytes.NewReader(data))
	if err != nil {
		return Credentials{}, fmt.Errorf("create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Credentials{}, fmt.Errorf("login: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Credentials{}, fmt.Errorf("login failed with status %d", resp.StatusCode)
	}

	var body loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Credentials{}, fmt.Errorf("decode login response: %w", err)
	}

	creds := Credentials{
		Token:      body.Session.AccessToken,
		TenantID:   body.Tenant.ID,
		TenantName: body.Tenant.BusinessName,
		Email:      email,
	}
	c.store.Set(creds)
	return creds, nil
}

func (c *Client) Logout() {
	c.store.Clear()
}
