package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const identityPageSize = 100

// IdentityClient talks to the identity provider's admin API with a service token.
type IdentityClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewIdentityClient(baseURL, token string) *IdentityClient {
	return &IdentityClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type identityUser struct {
	ID             string         `json:"id"`
	FirstName      string         `json:"first_name"`
	LastName       string         `json:"last_name"`
	Email          string         `json:"email"`
	PublicMetadata map[string]any `json:"public_metadata"`
}

func (u identityUser) profile() *Profile {
	return &Profile{
		ID:       u.ID,
		Name:     strings.TrimSpace(u.FirstName + " " + u.LastName),
		Email:    u.Email,
		Metadata: u.PublicMetadata,
	}
}

func (c *IdentityClient) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: identity %s %s: %v", ErrUpstream, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read identity %s %s: %v", ErrUpstream, method, path, err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: identity %s", ErrNotFound, path)
	case resp.StatusCode >= 300:
		log.Printf("[IDENTITY] %s %s returned %d: %s", method, path, resp.StatusCode, string(raw))
		return fmt.Errorf("%w: identity %s %s returned %d", ErrUpstream, method, path, resp.StatusCode)
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode identity response: %v", ErrUpstream, err)
	}
	return nil
}

func (c *IdentityClient) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	var u identityUser
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(userID), nil, &u); err != nil {
		return nil, err
	}
	return u.profile(), nil
}

// UpdateMetadata merges patch into the user's public metadata.
func (c *IdentityClient) UpdateMetadata(ctx context.Context, userID string, patch map[string]any) error {
	body := map[string]any{"public_metadata": patch}
	return c.do(ctx, http.MethodPatch, "/users/"+url.PathEscape(userID)+"/metadata", body, nil)
}

// ListUserIDs pages through every user known to the provider.
func (c *IdentityClient) ListUserIDs(ctx context.Context) ([]string, error) {
	var ids []string
	for offset := 0; ; offset += identityPageSize {
		var page []identityUser
		path := fmt.Sprintf("/users?limit=%d&offset=%d", identityPageSize, offset)
		if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
			return nil, err
		}
		for _, u := range page {
			ids = append(ids, u.ID)
		}
		if len(page) < identityPageSize {
			return ids, nil
		}
	}
}
