package services

import (
	"context"
	"log"
)

// LastAcknowledgedLevelKey is the identity metadata attribute holding the last level a user was shown.
const LastAcknowledgedLevelKey = "lastAcknowledgedLevel"

// Profile is what the identity provider knows about a user.
type Profile struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Email    string         `json:"email"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// IdentityProvider is the external user directory.
type IdentityProvider interface {
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	UpdateMetadata(ctx context.Context, userID string, patch map[string]any) error
	ListUserIDs(ctx context.Context) ([]string, error)
}

// resolveProfile never fails: a missing provider or failed lookup falls back to the raw id.
func resolveProfile(ctx context.Context, idp IdentityProvider, userID string) Profile {
	fallback := Profile{ID: userID, Name: userID}
	if idp == nil {
		return fallback
	}
	p, err := idp.GetProfile(ctx, userID)
	if err != nil || p == nil {
		log.Printf("[IDENTITY] profile lookup for %s failed, using raw id: %v", userID, err)
		return fallback
	}
	if p.Name == "" {
		p.Name = userID
	}
	return *p
}

// metadataInt reads an integer attribute that may have round-tripped through JSON.
func metadataInt(md map[string]any, key string) int {
	switch v := md[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}
