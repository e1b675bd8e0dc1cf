package auth

import (
	"context"
	"strings"

	"webnova-quiz-service/internal/domain"
)

// DemoPrefix marks demo-mode bearer tokens: "demo-<userID>".
const DemoPrefix = "demo-"

// DemoTokens is the demo-mode identity provider. Tokens are the user id with
// a prefix and are never revoked.
type DemoTokens struct{}

func (DemoTokens) Issue(_ context.Context, userID string) (string, error) {
	return DemoPrefix + userID, nil
}

func (DemoTokens) ResolveIdentity(_ context.Context, credential string) (string, error) {
	userID, ok := strings.CutPrefix(credential, DemoPrefix)
	if !ok || strings.TrimSpace(userID) == "" {
		return "", domain.ErrUnauthorized
	}
	return userID, nil
}

func (d DemoTokens) Revoke(ctx context.Context, credential string) error {
	_, err := d.ResolveIdentity(ctx, credential)
	return err
}
