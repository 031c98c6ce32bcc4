package service

import (
	"context"
	"fmt"

	"google.golang.org/api/idtoken"
)

// googleVerifier implements GoogleVerifier with Google's token validation
// endpoint, pinning the audience to our OAuth client ID.
type googleVerifier struct {
	clientID string
}

// NewGoogleVerifier creates a GoogleVerifier for the given OAuth client ID.
func NewGoogleVerifier(clientID string) GoogleVerifier {
	return &googleVerifier{clientID: clientID}
}

func (v *googleVerifier) Verify(ctx context.Context, token string) (*GoogleClaims, error) {
	payload, err := idtoken.Validate(ctx, token, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("validate google id token: %w", err)
	}

	claims := &GoogleClaims{Subject: payload.Subject}
	if email, ok := payload.Claims["email"].(string); ok {
		claims.Email = email
	}
	if name, ok := payload.Claims["name"].(string); ok {
		claims.Name = name
	}
	if verified, ok := payload.Claims["email_verified"].(bool); ok {
		claims.EmailVerified = verified
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("google id token carries no email claim")
	}
	return claims, nil
}
