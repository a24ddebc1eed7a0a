package auth

import (
	"context"
	"errors"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// SessionLookup resolves an opaque session token to a user id.
// found is false when the token is unknown or expired.
type SessionLookup interface {
	Lookup(ctx context.Context, token string) (userID uint64, found bool, err error)
}

// SessionTokenValidator implements TokenValidator on top of a session store.
type SessionTokenValidator struct {
	sessions SessionLookup
}

func NewSessionTokenValidator(sessions SessionLookup) *SessionTokenValidator {
	return &SessionTokenValidator{sessions: sessions}
}

// ValidateToken returns the user owning token.
func (v *SessionTokenValidator) ValidateToken(ctx context.Context, token string) (*UserContext, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	userID, found, err := v.sessions.Lookup(ctx, token)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrInvalidToken
	}
	return &UserContext{UserID: userID, Token: token}, nil
}
