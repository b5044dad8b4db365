package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"

	"github.com/nesvesk-vienas/nesvesk-server/internal/id"
)

const (
	// TokenIssuer is the iss claim the sign-in provider stamps on tokens.
	TokenIssuer = "nesvesk-identity"
	// TokenAudience is the aud claim tokens must carry to reach this API.
	TokenAudience = "nesvesk-api"
)

// ErrMissingSubject is returned for a token without a sub claim.
var ErrMissingSubject = errors.New("token has no subject")

// TokenService verifies PASETO v4.local identity tokens. It can also issue
// them, which the dev seeder and the tests use in place of the provider.
type TokenService struct {
	symmetricKey paseto.V4SymmetricKey
	duration     time.Duration
	now          func() time.Time
}

// NewTokenService creates a token service from a 32-byte key.
func NewTokenService(key []byte, duration time.Duration) (*TokenService, error) {
	if len(key) != keyLength {
		return nil, fmt.Errorf("PASETO v4 key must be exactly %d bytes, got %d", keyLength, len(key))
	}

	symmetricKey, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create PASETO symmetric key: %w", err)
	}

	return &TokenService{
		symmetricKey: symmetricKey,
		duration:     duration,
		now:          time.Now,
	}, nil
}

// Issue creates a token for identity, valid for the configured duration.
func (s *TokenService) Issue(identity Identity) (string, error) {
	if identity.ExternalID == "" {
		return "", ErrMissingSubject
	}
	now := s.now()

	token := paseto.NewToken()
	token.SetIssuer(TokenIssuer)
	token.SetSubject(identity.ExternalID)
	token.SetAudience(TokenAudience)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(s.duration))

	tokenID, err := id.Generate(id.PrefixToken)
	if err != nil {
		return "", fmt.Errorf("generate token ID: %w", err)
	}
	token.SetJti(tokenID)

	//nolint:errcheck // Token.Set only errors on invalid types, which we control
	_ = token.Set("email", identity.Email)
	//nolint:errcheck // Token.Set only errors on invalid types, which we control
	_ = token.Set("name", identity.Name)
	//nolint:errcheck // Token.Set only errors on invalid types, which we control
	_ = token.Set("picture", identity.Picture)

	return token.V4Encrypt(s.symmetricKey, nil), nil
}

// Verify decrypts and validates a token and returns its claims.
func (s *TokenService) Verify(tokenString string) (*IdentityClaims, error) {
	parser := paseto.NewParserWithoutExpiryCheck()
	parser.AddRule(paseto.ForAudience(TokenAudience))
	parser.AddRule(paseto.IssuedBy(TokenIssuer))
	parser.AddRule(paseto.ValidAt(s.now()))

	token, err := parser.ParseV4Local(s.symmetricKey, tokenString, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	var claims IdentityClaims
	if err := json.Unmarshal(token.ClaimsJSON(), &claims); err != nil {
		return nil, fmt.Errorf("parse claims: %w", err)
	}
	if claims.Subject == "" {
		return nil, ErrMissingSubject
	}

	return &claims, nil
}

// Duration returns the configured token lifetime.
func (s *TokenService) Duration() time.Duration {
	return s.duration
}
