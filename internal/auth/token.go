package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidToken is returned for malformed, forged or expired seat tokens.
var ErrInvalidToken = errors.New("invalid token")

// Claims binds a bearer to one seat of one game.
type Claims struct {
	GameID   string `json:"game_id"`
	PlayerID string `json:"player_id"`
	Exp      int64  `json:"exp"`
}

// DefaultTokenExpiry is the default lifetime for seat tokens.
const DefaultTokenExpiry = 24 * time.Hour

// Signer issues and verifies seat tokens with a shared secret.
type Signer struct {
	secret []byte
	now    func() time.Time
}

// NewSigner returns a Signer. The secret must not be empty.
func NewSigner(secret []byte) (*Signer, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("token secret is required")
	}
	return &Signer{secret: secret, now: time.Now}, nil
}

// Issue creates an HMAC-SHA256 signed token for gameID/playerID.
// Format: base64url(payload).base64url(signature).
func (s *Signer) Issue(gameID, playerID string, expiry time.Duration) (token string, expiresAt time.Time, err error) {
	if expiry <= 0 {
		expiry = DefaultTokenExpiry
	}
	expiresAt = s.now().UTC().Add(expiry)
	payload, err := json.Marshal(Claims{GameID: gameID, PlayerID: playerID, Exp: expiresAt.Unix()})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("marshal claims: %w", err)
	}
	b64Payload := base64.RawURLEncoding.EncodeToString(payload)
	return b64Payload + "." + base64.RawURLEncoding.EncodeToString(s.sign(b64Payload)), expiresAt, nil
}

// Verify checks the signature and expiry and returns the claims.
func (s *Signer) Verify(token string) (*Claims, error) {
	b64Payload, b64Sig, ok := strings.Cut(token, ".")
	if !ok {
		return nil, fmt.Errorf("%w: bad format", ErrInvalidToken)
	}
	sig, err := base64.RawURLEncoding.DecodeString(b64Sig)
	if err != nil {
		return nil, fmt.Errorf("%w: signature encoding", ErrInvalidToken)
	}
	if !hmac.Equal(sig, s.sign(b64Payload)) {
		return nil, fmt.Errorf("%w: bad signature", ErrInvalidToken)
	}

	payload, err := base64.RawURLEncoding.DecodeString(b64Payload)
	if err != nil {
		return nil, fmt.Errorf("%w: payload encoding", ErrInvalidToken)
	}
	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("%w: payload: %v", ErrInvalidToken, err)
	}
	if s.now().UTC().Unix() > claims.Exp {
		return nil, fmt.Errorf("%w: expired", ErrInvalidToken)
	}
	if claims.GameID == "" || claims.PlayerID == "" {
		return nil, fmt.Errorf("%w: missing game_id or player_id", ErrInvalidToken)
	}
	return &claims, nil
}

func (s *Signer) sign(b64Payload string) []byte {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(b64Payload))
	return mac.Sum(nil)
}
