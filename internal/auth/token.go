package auth

import (
	"crypto/ed25519"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

const (
	// SignInStatement is the fixed first line of the wallet sign-in message.
	SignInStatement = "Sign in to M33T"

	// MessageMaxAge bounds how old a signed message may be.
	MessageMaxAge = 5 * time.Minute

	// SessionDuration is how long an issued token stays valid.
	SessionDuration = 24 * time.Hour
)

// SignInMessage is the payload a wallet signs to authenticate.
type SignInMessage struct {
	Statement string
	Domain    string
	Nonce     string
	IssuedAt  time.Time
}

// Format renders the message exactly as the wallet signed it.
func (m SignInMessage) Format() string {
	statement := m.Statement
	if statement == "" {
		statement = SignInStatement
	}
	return fmt.Sprintf("%s\n\nDomain: %s\nNonce: %s\nIssued At: %s",
		statement, m.Domain, m.Nonce, m.IssuedAt.UTC().Format(time.RFC3339))
}

// VerifySignInMessage checks the message age and the ed25519 signature made
// by the wallet's public key. The signature is base58 encoded.
func VerifySignInMessage(msg SignInMessage, publicKey string, signature string) error {
	age := time.Since(msg.IssuedAt)
	if age > MessageMaxAge {
		return fmt.Errorf("sign-in message expired: issued %s ago", age.Round(time.Second))
	}
	if age < -time.Minute {
		return fmt.Errorf("sign-in message issued in the future")
	}

	pub, err := solana.PublicKeyFromBase58(publicKey)
	if err != nil {
		return fmt.Errorf("invalid public key: %w", err)
	}

	sig, err := base58.Decode(signature)
	if err != nil {
		return fmt.Errorf("invalid signature encoding: %w", err)
	}
	if len(sig) != ed25519.SignatureSize {
		return fmt.Errorf("invalid signature length: %d", len(sig))
	}

	if !ed25519.Verify(ed25519.PublicKey(pub.Bytes()), []byte(msg.Format()), sig) {
		return fmt.Errorf("signature verification failed")
	}
	return nil
}

// Claims are the session claims carried inside issued tokens.
type Claims struct {
	PublicKey string `json:"publicKey"`
	Domain    string `json:"domain"`
	jwt.StandardClaims
}

// IssueToken mints a signed session token for an authenticated wallet.
func IssueToken(secret []byte, publicKey, domain string) (string, error) {
	now := time.Now()
	claims := Claims{
		PublicKey: publicKey,
		Domain:    domain,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(SessionDuration).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken validates a session token and returns its claims.
func VerifyToken(secret []byte, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid session token")
	}
	return claims, nil
}
