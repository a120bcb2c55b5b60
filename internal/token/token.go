// Package token implements the credential lifecycle: short-lived RS256
// access tokens and a single rotating refresh token per user.
package token

import (
    "crypto/rand"   // secure random number generation
    "crypto/rsa"    // RSA keys for signing and verification
    "crypto/sha256" // SHA-256 hashing for refresh tokens
    "encoding/hex"  // hex encoding for token material
    "fmt"
    "time"

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// AccessToken is a signed JWT access token along with its expiry.  Access
// tokens are short-lived, self-contained assertions of who the caller is;
// they are never persisted and are verified statelessly by signature and
// expiry.
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// RefreshToken is the long-lived opaque token used to obtain new access
// tokens.  Raw is returned to the client exactly once; the database only
// ever holds its SHA-256 hash.
type RefreshToken struct {
    Raw string    // raw token string returned to the client
    Exp time.Time // UTC expiration time
}

// Claims is the identity an access token asserts.  The authorization
// gate extracts these and hands them to handlers; nothing downstream
// ever re-reads the raw JWT.
type Claims struct {
    UserID uint64
    Email  string
    Name   string
    Role   string
}

// NewAccessToken builds and signs an RS256 JWT for a user.  The JWT
// embeds sub (user ID), email, name and role plus the standard exp/iat
// claims.  Signing needs the private key; VerifyAccessToken needs only
// the public half.
func NewAccessToken(priv *rsa.PrivateKey, c Claims, ttlMin int) (AccessToken, error) {
    now := time.Now().UTC()
    exp := now.Add(time.Duration(ttlMin) * time.Minute)
    claims := jwt.MapClaims{
        "sub":   c.UserID,
        "email": c.Email,
        "name":  c.Name,
        "role":  c.Role,
        "exp":   exp.Unix(),
        "iat":   now.Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
    signed, err := t.SignedString(priv)
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// VerifyAccessToken parses and validates a raw JWT against the public
// key and returns the embedded identity.  Signature or expiry failures
// surface as an error; the caller decides how to report them.
func VerifyAccessToken(pub *rsa.PublicKey, raw string) (Claims, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
            return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
        }
        return pub, nil
    })
    if err != nil || !tok.Valid {
        return Claims{}, fmt.Errorf("invalid access token: %w", err)
    }
    mc, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return Claims{}, fmt.Errorf("invalid access token claims")
    }
    var c Claims
    if sub, ok := mc["sub"].(float64); ok {
        c.UserID = uint64(sub)
    }
    c.Email, _ = mc["email"].(string)
    c.Name, _ = mc["name"].(string)
    c.Role, _ = mc["role"].(string)
    if c.UserID == 0 || c.Role == "" {
        return Claims{}, fmt.Errorf("access token missing identity claims")
    }
    return c, nil
}

// NewRefreshToken returns a cryptographically secure random token (raw)
// and its expiration time.  The ttlDays parameter controls how many days
// the refresh token stays valid.
func NewRefreshToken(ttlDays int) (RefreshToken, error) {
    raw, err := randomHex(48) // 48 bytes -> 96 hex chars
    if err != nil {
        return RefreshToken{}, err
    }
    return RefreshToken{
        Raw: raw,
        Exp: time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour),
    }, nil
}

// HashRefreshRaw returns the SHA-256 hash of the raw refresh token as a
// hex string.  Storing only the hash keeps a stolen database dump from
// being used to refresh sessions.
func HashRefreshRaw(raw string) string {
    sum := sha256.Sum256([]byte(raw))
    return hex.EncodeToString(sum[:])
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
    buf := make([]byte, n)
    if _, err := rand.Read(buf); err != nil {
        return "", err
    }
    return hex.EncodeToString(buf), nil
}
