package utils // package utils provides helper functions for token creation and hashing

import (
    "crypto/rand" // secure random number generation for token ids
    "encoding/hex"
    "errors"
    "fmt"
    "strconv"
    "time"

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// ErrInvalidToken covers every verification failure: bad signature,
// malformed token, expired token.  Callers get a single error on
// purpose so the response cannot reveal which check failed.
var ErrInvalidToken = errors.New("invalid or expired token")

// SessionToken is a signed HS256 JWT bound to one user session.  JTI is
// the token's unique id; logout records it in the revocation set so a
// captured token dies with the session instead of living until Exp.
type SessionToken struct {
    Token string    // the serialized JWT string
    JTI   string    // unique token id (jti claim)
    Exp   time.Time // the UTC expiration time
}

// SessionClaims is the decoded identity carried by a verified token.
type SessionClaims struct {
    UserID uint64 // subject (sub claim)
    Role   string // role claim
    JTI    string // token id (jti claim)
    Exp    time.Time
}

// NewSessionToken builds and signs an HS256 JWT for a user.  The TTL is
// given as a duration so callers can express both the configured
// day-based session lifetime and the 10-second throwaway token used to
// clear the cookie on logout.  Claims: sub, role, jti, exp, iat.
func NewSessionToken(secret string, userID uint64, role string, ttl time.Duration) (SessionToken, error) {
    now := time.Now().UTC()
    exp := now.Add(ttl)
    jti, err := randomHex(16)
    if err != nil {
        return SessionToken{}, err
    }
    claims := jwt.MapClaims{
        "sub":  strconv.FormatUint(userID, 10),
        "role": role,
        "jti":  jti,
        "exp":  exp.Unix(),
        "iat":  now.Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return SessionToken{}, err
    }
    return SessionToken{Token: signed, JTI: jti, Exp: exp}, nil
}

// ParseSessionToken verifies the signature and expiry of a raw token
// string and returns its decoded claims.  Any failure maps to
// ErrInvalidToken.
func ParseSessionToken(secret, raw string) (SessionClaims, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        // Only HS256 tokens are ever issued; reject anything else.
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, fmt.Errorf("unexpected signing method %q", t.Header["alg"])
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return SessionClaims{}, ErrInvalidToken
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return SessionClaims{}, ErrInvalidToken
    }
    var sc SessionClaims
    switch sub := claims["sub"].(type) {
    case string:
        n, err := strconv.ParseUint(sub, 10, 64)
        if err != nil {
            return SessionClaims{}, ErrInvalidToken
        }
        sc.UserID = n
    case float64:
        // Tokens minted by older builds carried a numeric sub.
        sc.UserID = uint64(sub)
    default:
        return SessionClaims{}, ErrInvalidToken
    }
    if role, ok := claims["role"].(string); ok {
        sc.Role = role
    }
    if jti, ok := claims["jti"].(string); ok {
        sc.JTI = jti
    }
    if exp, ok := claims["exp"].(float64); ok {
        sc.Exp = time.Unix(int64(exp), 0).UTC()
    }
    if sc.UserID == 0 || sc.Role == "" {
        return SessionClaims{}, ErrInvalidToken
    }
    return sc, nil
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
