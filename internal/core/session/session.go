// Package session issues and reads the signed session token that carries a
// staff member's identity and role between requests.
//
// The token is self-contained: there is no server-side session store and no
// denylist, so a token stays valid until its natural expiry. Logout only
// removes the client's cookie. This is an accepted limitation of the design.
package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cityhealth/clinic-api/internal/core/domain"
)

// DefaultCookieName is the cookie carrying the session token unless
// configuration overrides it.
const DefaultCookieName = "cho_session"

// DefaultTTL is the session lifetime applied when none is configured.
const DefaultTTL = 7 * 24 * time.Hour

// ErrInvalidSession is returned for every verification failure: bad
// signature, expired, malformed, unknown role. Callers must not learn which.
var ErrInvalidSession = errors.New("invalid session")

// Session is the decoded identity attached to an authenticated request.
type Session struct {
	SubjectID  string
	Role       domain.Role
	Name       string
	FacilityID string
	Scope      string
	IssuedAt   time.Time
	ExpiresAt  time.Time
}

// Issuer signs session tokens with the process-wide secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{secret: []byte(secret), ttl: ttl}
}

// TTL returns the configured session lifetime.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Issue encodes the identity into a signed HS256 token with the configured
// expiry.
func (i *Issuer) Issue(s Session) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":         s.SubjectID,
		"role":        string(s.Role),
		"name":        s.Name,
		"facility_id": s.FacilityID,
		"iat":         now.Unix(),
		"exp":         now.Add(i.ttl).Unix(),
	}
	if s.Scope != "" {
		claims["scope"] = s.Scope
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(i.secret)
}

// Reader verifies and decodes session tokens.
type Reader struct {
	secret []byte
}

func NewReader(secret string) *Reader {
	return &Reader{secret: []byte(secret)}
}

// Read verifies the token signature and expiry and returns the decoded
// session. Every failure mode collapses into ErrInvalidSession.
func (r *Reader) Read(token string) (*Session, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return r.secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, ErrInvalidSession
	}

	rawRole, _ := claims["role"].(string)
	role, ok := domain.ParseRole(rawRole)
	if !ok {
		return nil, ErrInvalidSession
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, ErrInvalidSession
	}

	s := &Session{
		SubjectID:  sub,
		Role:       role,
		FacilityID: stringClaim(claims, "facility_id"),
		Name:       stringClaim(claims, "name"),
		Scope:      stringClaim(claims, "scope"),
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		s.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		s.ExpiresAt = exp.Time
	}
	return s, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	v, _ := claims[key].(string)
	return v
}

// NewCookie builds the HTTP-only session cookie carrying the token.
func NewCookie(name, token string, ttl time.Duration, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ExpiredCookie builds a cookie that instructs the client to drop the
// session token.
func ExpiredCookie(name string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
