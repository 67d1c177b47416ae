// Package auth turns bearer tokens into principals.
//
// Tokens are HS256 JWTs carrying the principal id in "sub" and its groups in
// "groups". Requests without an Authorization header are anonymous; a header
// that does not hold a valid token is rejected.
package auth

import (
	"slices"
	"strings"
	"time"

	"github.com/friendsofgo/errors"
	"github.com/golang-jwt/jwt/v5"

	"github.com/nrfta/realestates-go"
)

// Claims is the token payload.
type Claims struct {
	Groups []string `json:"groups,omitempty"`
	jwt.RegisteredClaims
}

// Authenticator issues and verifies tokens with a shared secret.
type Authenticator struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// New creates an Authenticator. issuer is checked when not empty.
func New(secret, issuer string) *Authenticator {
	return &Authenticator{secret: []byte(secret), issuer: issuer, now: time.Now}
}

// Issue signs a token for p valid for ttl.
func (a *Authenticator) Issue(p realestates.Principal, ttl time.Duration) (string, error) {
	if p.IsAnonymous() {
		return "", errors.New("auth: cannot issue a token for an anonymous principal")
	}
	now := a.now()
	groups := slices.Clone(p.Groups)
	if p.Admin && !slices.Contains(groups, realestates.AdminGroup) {
		groups = append(groups, realestates.AdminGroup)
	}
	claims := Claims{
		Groups: groups,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", errors.Wrap(err, "auth: sign token")
	}
	return token, nil
}

// Authenticate resolves an Authorization header value. An empty header is
// the anonymous principal.
func (a *Authenticator) Authenticate(header string) (realestates.Principal, error) {
	if header == "" {
		return realestates.Anonymous(), nil
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return realestates.Principal{}, realestates.Unauthorized("expected a bearer token")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(strings.TrimSpace(token), claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...)
	if err != nil || claims.Subject == "" {
		return realestates.Principal{}, realestates.Unauthorized("invalid token")
	}

	return realestates.Principal{
		ID:     claims.Subject,
		Groups: claims.Groups,
		Admin:  slices.Contains(claims.Groups, realestates.AdminGroup),
	}, nil
}
