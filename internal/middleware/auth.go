package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hotelmate/backend/internal/domain"
)

// Claims are the bearer token claims the API understands. The subject is the
// user id; is_admin grants the admin role.
type Claims struct {
	IsAdmin bool `json:"is_admin"`
	jwt.RegisteredClaims
}

// AuthConfig configures token verification.
type AuthConfig struct {
	// Secret is the HMAC key tokens are signed with.
	Secret string
	// Issuer, when set, must match the token's iss claim.
	Issuer string
	// ClockSkew is the leeway allowed on exp/nbf/iat. Defaults to one minute.
	ClockSkew time.Duration
}

// Authenticator verifies HS256/384/512 bearer tokens and stores the caller
// identity in the request context.
type Authenticator struct {
	secret []byte
	parser *jwt.Parser
	log    *slog.Logger
}

// NewAuthenticator constructs an Authenticator.
func NewAuthenticator(cfg AuthConfig, log *slog.Logger) *Authenticator {
	if log == nil {
		log = slog.Default()
	}
	if cfg.ClockSkew <= 0 {
		cfg.ClockSkew = time.Minute
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithLeeway(cfg.ClockSkew),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	return &Authenticator{
		secret: []byte(strings.TrimSpace(cfg.Secret)),
		parser: jwt.NewParser(opts...),
		log:    log,
	}
}

// Middleware rejects requests without a valid bearer token with 401 and
// otherwise makes the caller available through CallerFrom.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := extractBearer(r.Header.Get("Authorization"))
		if raw == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}
		caller, err := a.Verify(raw)
		if err != nil {
			a.log.WarnContext(r.Context(), "token rejected", slog.String("error", err.Error()))
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
	})
}

// Verify parses and validates a token and returns the identity it carries.
func (a *Authenticator) Verify(raw string) (domain.Caller, error) {
	if len(a.secret) == 0 {
		return domain.Caller{}, errors.New("auth secret not configured")
	}
	var claims Claims
	_, err := a.parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	})
	if err != nil {
		return domain.Caller{}, err
	}
	if claims.Subject == "" {
		return domain.Caller{}, errors.New("token has no subject")
	}
	return domain.Caller{UserID: claims.Subject, IsAdmin: claims.IsAdmin}, nil
}

// RequireAdmin rejects callers without the admin role with 403. It must run
// after Authenticator.Middleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, ok := CallerFrom(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}
		if !caller.IsAdmin {
			writeError(w, http.StatusForbidden, "forbidden", "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type callerKey struct{}

// WithCaller returns a copy of ctx carrying caller.
func WithCaller(ctx context.Context, caller domain.Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFrom returns the authenticated caller stored by the auth middleware.
func CallerFrom(ctx context.Context) (domain.Caller, bool) {
	c, ok := ctx.Value(callerKey{}).(domain.Caller)
	return c, ok
}

func extractBearer(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
