package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/DRSN-tech/dropship-sync/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
)

type callerKey struct{}

// Claims — полезная нагрузка токена, выданного внешней системой аутентификации.
type Claims struct {
	Capabilities []string `json:"capabilities"`
	jwt.RegisteredClaims
}

// Authenticator проверяет Bearer-токен (HS256) и кладёт domain.Caller в контекст.
type Authenticator struct {
	secret []byte
	issuer string
	logger logger.Logger
}

func NewAuthenticator(secret, issuer string, logger logger.Logger) *Authenticator {
	return &Authenticator{secret: []byte(secret), issuer: issuer, logger: logger}
}

func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, err := a.parse(r.Header.Get("Authorization"))
		if err != nil {
			a.logger.Warnf("%d %s %s: %v", http.StatusUnauthorized, r.Method, r.URL.Path, err)
			WriteError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(withCaller(r.Context(), caller)))
	})
}

func (a *Authenticator) parse(header string) (domain.Caller, error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return domain.Caller{}, e.Wrap("missing bearer token", e.ErrUnauthenticated)
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return domain.Caller{}, e.Wrap(err.Error(), e.ErrUnauthenticated)
	}

	return domain.Caller{Subject: claims.Subject, Capabilities: claims.Capabilities}, nil
}

func withCaller(ctx context.Context, caller domain.Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// callerFromCtx возвращает пустого вызывающего без прав, если middleware не отработал.
func callerFromCtx(ctx context.Context) domain.Caller {
	caller, _ := ctx.Value(callerKey{}).(domain.Caller)
	return caller
}
