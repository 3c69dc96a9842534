package middleware

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Dosada05/commander-ledger/utils"
	"golang.org/x/crypto/bcrypt"
)

const (
	msgMissingToken   = "missing bearer token in Authorization header"
	msgInvalidToken   = "invalid bearer token"
	msgIncorrectToken = "incorrect bearer token provided"
)

// BearerAuth пропускает запрос только с общим секретом в заголовке Authorization.
// Секрет задаётся открытым текстом или bcrypt-хешем; хеш имеет приоритет.
type BearerAuth struct {
	token []byte
	hash  []byte
}

func NewBearerAuth(token, tokenHash string) (*BearerAuth, error) {
	if tokenHash != "" {
		if _, err := bcrypt.Cost([]byte(tokenHash)); err != nil {
			return nil, fmt.Errorf("invalid bcrypt token hash: %w", err)
		}
		return &BearerAuth{hash: []byte(tokenHash)}, nil
	}
	if token == "" {
		return nil, errors.New("bearer token or token hash is required")
	}
	return &BearerAuth{token: []byte(token)}, nil
}

func (a *BearerAuth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		values := r.Header.Values("Authorization")
		if len(values) == 0 {
			unauthorized(w, r, msgMissingToken)
			return
		}

		token, ok := parseBearer(values)
		if !ok {
			unauthorized(w, r, msgInvalidToken)
			return
		}

		if !a.matches(token) {
			slog.WarnContext(r.Context(), "rejected bearer token", slog.String("path", r.URL.Path), slog.String("remote", r.RemoteAddr))
			unauthorized(w, r, msgIncorrectToken)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (a *BearerAuth) matches(token string) bool {
	if a.hash != nil {
		return utils.CheckTokenHash(token, string(a.hash))
	}
	return subtle.ConstantTimeCompare(a.token, []byte(token)) == 1
}

// parseBearer принимает ровно один заголовок вида "Bearer <token>", схема без учёта регистра.
func parseBearer(values []string) (string, bool) {
	if len(values) != 1 {
		return "", false
	}
	scheme, token, found := strings.Cut(strings.TrimSpace(values[0]), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}
