// Package auth checks bearer API keys on API requests.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/a-h/respond"
)

func New(log *slog.Logger, apiKeyToUserName map[string]string, next http.Handler) *Auth {
	return &Auth{
		Log:              log,
		Next:             next,
		APIKeyToUserName: apiKeyToUserName,
	}
}

type Auth struct {
	Log              *slog.Logger
	Next             http.Handler
	APIKeyToUserName map[string]string
}

// LoadFromFile reads a JSON object mapping API keys to user names.
func LoadFromFile(name string) (apiKeyToUserName map[string]string, err error) {
	f, err := os.OpenFile(name, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to open API keys file: %w", err)
	}
	defer f.Close()
	m := make(map[string]string)
	if err = json.NewDecoder(f).Decode(&m); err != nil {
		return nil, fmt.Errorf("auth: failed to decode API keys file: %w", err)
	}
	return m, nil
}

type userContextKey int

const userKey userContextKey = 0

func GetUser(r *http.Request) (user string, ok bool) {
	user, ok = r.Context().Value(userKey).(string)
	return
}

func (a *Auth) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	user, ok := a.APIKeyToUserName[key]
	if !ok || key == "" {
		a.Log.Warn("unauthorized request", slog.String("method", r.Method), slog.String("path", r.URL.Path))
		respond.WithError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	r = r.WithContext(context.WithValue(r.Context(), userKey, user))
	a.Next.ServeHTTP(w, r)
}
