package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

const DefaultTTL = 24 * 7 * time.Hour

var ErrNoCredential = errors.New("no credential")

// Store keeps backend credentials server side under opaque session ids.
type Store interface {
	Credential(ctx context.Context, sid string) (*Credential, error)
	Save(ctx context.Context, cred *Credential) (string, error)
	Clear(ctx context.Context, sid string) error
}

// CookieSettings describe the browser-facing session id cookie.
type CookieSettings struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

func (cs CookieSettings) Write(w http.ResponseWriter, sid string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cs.Name,
		Value:    sid,
		Path:     "/",
		MaxAge:   int(cs.TTL.Seconds()),
		HttpOnly: true,
		Secure:   cs.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (cs CookieSettings) Read(r *http.Request) (string, bool) {
	c, err := r.Cookie(cs.Name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

func (cs CookieSettings) Expire(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cs.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cs.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// CredentialFromRequest resolves the credential behind the request's session cookie.
// Any failure yields nil, which the backend will reject.
func CredentialFromRequest(ctx context.Context, store Store, cookies CookieSettings, r *http.Request) *Credential {
	sid, ok := cookies.Read(r)
	if !ok {
		return nil
	}

	cred, err := store.Credential(ctx, sid)
	if err != nil {
		if !errors.Is(err, ErrNoCredential) {
			log.Errorf("session store, get credential: %s", err)
		}
		return nil
	}
	return cred
}
