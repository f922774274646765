package session

import (
	"net/http"
	"time"
)

// Cookie is one backend auth cookie, kept verbatim.
type Cookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Credential is the opaque proof of authentication issued by the backend at login.
// Values are never inspected, only forwarded.
type Credential struct {
	Cookies   []Cookie  `json:"cookies"`
	CreatedAt time.Time `json:"created_at"`
}

func NewCredential(cookies []*http.Cookie, createdAt time.Time) *Credential {
	cred := &Credential{CreatedAt: createdAt}
	for _, c := range cookies {
		if c == nil || c.Name == "" {
			continue
		}
		// backend clearing its own cookie
		if c.MaxAge < 0 || c.Value == "" {
			continue
		}
		cred.Cookies = append(cred.Cookies, Cookie{Name: c.Name, Value: c.Value})
	}
	return cred
}

func (c *Credential) Empty() bool {
	return c == nil || len(c.Cookies) == 0
}

// Attach adds the credential cookies to an outgoing backend request.
// A nil credential attaches nothing.
func (c *Credential) Attach(req *http.Request) {
	if c.Empty() {
		return
	}
	for _, cookie := range c.Cookies {
		req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	}
}
