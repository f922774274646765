package session

import (
	"net/http"

	"github.com/fittrack/web/pkg"
)

const placeholderHTML = `<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>FitTrack</title></head>
<body><p role="status">Checking session...</p></body>
</html>`

// View renders exactly one of placeholder, content or login redirect, as a pure function of the verdict.
type View struct {
	Placeholder http.Handler
	Content     http.Handler
	LoginPath   string
}

func (v View) Render(w http.ResponseWriter, r *http.Request, verdict Verdict) {
	// gate output is per mount, never cached
	w.Header().Set("Cache-Control", "no-store")

	switch verdict {
	case Authorized:
		v.Content.ServeHTTP(w, r)
	case Unauthorized:
		http.Redirect(w, r, v.LoginPath, http.StatusFound)
	default:
		if v.Placeholder != nil {
			v.Placeholder.ServeHTTP(w, r)
			return
		}
		pkg.WriteResponse(w, pkg.ContentType.HTML, placeholderHTML, http.StatusOK)
	}
}
