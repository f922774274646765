package middleware

import (
	"net/http"

	"github.com/fittrack/web/internal/session"
	"github.com/fittrack/web/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

type SessionGateParams struct {
	Gate      *session.Gate
	Store     session.Store
	Cookies   session.CookieSettings
	LoginPath string
}

// SessionGate mounts the gate once per request. The wrapped handler is only
// reached with an Authorized verdict, anything else redirects to the login path.
func SessionGate(params SessionGateParams) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.sessionGate")
			defer span.End()

			cred := session.CredentialFromRequest(ctx, params.Store, params.Cookies, r)
			mount := params.Gate.Mount(ctx, cred, func(v session.Verdict) {
				log.Tracef("session gate [%s] => %s", r.URL.Path, v)
			})
			defer mount.Unmount()

			verdict := mount.Wait(ctx)
			if ctx.Err() != nil || !verdict.Settled() {
				// client went away, nothing to render
				span.SetStatus(codes.Error, "client-gone")
				return
			}

			if verdict == session.Authorized {
				span.SetStatus(codes.Ok, verdict.String())
			} else {
				span.SetStatus(codes.Error, verdict.String())
			}

			view := session.View{
				Content:   next,
				LoginPath: params.LoginPath,
			}
			view.Render(w, r.WithContext(ctx), verdict)
		})
	}
}
