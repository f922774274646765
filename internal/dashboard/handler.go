package dashboard

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/fittrack/web/internal/backend"
	"github.com/fittrack/web/internal/session"
	"github.com/fittrack/web/internal/telemetry/tracing"
	"github.com/fittrack/web/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Pages are the dashboard sub pages, each one a separate gate mount.
var Pages = []string{"workout", "wget", "nutrition", "nget", "bmi", "progress", "profile", "settings"}

type relayRoute struct {
	path    string
	methods []string
}

// data endpoints of the backend the dashboard pages read and write
var relayRoutes = []relayRoute{
	{path: "/api/workouts", methods: []string{"GET"}},
	{path: "/api/workouts/c", methods: []string{"POST"}},
	{path: "/api/workouts/{id}", methods: []string{"DELETE"}},
	{path: "/api/nutrition/g", methods: []string{"GET"}},
	{path: "/api/nutrition", methods: []string{"POST"}},
	{path: "/api/progress", methods: []string{"GET"}},
	{path: "/api/progress/add", methods: []string{"POST"}},
	{path: "/api/profile", methods: []string{"GET", "PUT"}},
	{path: "/api/profile/password", methods: []string{"PUT"}},
	{path: "/api/analytics/frequency", methods: []string{"GET"}},
	{path: "/api/metrics", methods: []string{"GET"}},
	{path: "/api/auth/me", methods: []string{"GET"}},
}

type relayClient interface {
	DoRaw(
		ctx context.Context,
		method, path string,
		cred *session.Credential,
		contentType string,
		body io.Reader,
	) (*backend.Response, error)
}

type Handler struct {
	client  relayClient
	gate    *session.Gate
	store   session.Store
	cookies session.CookieSettings
}

func NewHandler(
	client relayClient,
	gate *session.Gate,
	store session.Store,
	cookies session.CookieSettings,
) *Handler {
	return &Handler{
		client:  client,
		gate:    gate,
		store:   store,
		cookies: cookies,
	}
}

// SetupRoutes registers the gated pages, serving content through gated, and the data relay.
func (handler *Handler) SetupRoutes(
	mainRouter *mux.Router,
	gated func(next http.Handler) http.Handler,
	content http.Handler,
) {
	gatedContent := gated(content)
	mainRouter.Handle("/dashboard", gatedContent).Methods("GET").Name("dashboard")
	mainRouter.Handle("/dashboard/", gatedContent).Methods("GET").Name("dashboard")
	mainRouter.Handle(
		"/dashboard/{page:(?:"+strings.Join(Pages, "|")+")}",
		gatedContent,
	).Methods("GET").Name("dashboard-page")

	mainRouter.HandleFunc("/api/session", handler.handleSession).Methods("GET").Name("session")

	for _, route := range relayRoutes {
		// OPTIONS lets the cors middleware answer the SPA preflight
		methods := append(append([]string{}, route.methods...), "OPTIONS")
		mainRouter.HandleFunc(route.path, handler.handleRelay).Methods(methods...).Name("relay " + route.path)
	}
}

// handleSession runs one gate mount and reports the verdict.
func (handler *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "dashboardHandler.session")
	defer span.End()

	w.Header().Set("Cache-Control", "no-store")

	cred := session.CredentialFromRequest(ctx, handler.store, handler.cookies, r)
	mount := handler.gate.Mount(ctx, cred, nil)
	defer mount.Unmount()

	verdict := mount.Wait(ctx)
	if ctx.Err() != nil {
		return
	}
	span.SetAttributes(attribute.String("session.verdict", verdict.String()))

	status := http.StatusUnauthorized
	if verdict == session.Authorized {
		status = http.StatusOK
	}
	pkg.WriteJSON(w, status, map[string]string{"verdict": verdict.String()})
}

func (handler *Handler) handleRelay(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "dashboardHandler.relay")
	defer span.End()

	cred := session.CredentialFromRequest(ctx, handler.store, handler.cookies, r)
	if cred.Empty() {
		span.SetStatus(codes.Error, "no-credential")
		pkg.WriteMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	path := r.URL.EscapedPath()
	if r.URL.RawQuery != "" {
		path += "?" + r.URL.RawQuery
	}
	span.SetAttributes(attribute.String("relay.path", path))

	var body io.Reader
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		body = r.Body
	}

	resp, err := handler.client.DoRaw(ctx, r.Method, path, cred, r.Header.Get("Content-Type"), body)
	if resp == nil {
		log.Errorf("relay %s %s: %s", r.Method, path, err)
		span.SetStatus(codes.Error, err.Error())
		pkg.WriteMessage(w, backend.StatusCode(err), "Backend unavailable")
		return
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "relayed")
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = pkg.ContentType.JSON
	}
	w.Header().Set("Cache-Control", "no-store")
	pkg.WriteResponseBytes(w, contentType, resp.Body, resp.StatusCode)
}
