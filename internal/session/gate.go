package session

import (
	"context"
	"sync"
	"time"

	"github.com/fittrack/web/internal/telemetry/metrics"
	"github.com/fittrack/web/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=session_test

// Verifier asks the backend whether a credential grants protected access.
// A nil error means the backend answered with a 2xx.
type Verifier interface {
	VerifySession(ctx context.Context, cred *Credential) error
}

type GateParams struct {
	// Timeout bounds a single verification; zero leaves it to the verifier.
	Timeout time.Duration
	Metrics *metrics.Manager
}

// Gate guards protected content. Each Mount verifies the credential exactly once.
type Gate struct {
	verifier       Verifier
	timeout        time.Duration
	metricsManager *metrics.Manager
}

func NewGate(verifier Verifier, params GateParams) *Gate {
	return &Gate{
		verifier:       verifier,
		timeout:        params.Timeout,
		metricsManager: params.Metrics,
	}
}

// Mount is one activation of the gate.
type Mount struct {
	// lifecycleMu serializes settling against unmounting
	lifecycleMu sync.Mutex
	mounted     bool
	cancel      context.CancelFunc
	onSettle    func(Verdict)
	detached    chan struct{}

	verdictMu sync.RWMutex
	verdict   Verdict
	settled   chan struct{}

	metricsManager *metrics.Manager
}

// Mount enters Unknown and issues the single verification request in the background.
// onSettle, if set, runs at most once and only while still mounted. It must not call Unmount.
func (g *Gate) Mount(ctx context.Context, cred *Credential, onSettle func(Verdict)) *Mount {
	var verifyCtx context.Context
	var cancel context.CancelFunc
	if g.timeout > 0 {
		verifyCtx, cancel = context.WithTimeout(ctx, g.timeout)
	} else {
		verifyCtx, cancel = context.WithCancel(ctx)
	}

	m := &Mount{
		mounted:        true,
		cancel:         cancel,
		onSettle:       onSettle,
		detached:       make(chan struct{}),
		verdict:        Unknown,
		settled:        make(chan struct{}),
		metricsManager: g.metricsManager,
	}

	go m.verify(verifyCtx, g.verifier, cred)

	return m
}

func (m *Mount) verify(ctx context.Context, verifier Verifier, cred *Credential) {
	defer m.cancel()

	ctx, span := tracing.GlobalTracer.Start(ctx, "sessionGate.verify")
	defer span.End()
	span.SetAttributes(attribute.Bool("credential.present", !cred.Empty()))

	start := time.Now()
	verdict := Unauthorized
	func() {
		defer func() {
			if r := recover(); r != nil {
				log.Errorf("session gate, verifier panic: %v", r)
			}
		}()

		if err := verifier.VerifySession(ctx, cred); err != nil {
			log.Tracef("session gate, verification failed: %s", err)
			span.RecordError(err)
			return
		}
		verdict = Authorized
	}()

	if m.metricsManager != nil {
		m.metricsManager.HistGateVerifyDuration.Observe(time.Since(start).Seconds())
	}

	if verdict == Authorized {
		span.SetStatus(codes.Ok, verdict.String())
	} else {
		span.SetStatus(codes.Error, verdict.String())
	}

	if !m.settle(verdict) {
		span.AddEvent("discarded after unmount")
	}
}

// settle applies the verdict once, unless the mount was already detached.
func (m *Mount) settle(verdict Verdict) bool {
	m.lifecycleMu.Lock()
	defer m.lifecycleMu.Unlock()

	if !m.mounted {
		if m.metricsManager != nil {
			m.metricsManager.CounterGateDiscarded.Inc()
		}
		log.Tracef("session gate, late verdict [%s] discarded", verdict)
		return false
	}

	m.verdictMu.Lock()
	m.verdict = verdict
	m.verdictMu.Unlock()

	if m.metricsManager != nil {
		m.metricsManager.CounterGateVerdicts.WithLabelValues(verdict.String()).Inc()
	}

	if m.onSettle != nil {
		m.onSettle(verdict)
	}
	close(m.settled)

	return true
}

// Verdict returns the current state, never triggering a new verification.
func (m *Mount) Verdict() Verdict {
	m.verdictMu.RLock()
	defer m.verdictMu.RUnlock()
	return m.verdict
}

// Settled is closed once the verdict leaves Unknown and onSettle returned.
func (m *Mount) Settled() <-chan struct{} {
	return m.settled
}

// Wait blocks until the verdict settles, the mount is detached or ctx is done.
// Returns Unknown in the latter two cases.
func (m *Mount) Wait(ctx context.Context) Verdict {
	select {
	case <-m.settled:
		return m.Verdict()
	case <-m.detached:
	case <-ctx.Done():
	}

	// settled may have raced with the other cases
	select {
	case <-m.settled:
		return m.Verdict()
	default:
		return Unknown
	}
}

// Unmount detaches the mount and cancels the in-flight verification.
// Safe to call more than once.
func (m *Mount) Unmount() {
	m.lifecycleMu.Lock()
	defer m.lifecycleMu.Unlock()

	if !m.mounted {
		return
	}
	m.mounted = false
	close(m.detached)
	m.cancel()
}
