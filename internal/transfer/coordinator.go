package transfer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/tabdock/internal/cachemanager"
	"github.com/zjrosen/tabdock/internal/domain"
	"github.com/zjrosen/tabdock/internal/log"
	"github.com/zjrosen/tabdock/internal/pubsub"
	"github.com/zjrosen/tabdock/internal/tabs"
	"github.com/zjrosen/tabdock/internal/tracing"
)

const (
	// DefaultTimeout is how long a source waits for the target's response.
	DefaultTimeout = 3 * time.Second
	// DefaultAnsweredTTL is how long a responder remembers answered requests.
	DefaultAnsweredTTL = time.Minute
)

// Sentinel errors returned by the coordinator.
var (
	ErrNotTransferable = errors.New("tab is not transferable")
	ErrInvalidTarget   = errors.New("invalid target window")
	ErrRejected        = errors.New("transfer rejected by target")
	ErrTimeout         = errors.New("transfer timed out")
	ErrPublish         = errors.New("failed to publish transfer request")
	ErrCancelled       = errors.New("transfer cancelled")
	ErrCreateWindow    = errors.New("failed to create window")
	ErrBusClosed       = errors.New("transfer bus closed")
)

// Host is the window side of a transfer. Implementations guard their own tab
// collection; the coordinator calls them from arbitrary goroutines.
type Host interface {
	WindowID() domain.WindowID
	// TransferCandidate returns a value copy of the tab at index plus the
	// window's context directory, or ok=false when the tab may not leave.
	TransferCandidate(index int) (tab tabs.Tab, contextDir string, ok bool)
	// CommitTransfer removes the tab with id and reports whether it was there.
	CommitTransfer(id tabs.ID) bool
	// AdoptTab appends tab and activates it.
	AdoptTab(tab tabs.Tab, contextDir string) error
}

// NewWindowConfig places a window created by a detach.
type NewWindowConfig struct {
	// Position is the requested top-left corner; nil lets the platform choose.
	Position *domain.Point
	// Directory is the new window's context directory.
	Directory string
}

// WindowFactory creates a live window seeded with a tab. The window must be
// able to receive requests before CreateWindow returns.
type WindowFactory interface {
	CreateWindow(ctx context.Context, seed tabs.Tab, cfg NewWindowConfig) (domain.WindowID, error)
}

// Config configures a Coordinator.
type Config struct {
	Host Host
	Bus  *Bus
	// Factory is required for MoveToNewWindow only.
	Factory WindowFactory
	// Tracer defaults to a no-op tracer.
	Tracer      trace.Tracer
	Timeout     time.Duration
	AnsweredTTL time.Duration
}

// Coordinator runs both halves of the transfer protocol for one window: it
// originates requests for tabs leaving the window and answers requests
// addressed to it.
type Coordinator struct {
	host        Host
	bus         *Bus
	factory     WindowFactory
	tracer      trace.Tracer
	timeout     time.Duration
	answeredTTL time.Duration
	answered    cachemanager.Cache[domain.RequestID, time.Time]
}

// New creates a Coordinator.
func New(cfg Config) (*Coordinator, error) {
	if cfg.Host == nil {
		return nil, errors.New("transfer: host is required")
	}
	if cfg.Bus == nil {
		return nil, errors.New("transfer: bus is required")
	}
	if cfg.Tracer == nil {
		cfg.Tracer = noop.NewTracerProvider().Tracer("tabdock")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.AnsweredTTL <= 0 {
		cfg.AnsweredTTL = DefaultAnsweredTTL
	}
	// The answered set must outlive any request the source could still be
	// waiting on.
	if cfg.AnsweredTTL < cfg.Timeout {
		cfg.AnsweredTTL = cfg.Timeout
	}

	return &Coordinator{
		host:        cfg.Host,
		bus:         cfg.Bus,
		factory:     cfg.Factory,
		tracer:      cfg.Tracer,
		timeout:     cfg.Timeout,
		answeredTTL: cfg.AnsweredTTL,
		answered:    cachemanager.NewGoCache[domain.RequestID, time.Time]("transfer-answered", cfg.AnsweredTTL),
	}, nil
}

// MoveToWindow offers the tab at index to target and waits for the answer.
// The tab is removed from the host only on a matching Ack; every other path
// leaves the host untouched. A non-nil error always accompanies a result
// whose Outcome is not OutcomeCommitted.
func (c *Coordinator) MoveToWindow(ctx context.Context, index int, target domain.WindowID) (Result, error) {
	source := c.host.WindowID()
	ctx, span := c.tracer.Start(ctx, tracing.SpanMoveToWindow,
		trace.WithAttributes(
			attribute.String(tracing.AttrFlow, "existing"),
			attribute.String(tracing.AttrSourceWindow, source.String()),
			attribute.String(tracing.AttrTargetWindow, target.String()),
			attribute.Int(tracing.AttrTabIndex, index),
		),
	)
	defer span.End()

	result := Result{Target: target}
	if target == "" || target == source {
		result.Outcome = OutcomeIneligible
		return c.finish(span, result, ErrInvalidTarget)
	}

	tab, dir, ok := c.host.TransferCandidate(index)
	if !ok {
		result.Outcome = OutcomeIneligible
		return c.finish(span, result, ErrNotTransferable)
	}

	req := Request{
		ID:         domain.NewRequestID(),
		Source:     source,
		Target:     target,
		Tab:        tab,
		ContextDir: dir,
		Deadline:   time.Now().Add(c.timeout),
	}
	result.RequestID = req.ID
	result.TabID = tab.ID
	span.SetAttributes(
		attribute.String(tracing.AttrRequestID, req.ID.String()),
		attribute.String(tracing.AttrTabID, tab.ID.String()),
	)

	if ctx.Err() != nil {
		result.Outcome = OutcomeCancelled
		return c.finish(span, result, ErrCancelled)
	}

	// Subscribe before publishing so a fast responder cannot answer into the void.
	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	responses := c.bus.SubscribeResponses(waitCtx)

	if err := c.bus.PublishRequest(req); err != nil {
		log.ErrorErr(log.CatTransfer, "Failed to publish transfer request", err,
			"request", req.ID, "target", target.Short())
		result.Outcome = OutcomeAborted
		return c.finish(span, result, fmt.Errorf("%w: %w", ErrPublish, err))
	}
	span.AddEvent(tracing.EventRequestPublished)
	log.Debug(log.CatTransfer, "Transfer request published",
		"request", req.ID, "source", source.Short(), "target", target.Short(), "tab", tab.DisplayName())

	resp, err := c.await(ctx, req.ID, responses, span)
	switch {
	case errors.Is(err, ErrTimeout):
		log.Warn(log.CatTransfer, "Transfer timed out, tab stays in source",
			"request", req.ID, "target", target.Short(), "timeout", c.timeout)
		result.Outcome = OutcomeTimedOut
		return c.finish(span, result, err)
	case errors.Is(err, ErrCancelled):
		log.Info(log.CatTransfer, "Transfer cancelled", "request", req.ID)
		result.Outcome = OutcomeCancelled
		return c.finish(span, result, err)
	case err != nil:
		log.ErrorErr(log.CatTransfer, "Transfer aborted", err, "request", req.ID)
		result.Outcome = OutcomeAborted
		return c.finish(span, result, err)
	}

	if resp.Kind != KindAck {
		log.Warn(log.CatTransfer, "Transfer rejected by target",
			"request", req.ID, "target", target.Short(), "reason", resp.Reason)
		result.Outcome = OutcomeRejected
		result.Reason = resp.Reason
		return c.finish(span, result, fmt.Errorf("%w: %s", ErrRejected, resp.Reason))
	}

	c.commit(span, req.ID, tab)
	result.Outcome = OutcomeCommitted
	return c.finish(span, result, nil)
}

// MoveToNewWindow creates a window seeded with the tab at index and then
// removes the tab from the host. When creation fails the host is untouched.
func (c *Coordinator) MoveToNewWindow(ctx context.Context, index int, cfg NewWindowConfig) (Result, error) {
	source := c.host.WindowID()
	ctx, span := c.tracer.Start(ctx, tracing.SpanMoveToNewWindow,
		trace.WithAttributes(
			attribute.String(tracing.AttrFlow, "new_window"),
			attribute.String(tracing.AttrSourceWindow, source.String()),
			attribute.Int(tracing.AttrTabIndex, index),
		),
	)
	defer span.End()

	var result Result
	tab, dir, ok := c.host.TransferCandidate(index)
	if !ok {
		result.Outcome = OutcomeIneligible
		return c.finish(span, result, ErrNotTransferable)
	}
	result.TabID = tab.ID
	span.SetAttributes(attribute.String(tracing.AttrTabID, tab.ID.String()))

	if c.factory == nil {
		result.Outcome = OutcomeAborted
		return c.finish(span, result, fmt.Errorf("%w: no window factory", ErrCreateWindow))
	}
	if cfg.Directory == "" {
		cfg.Directory = dir
	}

	id, err := c.factory.CreateWindow(ctx, tab, cfg)
	if err != nil {
		log.ErrorErr(log.CatTransfer, "Failed to create window for detached tab", err,
			"source", source.Short(), "tab", tab.DisplayName())
		result.Outcome = OutcomeAborted
		return c.finish(span, result, fmt.Errorf("%w: %w", ErrCreateWindow, err))
	}
	result.Target = id
	span.SetAttributes(attribute.String(tracing.AttrTargetWindow, id.String()))
	span.AddEvent(tracing.EventWindowCreated)

	c.commit(span, "", tab)
	result.Outcome = OutcomeCommitted
	return c.finish(span, result, nil)
}

// await blocks until the response for id arrives, the timeout elapses or ctx
// ends. Responses for other requests are skipped.
func (c *Coordinator) await(ctx context.Context, id domain.RequestID, responses <-chan pubsub.Event[Response], span trace.Span) (Response, error) {
	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return Response{}, ErrCancelled
		case <-timer.C:
			return Response{}, ErrTimeout
		case ev, ok := <-responses:
			if !ok {
				if ctx.Err() != nil {
					return Response{}, ErrCancelled
				}
				return Response{}, ErrBusClosed
			}
			if ev.Payload.RequestID != id {
				span.AddEvent(tracing.EventResponseIgnored)
				continue
			}
			span.AddEvent(tracing.EventResponseMatched,
				trace.WithAttributes(attribute.String("response.kind", ev.Payload.Kind.String())))
			return ev.Payload, nil
		}
	}
}

func (c *Coordinator) commit(span trace.Span, id domain.RequestID, tab tabs.Tab) {
	if !c.host.CommitTransfer(tab.ID) {
		// Closed by the user while the request was in flight; the target owns it now.
		log.Warn(log.CatTransfer, "Committed tab was already gone from source",
			"request", id, "tab", tab.ID)
	}
	span.AddEvent(tracing.EventCommitted)
	log.Info(log.CatTransfer, "Tab transferred", "request", id, "tab", tab.DisplayName())
}

func (c *Coordinator) finish(span trace.Span, result Result, err error) (Result, error) {
	span.SetAttributes(attribute.String(tracing.AttrOutcome, result.Outcome.String()))
	if err != nil {
		if result.Reason != "" {
			span.SetAttributes(attribute.String(tracing.AttrReason, result.Reason))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		result.Err = err
		return result, err
	}
	span.SetStatus(codes.Ok, "")
	return result, nil
}

// Serve answers requests from the given subscription until ctx ends or the
// channel closes. Subscribing is left to the caller so the window is
// reachable before Serve is scheduled.
func (c *Coordinator) Serve(ctx context.Context, requests <-chan pubsub.Event[Request]) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-requests:
			if !ok {
				return
			}
			c.HandleRequest(ctx, ev.Payload)
		}
	}
}

// HandleRequest answers req when it is addressed to the host. It returns the
// published response and true, or false when the request was not for this
// window or had already been answered.
func (c *Coordinator) HandleRequest(ctx context.Context, req Request) (Response, bool) {
	self := c.host.WindowID()
	if req.Target != self {
		return Response{}, false
	}
	if !c.answered.Add(req.ID, time.Now(), c.answeredTTL) {
		first, _ := c.answered.Get(req.ID)
		log.Debug(log.CatTransfer, "Ignoring duplicate transfer request", "request", req.ID, "answered", first.Format(time.RFC3339Nano))
		return Response{}, false
	}

	_, span := c.tracer.Start(ctx, tracing.SpanHandleRequest,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String(tracing.AttrRequestID, req.ID.String()),
			attribute.String(tracing.AttrSourceWindow, req.Source.String()),
			attribute.String(tracing.AttrTargetWindow, self.String()),
			attribute.String(tracing.AttrTabID, req.Tab.ID.String()),
		),
	)
	defer span.End()

	resp := c.decide(req, self)
	span.SetAttributes(attribute.String(tracing.AttrOutcome, resp.Kind.String()))
	if resp.Kind == KindNack {
		span.SetAttributes(attribute.String(tracing.AttrReason, resp.Reason))
		log.Warn(log.CatTransfer, "Rejecting transfer request",
			"request", req.ID, "source", req.Source.Short(), "reason", resp.Reason)
	}

	if err := c.bus.PublishResponse(resp); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.ErrorErr(log.CatTransfer, "Failed to publish transfer response", err, "request", req.ID)
	}
	return resp, true
}

func (c *Coordinator) decide(req Request, self domain.WindowID) Response {
	switch {
	case !req.ID.IsValid():
		return Nack(req.ID, self, "invalid request id")
	case req.Source == self:
		return Nack(req.ID, self, "source and target are the same window")
	case !req.Tab.IsFileBacked():
		return Nack(req.ID, self, ErrNotTransferable.Error())
	case !req.Deadline.IsZero() && time.Now().After(req.Deadline):
		return Nack(req.ID, self, "request expired")
	}
	if err := c.host.AdoptTab(req.Tab, req.ContextDir); err != nil {
		return Nack(req.ID, self, err.Error())
	}
	log.Info(log.CatTransfer, "Adopted transferred tab",
		"request", req.ID, "source", req.Source.Short(), "tab", req.Tab.DisplayName())
	return Ack(req.ID, self)
}
