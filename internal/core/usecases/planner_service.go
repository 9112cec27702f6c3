package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/laufrunde/internal/core/domain"
	"github.com/samirrijal/laufrunde/internal/core/ports"
)

// MaxTargetKm is the longest loop a session accepts. Longer targets put the
// loop corners tens of kilometres out, beyond what one routing call handles.
const MaxTargetKm = 100.0

// NoRouteMessage is shown when no direction produced a loop.
const NoRouteMessage = "No loop could be found. The routing service may be unreachable or this start point is unsuitable; try another location or distance."

// OptionGenerator produces loop options for a start point.
type OptionGenerator interface {
	GenerateOptions(ctx context.Context, origin domain.GeoPoint, targetKm float64, observers ...ports.SearchObserver) ([]domain.RouteOption, error)
}

type inflight struct {
	generation int
	cancel     context.CancelFunc
}

// PlannerService drives planning sessions through their lifecycle.
// All state changes go through domain.Reduce.
type PlannerService struct {
	sessions ports.SessionStore
	options  OptionGenerator
	export   *ExportService
	saved    *SavedRouteService
	events   ports.EventPublisher

	mu       sync.Mutex
	inflight map[string]inflight
}

// NewPlannerService creates a new PlannerService. events may be nil.
func NewPlannerService(sessions ports.SessionStore, options OptionGenerator, export *ExportService, saved *SavedRouteService, events ports.EventPublisher) *PlannerService {
	return &PlannerService{
		sessions: sessions,
		options:  options,
		export:   export,
		saved:    saved,
		events:   events,
		inflight: make(map[string]inflight),
	}
}

// Create starts a new session in the planning state.
func (p *PlannerService) Create(ctx context.Context, origin domain.GeoPoint, targetKm float64) (*domain.PlanSession, error) {
	if err := validateInput(origin, targetKm); err != nil {
		return nil, err
	}
	s := domain.NewPlanSession(uuid.NewString(), origin, targetKm)
	if err := p.sessions.Put(ctx, &s); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return &s, nil
}

// Get returns a session.
func (p *PlannerService) Get(ctx context.Context, id string) (*domain.PlanSession, error) {
	return p.sessions.Get(ctx, id)
}

// UpdateInput changes start point or distance. Any running search for the
// session is cancelled and its result will be discarded.
func (p *PlannerService) UpdateInput(ctx context.Context, id string, origin domain.GeoPoint, targetKm float64) (*domain.PlanSession, error) {
	if err := validateInput(origin, targetKm); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelLocked(id)
	return p.applyLocked(ctx, id, domain.InputChanged{Origin: origin, TargetKm: targetKm})
}

// Generate searches for loop options and moves the session to previewing.
// On domain.ErrNoRouteFound the session is back in planning with a message.
func (p *PlannerService) Generate(ctx context.Context, id string) (*domain.PlanSession, error) {
	p.mu.Lock()
	current, err := p.sessions.Get(ctx, id)
	if err != nil {
		p.mu.Unlock()
		return nil, err
	}
	gen := current.Generation
	started, err := p.applyLocked(ctx, id, domain.SearchStarted{Generation: gen})
	if err != nil {
		p.mu.Unlock()
		return nil, err
	}
	searchCtx, cancel := context.WithCancel(ctx)
	p.inflight[id] = inflight{generation: gen, cancel: cancel}
	p.mu.Unlock()

	defer func() {
		cancel()
		p.mu.Lock()
		if f, ok := p.inflight[id]; ok && f.generation == gen {
			delete(p.inflight, id)
		}
		p.mu.Unlock()
	}()

	progress := &progressObserver{sessionID: id, events: p.events}
	opts, searchErr := p.options.GenerateOptions(searchCtx, started.Origin, started.TargetKm, progress)

	p.mu.Lock()
	defer p.mu.Unlock()

	// Persist with a context that survives a dropped client connection so the
	// session never stays in searching.
	storeCtx := context.WithoutCancel(ctx)

	var ev domain.PlanEvent
	switch {
	case searchErr == nil:
		ev = domain.OptionsReady{Generation: gen, Options: opts}
	case errors.Is(searchErr, domain.ErrNoRouteFound):
		ev = domain.SearchFailed{Generation: gen, Message: NoRouteMessage}
	default:
		ev = domain.SearchFailed{Generation: gen, Message: "Planning was interrupted. Please try again."}
	}

	next, err := p.applyLocked(storeCtx, id, ev)
	if err != nil {
		return next, err
	}
	if searchErr != nil {
		return next, searchErr
	}
	return next, nil
}

// Select picks one of the previewed options.
func (p *PlannerService) Select(ctx context.Context, id string, index int) (*domain.PlanSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.applyLocked(ctx, id, domain.OptionSelected{Index: index})
}

// Confirm locks in the selected option.
func (p *PlannerService) Confirm(ctx context.Context, id string) (*domain.PlanSession, error) {
	p.mu.Lock()
	s, err := p.applyLocked(ctx, id, domain.Confirmed{})
	p.mu.Unlock()
	if err != nil {
		return nil, err
	}
	publishRouteEvent(ctx, p.events, &domain.RouteEvent{
		Type:       domain.RouteConfirmed,
		SessionID:  s.ID,
		DistanceKm: s.Route.DistanceKm(),
		Origin:     s.Origin,
		OccurredAt: time.Now().UTC(),
	})
	return s, nil
}

// Export builds the navigation hand-off for the confirmed route.
func (p *PlannerService) Export(ctx context.Context, id, name string) (*domain.PlanSession, *domain.ExportLink, error) {
	p.mu.Lock()
	current, err := p.sessions.Get(ctx, id)
	if err != nil {
		p.mu.Unlock()
		return nil, nil, err
	}
	if current.Route == nil {
		p.mu.Unlock()
		return nil, nil, fmt.Errorf("%w: no confirmed route to export", domain.ErrPrecondition)
	}
	link, err := p.export.Link(name, current.Origin, current.Route.Candidate.Waypoints, current.Route.DistanceKm())
	if err != nil {
		p.mu.Unlock()
		return nil, nil, err
	}
	s, err := p.applyLocked(ctx, id, domain.Exported{})
	p.mu.Unlock()
	if err != nil {
		return nil, nil, err
	}

	publishRouteEvent(ctx, p.events, &domain.RouteEvent{
		Type:       domain.RouteExported,
		SessionID:  s.ID,
		RouteID:    s.SavedRouteID,
		DistanceKm: s.Route.DistanceKm(),
		Origin:     s.Origin,
		OccurredAt: time.Now().UTC(),
	})
	return s, link, nil
}

// Reset discards the session's options and route.
func (p *PlannerService) Reset(ctx context.Context, id string) (*domain.PlanSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelLocked(id)
	return p.applyLocked(ctx, id, domain.Reset{})
}

// Save persists the session's confirmed route. When the session is reset or
// its input changes while the record is being written, the record is
// deleted again and domain.ErrStaleResult is returned.
func (p *PlannerService) Save(ctx context.Context, id, name string) (*domain.PlanSession, *domain.SavedRoute, error) {
	p.mu.Lock()
	current, err := p.sessions.Get(ctx, id)
	p.mu.Unlock()
	if err != nil {
		return nil, nil, err
	}
	if current.Route == nil {
		return nil, nil, fmt.Errorf("%w: confirm a route before saving", domain.ErrPrecondition)
	}
	gen := current.Generation

	rec, err := p.saved.Save(ctx, name, current.Origin, *current.Route)
	if err != nil {
		return nil, nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	latest, err := p.sessions.Get(ctx, id)
	if err == nil && latest.Generation != gen {
		err = fmt.Errorf("%w: plan changed while saving", domain.ErrStaleResult)
	}
	var s *domain.PlanSession
	if err == nil {
		s, err = p.applyLocked(ctx, id, domain.RouteSaved{ID: rec.ID})
	}
	if err != nil {
		// Remove the record so a failed save leaves nothing behind.
		if delErr := p.saved.Delete(context.WithoutCancel(ctx), rec.ID); delErr != nil && !errors.Is(delErr, domain.ErrNotFound) {
			slog.ErrorContext(ctx, "remove orphaned saved route", "route_id", rec.ID, "error", delErr)
		}
		return latest, nil, err
	}
	return s, rec, nil
}

// LoadSaved opens a saved route in a fresh session, already confirmed.
func (p *PlannerService) LoadSaved(ctx context.Context, routeID string) (*domain.PlanSession, error) {
	rec, err := p.saved.Get(ctx, routeID)
	if err != nil {
		return nil, err
	}
	s := domain.NewPlanSession(uuid.NewString(), rec.Origin, rec.DistanceKm)
	s, err = domain.Reduce(s, domain.SavedRouteLoaded{Route: *rec})
	if err != nil {
		return nil, err
	}
	if err := p.sessions.Put(ctx, &s); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return &s, nil
}

// applyLocked loads, reduces and stores a session. p.mu must be held.
// On a rejected event the unchanged session is returned with the error.
func (p *PlannerService) applyLocked(ctx context.Context, id string, ev domain.PlanEvent) (*domain.PlanSession, error) {
	current, err := p.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := domain.Reduce(*current, ev)
	if err != nil {
		return current, err
	}
	if err := p.sessions.Put(ctx, &next); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return &next, nil
}

func (p *PlannerService) cancelLocked(id string) {
	if f, ok := p.inflight[id]; ok {
		f.cancel()
		delete(p.inflight, id)
	}
}

func validateInput(origin domain.GeoPoint, targetKm float64) error {
	if err := origin.Validate(); err != nil {
		return err
	}
	if targetKm <= 0 || targetKm > MaxTargetKm {
		return fmt.Errorf("%w: target distance must be in (0, %v] km, got %v", domain.ErrInvalidInput, MaxTargetKm, targetKm)
	}
	return nil
}

// progressObserver forwards attempt reports of one session to the broker.
type progressObserver struct {
	sessionID string
	events    ports.EventPublisher
}

func (o *progressObserver) ObserveAttempt(ctx context.Context, report domain.AttemptReport) {
	if o.events == nil {
		return
	}
	if err := o.events.PublishProgress(ctx, o.sessionID, report); err != nil {
		slog.DebugContext(ctx, "publish progress failed", "session_id", o.sessionID, "error", err)
	}
}
