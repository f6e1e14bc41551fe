package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session errors.
var (
	ErrIngestNotFound   = errors.New("ingestion not found")
	ErrIngestInProgress = errors.New("ingestion in progress")
	ErrUnknownProfile   = errors.New("unknown profile")
)

// Service defaults.
const (
	DefaultIngestTimeout = 5 * time.Minute
	DefaultSessionTTL    = 30 * time.Minute
)

// ServiceConfig configures a Service. Zero values use the defaults.
type ServiceConfig struct {
	Decoders      Decoders
	ReadAhead     int
	MaxConcurrent int
	MaxWait       time.Duration
	Timeout       time.Duration // per ingestion
	SessionTTL    time.Duration // idle time before a finished session is dropped
	Profile       string        // default profile key
}

// Service runs ingestions in the background and keeps their datasets
// available for review and editing until they are finalized, reset or
// expire.
type Service struct {
	cfg     ServiceConfig
	limiter *IngestLimiter
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*session
}

type session struct {
	id        string
	profile   string
	fileNames []string
	orch      *Orchestrator
	done      chan struct{}

	mu        sync.Mutex // guards the fields below
	progress  Progress
	dataset   *Dataset
	err       error
	listeners []chan Progress
	lastUsed  time.Time
}

// NewService creates a Service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Decoders == nil {
		cfg.Decoders = DefaultDecoders()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultIngestTimeout
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if cfg.Profile == "" {
		cfg.Profile = DefaultProfileKey
	}
	return &Service{
		cfg:      cfg,
		limiter:  NewIngestLimiter(cfg.MaxConcurrent, cfg.MaxWait),
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

// Limiter exposes the ingestion limiter for monitoring and shutdown.
func (s *Service) Limiter() *IngestLimiter {
	return s.limiter
}

// resolveProfile returns the validator for key, or the default profile's
// when key is empty. With nothing registered the default rule set is used.
func (s *Service) resolveProfile(key string) (string, *Validator, error) {
	if key == "" {
		key = s.cfg.Profile
	}
	p, err := ResolveProfile(key)
	if err != nil {
		return "", nil, err
	}
	return p.Key, p.Validator(), nil
}

// StartIngest begins an asynchronous ingestion and returns its ID.
// Use SubscribeProgress for updates and Dataset once it has merged.
//
// Returns ErrTooManyIngestions if no slot becomes available in time.
func (s *Service) StartIngest(ctx context.Context, profile string, files []File) (string, error) {
	if len(files) == 0 {
		return "", ErrNoFiles
	}
	profile, validator, err := s.resolveProfile(profile)
	if err != nil {
		return "", err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return "", err
	}

	id := uuid.New().String()
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name()
	}

	sess := &session{
		id:        id,
		profile:   profile,
		fileNames: names,
		orch: NewOrchestrator(Options{
			Decoders:  s.cfg.Decoders,
			Validator: validator,
			ReadAhead: s.cfg.ReadAhead,
			Logger:    slog.Default().With("ingest_id", id),
		}),
		done: make(chan struct{}),
		progress: Progress{
			IngestID: id,
			State:    StateIngesting,
			Total:    len(files),
		},
		lastUsed: s.now(),
	}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	slog.Info("ingestion started",
		"ingest_id", id,
		"profile", profile,
		"files", names,
		"client_ip", ClientIPFromContext(ctx),
		"user_agent", UserAgentFromContext(ctx),
	)

	// Process in background with panic recovery to ensure limiter release
	go func() {
		defer s.limiter.Release()
		defer func() {
			if r := recover(); r != nil {
				slog.Error("panic in ingestion", "ingest_id", id, "panic", r)
				sess.finish(nil, fmt.Errorf("internal error: %v", r), StateFailed)
			}
		}()
		s.run(sess, files)
	}()

	return id, nil
}

// run drives one session's orchestrator to completion.
func (s *Service) run(sess *session, files []File) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
	defer cancel()

	start := s.now()
	ds, err := sess.orch.Ingest(ctx, files, func(p Progress) {
		p.IngestID = sess.id
		sess.setProgress(p)
	})

	state := sess.orch.State()
	switch {
	case err == nil:
		slog.Info("ingestion merged",
			"ingest_id", sess.id,
			"rows", len(ds.Rows),
			"diagnostics", len(ds.Diagnostics),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	case IsCancelled(err):
		slog.Info("ingestion cancelled", "ingest_id", sess.id)
	default:
		slog.Warn("ingestion failed",
			"ingest_id", sess.id,
			"file", FailingFile(err),
			"error", err,
		)
	}
	sess.finish(ds, err, state)
}

func (sess *session) setProgress(p Progress) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.progress = p
	sess.notifyLocked()
}

// finish records the outcome, closes every listener and marks the session done.
func (sess *session) finish(ds *Dataset, err error, state State) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	select {
	case <-sess.done:
		return
	default:
	}

	sess.dataset = ds
	sess.err = err
	sess.progress.State = state
	if err != nil {
		sess.progress.Error = FormatUserError(err)
	}
	sess.notifyLocked()

	for _, ch := range sess.listeners {
		close(ch)
	}
	sess.listeners = nil
	close(sess.done)
}

// notifyLocked sends the current progress to all listeners.
// Slow listeners miss updates rather than block ingestion.
func (sess *session) notifyLocked() {
	for _, ch := range sess.listeners {
		select {
		case ch <- sess.progress:
		default:
		}
	}
}

func (sess *session) finished() bool {
	select {
	case <-sess.done:
		return true
	default:
		return false
	}
}

func (s *Service) lookup(id string) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrIngestNotFound, id)
	}
	sess.mu.Lock()
	sess.lastUsed = s.now()
	sess.mu.Unlock()
	return sess, nil
}

// SubscribeProgress returns a channel that receives progress updates.
// The current progress is sent immediately and the channel is closed when
// the ingestion ends.
func (s *Service) SubscribeProgress(id string) (<-chan Progress, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	ch := make(chan Progress, 10)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	ch <- sess.progress
	if sess.finished() {
		close(ch)
		return ch, nil
	}
	sess.listeners = append(sess.listeners, ch)
	return ch, nil
}

// Progress returns the current progress without blocking.
func (s *Service) Progress(id string) (Progress, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return Progress{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.progress, nil
}

// Cancel asks a running ingestion to stop at its next file boundary.
// The session is kept so clients can observe the cancelled state.
func (s *Service) Cancel(id string) error {
	sess, err := s.lookup(id)
	if err != nil {
		return err
	}
	sess.orch.Cancel()
	return nil
}

// Wait blocks until the ingestion ends or ctx is done and returns its result.
func (s *Service) Wait(ctx context.Context, id string) (*Dataset, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	select {
	case <-sess.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.dataset, sess.err
}

// Dataset returns the merged dataset. It returns ErrIngestInProgress while
// the ingestion is still running and the ingestion's error if it failed.
func (s *Service) Dataset(id string) (*Dataset, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if !sess.finished() {
		return nil, ErrIngestInProgress
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.err != nil {
		return nil, sess.err
	}
	return sess.dataset, nil
}

// Edit applies one cell edit to a merged dataset and stores the result.
// Edits on the same session are serialized.
func (s *Service) Edit(id string, rowIndex int, columnKey, value string) (*Dataset, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if !sess.finished() {
		return nil, ErrIngestInProgress
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.err != nil {
		return nil, sess.err
	}

	old := sess.dataset.Rows
	next, err := sess.dataset.ApplyEdit(rowIndex, columnKey, value)
	if err != nil {
		return nil, err
	}
	sess.dataset = next

	slog.Info("cell edited",
		"ingest_id", id,
		"row", rowIndex,
		"column", columnKey,
		"old_value", old[rowIndex].Value(columnKey),
		"new_value", value,
		"row_diagnostics", len(next.RowDiagnostics(rowIndex)),
	)
	return next, nil
}

// Finalize returns the reviewed dataset and ends the session.
func (s *Service) Finalize(id string) (*Dataset, error) {
	ds, err := s.Dataset(id)
	if err != nil {
		return nil, err
	}
	s.remove(id)
	slog.Info("ingestion finalized",
		"ingest_id", id,
		"rows", len(ds.Rows),
		"summary", ds.Summary,
	)
	return ds, nil
}

// Reset cancels the ingestion if it is still running and drops the session.
func (s *Service) Reset(id string) error {
	if _, err := s.lookup(id); err != nil {
		return err
	}
	s.remove(id)
	return nil
}

func (s *Service) remove(id string) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if ok {
		sess.orch.Reset()
	}
}

// SessionCount returns the number of tracked sessions.
func (s *Service) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// ExpireSessions drops finished sessions unused for longer than the TTL
// and returns how many were removed.
func (s *Service) ExpireSessions() int {
	cutoff := s.now().Add(-s.cfg.SessionTTL)

	s.mu.RLock()
	var stale []string
	for id, sess := range s.sessions {
		sess.mu.Lock()
		expired := sess.lastUsed.Before(cutoff)
		sess.mu.Unlock()
		if expired && sess.finished() {
			stale = append(stale, id)
		}
	}
	s.mu.RUnlock()

	for _, id := range stale {
		s.remove(id)
	}
	return len(stale)
}

// StartSessionJanitor expires idle sessions every interval until ctx is
// cancelled. It blocks; run it in its own goroutine.
func (s *Service) StartSessionJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = s.cfg.SessionTTL / 2
	}
	slog.Info("session janitor started", "interval", interval, "ttl", s.cfg.SessionTTL)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session janitor stopped")
			return
		case <-ticker.C:
			if n := s.ExpireSessions(); n > 0 {
				slog.Debug("expired ingestion sessions", "count", n)
			}
		}
	}
}

// Shutdown cancels every running ingestion and waits for them to return.
func (s *Service) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	for _, sess := range s.sessions {
		sess.orch.Cancel()
	}
	s.mu.RUnlock()
	return s.limiter.WaitForDrain(ctx)
}
