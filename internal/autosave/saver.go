package autosave

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"checklist-cli/internal/model"
)

const DefaultDebounce = 3 * time.Second

var ErrClosed = errors.New("autosave: saver closed")

// Persister stores a working draft. store.Store satisfies it.
type Persister interface {
	SaveDraft(ctx context.Context, tpl model.Template) (model.Template, error)
}

// Saver debounces draft saves for one template and funnels every save, timer-driven or manual,
// through a single queue so two saves for the template never overlap.
type Saver struct {
	persister  Persister
	templateID int64
	debounce   time.Duration
	log        *zap.Logger
	onSaved    func(model.Template)

	mu      sync.Mutex
	timer   *time.Timer
	pending *model.Template
	gen     uint64 // bumped by every Notify
	saved   uint64 // highest gen persisted
	closed  bool
	wg      sync.WaitGroup

	saveMu sync.Mutex
	group  singleflight.Group
}

type Opts struct {
	TemplateID int64
	Debounce   time.Duration
	Logger     *zap.Logger

	// OnSaved receives the persisted draft (with store-assigned ids) after each successful save.
	OnSaved func(model.Template)
}

func New(p Persister, opts Opts) *Saver {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Saver{
		persister:  p,
		templateID: opts.TemplateID,
		debounce:   debounce,
		log:        log.With(zap.Int64("template_id", opts.TemplateID)),
		onSaved:    opts.OnSaved,
	}
}

// Notify records the latest edited snapshot and restarts the countdown. Only the last timer fires.
func (s *Saver) Notify(tpl model.Template) {
	if s == nil {
		return
	}
	snap := tpl.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.pending = &snap
	s.gen++
	if s.timer == nil {
		s.timer = time.AfterFunc(s.debounce, s.onTimer)
		return
	}
	s.timer.Reset(s.debounce)
}

// Pending reports whether edits are waiting to be saved.
func (s *Saver) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

func (s *Saver) onTimer() {
	s.mu.Lock()
	if s.closed || s.pending == nil {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	if err := s.run(context.Background()); err != nil {
		// Left pending; the next Notify or Flush retries.
		s.log.Warn("autosave failed", zap.Error(err))
	}
}

// Flush saves everything notified before the call, waiting for any save already in flight.
// Concurrent flushes share one save.
func (s *Saver) Flush(ctx context.Context) error {
	s.mu.Lock()
	target := s.gen
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()

	for {
		s.mu.Lock()
		done := s.saved >= target
		s.mu.Unlock()
		if done {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.run(ctx); err != nil {
			return err
		}
	}
}

// Close saves outstanding edits, stops the timer and waits for in-flight saves.
func (s *Saver) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()

	s.wg.Wait()
	return s.Flush(ctx)
}

func (s *Saver) run(ctx context.Context) error {
	key := fmt.Sprintf("template:%d", s.templateID)
	_, err, shared := s.group.Do(key, func() (any, error) {
		return nil, s.saveLatest(ctx)
	})
	if shared {
		s.log.Debug("joined in-flight save")
	}
	return err
}

func (s *Saver) saveLatest(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	snap, gen := s.pending, s.gen
	s.pending = nil
	s.mu.Unlock()
	if snap == nil {
		return nil
	}

	start := time.Now()
	saved, err := s.persister.SaveDraft(ctx, *snap)
	if err != nil {
		s.mu.Lock()
		if s.pending == nil {
			s.pending = snap
		}
		s.mu.Unlock()
		return fmt.Errorf("save draft: %w", err)
	}

	s.mu.Lock()
	if gen > s.saved {
		s.saved = gen
	}
	s.mu.Unlock()

	s.log.Debug("draft saved",
		zap.Int("items", len(saved.Items)),
		zap.Duration("took", time.Since(start)),
	)
	if s.onSaved != nil {
		s.onSaved(saved)
	}
	return nil
}
