package scheduler

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/vnykmshr/forkjoin/pkg/common/validation"
	"github.com/vnykmshr/forkjoin/pkg/forkjoin"
	"github.com/vnykmshr/forkjoin/pkg/metrics"
)

// Entry describes a scheduled submission.
type Entry struct {
	ID       string
	RunAt    time.Time
	Interval time.Duration // Zero for one-time and cron entries
	Created  time.Time
}

// Scheduler submits fork/join tasks into a pool at scheduled times, with
// one-shot, repeating and cron triggers.
type Scheduler interface {
	// Schedule submits task once at runAt.
	Schedule(id string, task forkjoin.Task, runAt time.Time) error
	// ScheduleAfter submits task once after delay.
	ScheduleAfter(id string, task forkjoin.Task, delay time.Duration) error
	// ScheduleRepeating submits task now and then every interval.
	ScheduleRepeating(id string, task forkjoin.Task, interval time.Duration) error
	// ScheduleCron submits task on a cron schedule. Expressions use the
	// six-field form with seconds, e.g. "*/5 * * * * *".
	ScheduleCron(id string, cronExpr string, task forkjoin.Task) error

	// Cancel removes a scheduled entry. Returns false if id is unknown.
	Cancel(id string) bool
	// CancelAll removes every scheduled entry.
	CancelAll()
	// List returns the scheduled entries ordered by next run time.
	List() []Entry

	// Start begins watching the schedule. A stopped scheduler may be
	// started again; its entries survive the stop.
	Start() error
	// Stop halts scheduling; the returned channel closes when the
	// scheduler, and its pool if owned, have stopped.
	Stop() <-chan struct{}
}

// Config holds scheduler configuration.
type Config struct {
	// Pool receives the scheduled submissions. If nil, the scheduler
	// creates and owns a default forkjoin pool.
	Pool forkjoin.Pool

	// Location is the timezone for cron evaluation. Defaults to
	// time.Local.
	Location *time.Location

	// TickInterval is how often ready entries are checked for. Defaults
	// to 50ms.
	TickInterval time.Duration

	// MaxEntries caps the number of scheduled entries. Defaults to
	// 10000.
	MaxEntries int

	// Metrics receives the scheduled-task counter when set.
	Metrics *metrics.Registry

	// Name labels this scheduler in metrics. Defaults to "default".
	Name string
}

type scheduledEntry struct {
	id           string
	task         forkjoin.Task
	runAt        time.Time
	interval     time.Duration
	cronSchedule cron.Schedule
	created      time.Time
}

type scheduler struct {
	pool         forkjoin.Pool
	ownPool      bool
	location     *time.Location
	tickInterval time.Duration
	maxEntries   int
	cronParser   cron.Parser
	metrics      *metrics.Registry
	name         string

	mu      sync.RWMutex
	entries map[string]*scheduledEntry
	ticker  *time.Ticker
	done    chan struct{}
	running bool
}

// New creates a scheduler with default configuration.
func New() Scheduler {
	return NewWithConfig(Config{})
}

// NewWithConfig creates a scheduler with custom configuration.
func NewWithConfig(cfg Config) Scheduler {
	// An owned pool is created lazily in Start, so Stop can shut it down
	// and a later Start gets a fresh one.
	pool := cfg.Pool
	ownPool := pool == nil

	location := cfg.Location
	if location == nil {
		location = time.Local
	}

	tickInterval := cfg.TickInterval
	if tickInterval <= 0 {
		tickInterval = 50 * time.Millisecond
	}

	maxEntries := cfg.MaxEntries
	if maxEntries <= 0 {
		maxEntries = 10000
	}

	name := cfg.Name
	if name == "" {
		name = "default"
	}

	return &scheduler{
		pool:         pool,
		ownPool:      ownPool,
		location:     location,
		tickInterval: tickInterval,
		maxEntries:   maxEntries,
		metrics:      cfg.Metrics,
		name:         name,
		cronParser:   cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow),
		entries:      make(map[string]*scheduledEntry),
	}
}

func (s *scheduler) Schedule(id string, task forkjoin.Task, runAt time.Time) error {
	if err := s.validate(id, task); err != nil {
		return err
	}
	if runAt.IsZero() {
		return fmt.Errorf("run time cannot be zero")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(&scheduledEntry{
		id:      id,
		task:    task,
		runAt:   runAt,
		created: time.Now(),
	})
}

func (s *scheduler) ScheduleAfter(id string, task forkjoin.Task, delay time.Duration) error {
	return s.Schedule(id, task, time.Now().Add(delay))
}

func (s *scheduler) ScheduleRepeating(id string, task forkjoin.Task, interval time.Duration) error {
	if err := s.validate(id, task); err != nil {
		return err
	}
	if interval <= 0 {
		return fmt.Errorf("interval must be positive, got %v", interval)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(&scheduledEntry{
		id:       id,
		task:     task,
		runAt:    time.Now(),
		interval: interval,
		created:  time.Now(),
	})
}

func (s *scheduler) ScheduleCron(id string, cronExpr string, task forkjoin.Task) error {
	if err := s.validate(id, task); err != nil {
		return err
	}
	if err := validation.ValidateNotEmpty("scheduler", "cron", cronExpr); err != nil {
		return err
	}

	schedule, err := s.cronParser.Parse(cronExpr)
	if err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().In(s.location)
	return s.insertLocked(&scheduledEntry{
		id:           id,
		task:         task,
		runAt:        schedule.Next(now),
		cronSchedule: schedule,
		created:      time.Now(),
	})
}

func (s *scheduler) validate(id string, task forkjoin.Task) error {
	if err := validation.ValidateNotEmpty("scheduler", "id", id); err != nil {
		return err
	}
	if len(id) > 255 {
		return fmt.Errorf("entry ID too long (max 255 characters)")
	}
	if task == nil {
		return validation.ValidateNotNil("scheduler", "task", nil)
	}
	return nil
}

// insertLocked adds an entry; the caller holds s.mu.
func (s *scheduler) insertLocked(e *scheduledEntry) error {
	if _, exists := s.entries[e.id]; exists {
		return fmt.Errorf("entry with ID %q already exists, cancel it first", e.id)
	}
	if len(s.entries) >= s.maxEntries {
		return fmt.Errorf("cannot schedule entry: maximum number of entries (%d) reached", s.maxEntries)
	}
	s.entries[e.id] = e
	return nil
}

func (s *scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[id]; exists {
		delete(s.entries, id)
		return true
	}
	return false
}

func (s *scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*scheduledEntry)
}

func (s *scheduler) List() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, Entry{
			ID:       e.id,
			RunAt:    e.runAt,
			Interval: e.interval,
			Created:  e.created,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].RunAt.Before(entries[j].RunAt)
	})

	return entries
}

// Start begins the tick loop. A stopped scheduler may be started again;
// scheduled entries survive a Stop/Start cycle.
func (s *scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running, call Stop() first")
	}
	if s.ownPool && s.pool == nil {
		s.pool = forkjoin.New(0)
	}

	s.running = true
	s.done = make(chan struct{})
	s.ticker = time.NewTicker(s.tickInterval)

	go s.run(s.done, s.ticker)
	return nil
}

func (s *scheduler) Stop() <-chan struct{} {
	s.mu.Lock()
	if s.running {
		s.running = false
		close(s.done)
		s.ticker.Stop()
	}
	var owned forkjoin.Pool
	if s.ownPool {
		owned = s.pool
		s.pool = nil
	}
	s.mu.Unlock()

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		if owned != nil {
			<-owned.Shutdown()
		}
	}()

	return stopped
}

// run drains ticks until done closes. The channel and ticker are passed
// in rather than read from the struct so a restarted scheduler's loop
// never observes a previous generation's fields.
func (s *scheduler) run(done <-chan struct{}, ticker *time.Ticker) {
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			s.submitReadyEntries()
		}
	}
}

// submitReadyEntries moves due entries into the pool. Repeating and cron
// entries are rescheduled; one-time entries are removed. A submission
// rejected by a shut-down pool is dropped, and the remaining entries are
// still processed.
func (s *scheduler) submitReadyEntries() {
	now := time.Now()

	s.mu.Lock()
	// A tick can race a concurrent Stop; the pool may already be gone.
	pool := s.pool
	if pool == nil || len(s.entries) == 0 {
		s.mu.Unlock()
		return
	}

	ready := make([]*scheduledEntry, 0, len(s.entries))
	for id, e := range s.entries {
		if now.Before(e.runAt) {
			continue
		}
		ready = append(ready, e)

		switch {
		case e.interval > 0:
			e.runAt = now.Add(e.interval)
		case e.cronSchedule != nil:
			e.runAt = e.cronSchedule.Next(now.In(s.location))
		default:
			delete(s.entries, id)
		}
	}
	s.mu.Unlock()

	for _, e := range ready {
		if _, err := pool.Submit(e.task); err != nil {
			continue
		}
		if s.metrics != nil {
			s.metrics.TasksScheduled.WithLabelValues(s.name).Inc()
		}
	}
}
