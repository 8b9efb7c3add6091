package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"gregoryjjb/ringtool/circularbuffer"
	"gregoryjjb/ringtool/pubsub"
	"gregoryjjb/ringtool/puzzles"
)

var (
	ErrQueueFull = errors.New("run queue is full")
	ErrStopped   = errors.New("runner stopped")
)

const queueSize = 64

type RunState string

const (
	RunQueued    RunState = "queued"
	RunRunning   RunState = "running"
	RunDone      RunState = "done"
	RunFailed    RunState = "failed"
	RunCancelled RunState = "cancelled"
)

func (s RunState) Finished() bool {
	return s == RunDone || s == RunFailed || s == RunCancelled
}

type Run struct {
	ID         string         `json:"id"`
	Puzzle     string         `json:"puzzle"`
	Params     puzzles.Params `json:"params"`
	State      RunState       `json:"state"`
	Answer     int            `json:"answer"`
	Error      string         `json:"error,omitempty"`
	QueuedAt   time.Time      `json:"queued_at"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

type RunEvent struct {
	ID     string   `json:"id"`
	Puzzle string   `json:"puzzle"`
	State  RunState `json:"state"`
	Step   int      `json:"step,omitempty"`
	Total  int      `json:"total,omitempty"`
	Answer int      `json:"answer,omitempty"`
	Error  string   `json:"error,omitempty"`
}

func eventFor(run *Run) RunEvent {
	return RunEvent{
		ID:     run.ID,
		Puzzle: run.Puzzle,
		State:  run.State,
		Answer: run.Answer,
		Error:  run.Error,
	}
}

const (
	StateIdle = "idle"
	StateBusy = "busy"
	StateDead = "dead"
)

type ExternalRunnerState struct {
	mutex sync.RWMutex
	value string
}

func (ers *ExternalRunnerState) Get() string {
	ers.mutex.RLock()
	defer ers.mutex.RUnlock()

	return ers.value
}

func (ers *ExternalRunnerState) Set(v string) {
	ers.mutex.Lock()
	defer ers.mutex.Unlock()

	ers.value = v
}

type RunnerMessage struct {
	Run *Run
}

// Runner executes submitted puzzle runs one at a time on its own goroutine.
// Every list a puzzle builds lives and dies inside that goroutine.
type Runner struct {
	queue   chan RunnerMessage
	state   *ExternalRunnerState
	pubsub  *pubsub.Pubsub[RunEvent]
	history *circularbuffer.CircularBuffer[Run]
	config  *Config
	storage *Storage
	done    chan struct{}
	log     zerolog.Logger

	mu        sync.Mutex
	currentID string
	cancelRun context.CancelFunc
	// queued maps pending run ids to whether they were cancelled
	queued map[string]bool
}

func NewRunner(ctx context.Context, config *Config, storage *Storage) *Runner {
	r := &Runner{
		queue:   make(chan RunnerMessage, queueSize),
		state:   &ExternalRunnerState{value: StateIdle},
		pubsub:  pubsub.New[RunEvent](queueSize),
		history: circularbuffer.New[Run](config.HistorySize()),
		config:  config,
		storage: storage,
		done:    make(chan struct{}),
		queued:  make(map[string]bool),
		log:     log.With().Str("component", "runner").Logger(),
	}
	go r.run(ctx)
	return r
}

// Submit queues a run. Params are applied over the config defaults, which
// are applied over the puzzle's own.
func (r *Runner) Submit(name string, params puzzles.Params) (Run, error) {
	pz, err := puzzles.Lookup(name)
	if err != nil {
		return Run{}, err
	}
	merged := pz.Defaults.Merge(r.config.PuzzleDefaults(name)).Merge(params)
	if err := pz.Validate(merged); err != nil {
		return Run{}, err
	}
	if r.State() == StateDead {
		return Run{}, ErrStopped
	}

	run := &Run{
		ID:       uuid.NewString(),
		Puzzle:   pz.Name,
		Params:   merged,
		State:    RunQueued,
		QueuedAt: time.Now(),
	}

	// the loop owns run once it is sent
	queued := *run

	// held until the queued event is out so the loop cannot report the run
	// starting first
	r.mu.Lock()
	defer r.mu.Unlock()

	select {
	case r.queue <- RunnerMessage{Run: run}:
	default:
		return Run{}, ErrQueueFull
	}
	r.queued[queued.ID] = false

	r.log.Debug().Str("id", queued.ID).Str("puzzle", queued.Puzzle).Str("params", merged.String()).Msg("Queued run")
	r.pubsub.Publish(eventFor(&queued))
	return queued, nil
}

// Cancel stops the run if it is executing, or makes it skip if it is still
// queued. It reports false when the id is not pending.
func (r *Runner) Cancel(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id == r.currentID && r.cancelRun != nil {
		r.cancelRun()
		return true
	}
	if _, ok := r.queued[id]; ok {
		r.queued[id] = true
		return true
	}
	return false
}

func (r *Runner) Subscribe() (func(), <-chan RunEvent) {
	handle, ch := r.pubsub.Subscribe()
	return func() {
		r.pubsub.Unsubscribe(handle)
	}, ch
}

func (r *Runner) State() string {
	return r.state.Get()
}

// History returns recent finished runs, newest first.
func (r *Runner) History() []Run {
	items := r.history.Items()
	if items == nil {
		return []Run{}
	}
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items
}

// Lookup finds a finished run in the history, falling back to storage.
func (r *Runner) Lookup(id string) (Run, error) {
	if run, ok := r.history.Find(func(run Run) bool { return run.ID == id }); ok {
		return run, nil
	}
	return r.storage.FindRun(id)
}

// Done is closed once the loop has exited.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

//////////////////////////////////
// Loop

func (r *Runner) run(ctx context.Context) {
	defer close(r.done)
	r.log.Print("Running puzzle loop")

	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("Stopping runner")
			r.state.Set(StateDead)
			return

		case msg := <-r.queue:
			r.execute(ctx, msg.Run)
		}
	}
}

func (r *Runner) execute(ctx context.Context, run *Run) {
	r.mu.Lock()
	cancelled := r.queued[run.ID]
	delete(r.queued, run.ID)
	if cancelled {
		r.mu.Unlock()

		run.State = RunCancelled
		run.Error = "cancelled before start"
		r.finish(run)
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.currentID = run.ID
	r.cancelRun = cancel
	r.mu.Unlock()

	r.state.Set(StateBusy)
	defer r.state.Set(StateIdle)

	run.State = RunRunning
	run.StartedAt = time.Now()
	r.pubsub.Publish(eventFor(run))
	r.log.Info().Str("id", run.ID).Str("puzzle", run.Puzzle).Str("params", run.Params.String()).Msg("Starting run")

	answer, err := r.solve(runCtx, run)

	r.mu.Lock()
	r.currentID = ""
	r.cancelRun = nil
	r.mu.Unlock()
	cancel()

	switch {
	case err == nil:
		run.State = RunDone
		run.Answer = answer
	case errors.Is(err, puzzles.ErrCancelled):
		run.State = RunCancelled
		run.Error = err.Error()
	default:
		run.State = RunFailed
		run.Error = err.Error()
	}
	r.finish(run)
}

func (r *Runner) solve(ctx context.Context, run *Run) (answer int, err error) {
	pz, err := puzzles.Lookup(run.Puzzle)
	if err != nil {
		return 0, err
	}

	// a solver bug must not take the loop down with it
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("puzzle %s panicked: %v", run.Puzzle, rec)
		}
	}()

	return pz.Solve(ctx, run.Params, r.config.ProgressEvery(), func(p puzzles.Progress) {
		ev := eventFor(run)
		ev.Step = p.Step
		ev.Total = p.Total
		r.pubsub.Publish(ev)
	})
}

func (r *Runner) finish(run *Run) {
	run.FinishedAt = time.Now()
	r.history.Push(*run)

	if err := r.storage.SaveRun(*run); err != nil {
		r.log.Err(err).Str("id", run.ID).Msg("Failed to store run")
	}

	logEvent := r.log.Info()
	if run.State == RunFailed {
		logEvent = r.log.Warn()
	}
	logEvent.
		Str("id", run.ID).
		Str("puzzle", run.Puzzle).
		Str("state", string(run.State)).
		Int("answer", run.Answer).
		Dur("took", run.FinishedAt.Sub(run.QueuedAt)).
		Msg("Run finished")

	r.pubsub.Publish(eventFor(run))
}
