package observer

import (
	"log/slog"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/delaneyj/depwatch/tick"
)

const DefaultMaxUpdateCount = 100

type ErrorHandler func(err error)

type WarnHandler func(err error)

// Hooks observe the scheduler. Any field may be nil.
type Hooks struct {
	BeforeFlush func(queued int)
	AfterFlush  func(updated []*Watcher)
	Error       func(err error)
}

type Config struct {
	// Async batches watcher runs into one flush per tick. When false every
	// queued watcher runs synchronously and Dep.Notify sorts subscribers.
	Async bool

	// MaxUpdateCount is how many times one watcher may run within a single
	// flush before it is aborted.
	MaxUpdateCount int

	Logger  *slog.Logger
	OnError ErrorHandler
	OnWarn  WarnHandler
	Loop    *tick.Loop
	Hooks   []Hooks
}

type Option func(*Config)

func WithSync() Option {
	return func(c *Config) {
		c.Async = false
	}
}

func WithMaxUpdateCount(n int) Option {
	return func(c *Config) {
		c.MaxUpdateCount = n
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithErrorHandler replaces the default error channel, which logs at error
// level.
func WithErrorHandler(fn ErrorHandler) Option {
	return func(c *Config) {
		c.OnError = fn
	}
}

// WithWarnHandler replaces the default diagnostics channel, which logs at
// warn level.
func WithWarnHandler(fn WarnHandler) Option {
	return func(c *Config) {
		c.OnWarn = fn
	}
}

func WithLoop(loop *tick.Loop) Option {
	return func(c *Config) {
		c.Loop = loop
	}
}

func WithHooks(h Hooks) Option {
	return func(c *Config) {
		c.Hooks = append(c.Hooks, h)
	}
}

func defaultConfig() Config {
	return Config{
		Async:          true,
		MaxUpdateCount: DefaultMaxUpdateCount,
	}
}

// System owns everything that is shared between Deps and Watchers: id
// counters, the active computation stack, the scheduler queue and the tick
// queue. A System and the values it observes must be used from one goroutine,
// normally the one running its Loop.
type System struct {
	cfg    Config
	logger *slog.Logger

	depUID     uint64
	watcherUID uint64

	target      *Watcher
	targetStack []*Watcher

	shouldObserve bool

	loop  *tick.Loop
	ticks *tick.Queue

	queue    []*Watcher
	has      mapset.Set[uint64]
	circular map[uint64]int
	aborted  mapset.Set[uint64]
	waiting  bool
	flushing bool
	index    int
}

func New(opts ...Option) *System {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.MaxUpdateCount <= 0 {
		cfg.MaxUpdateCount = DefaultMaxUpdateCount
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Loop == nil {
		cfg.Loop = tick.NewLoop()
	}

	s := &System{
		cfg:           cfg,
		logger:        cfg.Logger,
		shouldObserve: true,
		loop:          cfg.Loop,
		has:           mapset.NewThreadUnsafeSet[uint64](),
		circular:      map[uint64]int{},
		aborted:       mapset.NewThreadUnsafeSet[uint64](),
	}
	s.ticks = tick.NewQueue(s.loop, func(err error) {
		s.handleError(err)
	})
	return s
}

func (s *System) Loop() *tick.Loop {
	return s.loop
}

func (s *System) Async() bool {
	return s.cfg.Async
}

// NextTick runs cb after the next flush of deferred work. The returned
// channel is closed once cb ran; cb may be nil.
func (s *System) NextTick(cb func()) <-chan struct{} {
	return s.ticks.NextTick(cb)
}

// Drain runs all deferred work scheduled on the system's loop, which ends
// the current turn.
func (s *System) Drain() {
	s.loop.Drain()
}

// Target returns the active computation, if any.
func (s *System) Target() *Watcher {
	return s.target
}

func (s *System) pushTarget(w *Watcher) {
	s.targetStack = append(s.targetStack, w)
	s.target = w
}

func (s *System) popTarget() {
	s.targetStack = s.targetStack[:len(s.targetStack)-1]
	if n := len(s.targetStack); n > 0 {
		s.target = s.targetStack[n-1]
	} else {
		s.target = nil
	}
}

// Untracked runs fn with dependency collection suspended. Reads inside fn do
// not subscribe the enclosing computation.
func (s *System) Untracked(fn func()) {
	s.pushTarget(nil)
	defer s.popTarget()
	fn()
}

// SetObserving toggles whether new containers get observed.
func (s *System) SetObserving(v bool) {
	s.shouldObserve = v
}

func (s *System) Observing() bool {
	return s.shouldObserve
}

// WithoutObserving runs fn with observation of new containers suspended.
func (s *System) WithoutObserving(fn func()) {
	prev := s.shouldObserve
	s.shouldObserve = false
	defer func() {
		s.shouldObserve = prev
	}()
	fn()
}

func (s *System) nextDepID() uint64 {
	id := s.depUID
	s.depUID++
	return id
}

func (s *System) nextWatcherID() uint64 {
	s.watcherUID++
	return s.watcherUID
}

func (s *System) handleError(err error) {
	for _, h := range s.cfg.Hooks {
		if h.Error != nil {
			h.Error(err)
		}
	}
	if s.cfg.OnError != nil {
		s.cfg.OnError(err)
		return
	}
	s.logger.Error("depwatch error", "err", err)
}

func (s *System) warn(err error) {
	if s.cfg.OnWarn != nil {
		s.cfg.OnWarn(err)
		return
	}
	s.logger.Warn("depwatch warning", "err", err)
}
