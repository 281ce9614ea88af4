package navigation

import (
	"sync"

	"go.uber.org/zap"

	"github.com/sportae/scoreauth"
)

// SessionSource is the observable session. [*scoreauth.Manager] implements it.
type SessionSource interface {
	State() scoreauth.State
	Subscribe(fn func(scoreauth.State)) (cancel func())
}

// Router replaces the current route. Implementations may call
// [Guard.Navigated] synchronously.
type Router interface {
	Replace(path string)
}

// RouterFunc adapts a function to [Router].
type RouterFunc func(path string)

func (f RouterFunc) Replace(path string) { f(path) }

// Guard re-derives the correct route on every session or location change.
// It is level-triggered and may be evaluated any number of times; it only
// calls the router when the target differs from both the current location
// and a redirect already in flight.
type Guard struct {
	source SessionSource
	router Router
	logger *zap.Logger

	mu        sync.Mutex
	current   Location
	pending   *Location
	cancel    func()
	redirects uint64
}

// NewGuard returns a stopped guard positioned at initial.
func NewGuard(source SessionSource, router Router, initial string, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{
		source:  source,
		router:  router,
		logger:  logger.Named("guard"),
		current: ParseLocation(initial),
	}
}

// Start subscribes to the session and evaluates once.
func (g *Guard) Start() {
	g.mu.Lock()
	if g.cancel != nil {
		g.mu.Unlock()
		return
	}
	g.cancel = g.source.Subscribe(func(s scoreauth.State) {
		g.evaluate(s)
	})
	g.mu.Unlock()

	g.Evaluate()
}

// Stop unsubscribes. The guard can be started again.
func (g *Guard) Stop() {
	g.mu.Lock()
	cancel := g.cancel
	g.cancel = nil
	g.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Navigated records that the app is now at path and re-evaluates.
func (g *Guard) Navigated(path string) Decision {
	loc := ParseLocation(path)

	g.mu.Lock()
	g.current = loc
	g.pending = nil
	g.mu.Unlock()

	return g.Evaluate()
}

// Evaluate decides against the current session and acts on the result.
// It returns the decision that was acted on; a suppressed redirect is
// reported as ActionNone.
func (g *Guard) Evaluate() Decision {
	return g.evaluate(g.source.State())
}

func (g *Guard) evaluate(s scoreauth.State) Decision {
	g.mu.Lock()
	current := g.current
	d := Decide(s, current)
	if d.Action != ActionRedirect {
		g.mu.Unlock()
		return d
	}

	target := ParseLocation(d.Target)
	if target == current || (g.pending != nil && *g.pending == target) {
		g.mu.Unlock()
		return Decision{Action: ActionNone, Reason: "already at or heading to " + target.Path()}
	}
	g.pending = &target
	g.redirects++
	g.mu.Unlock()

	g.logger.Info("redirect",
		zap.String("from", current.Path()),
		zap.String("to", d.Target),
		zap.String("reason", d.Reason),
	)
	g.router.Replace(d.Target)
	return d
}

// Location returns where the guard believes the app is.
func (g *Guard) Location() Location {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

// Redirects returns how many times the router was called.
func (g *Guard) Redirects() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.redirects
}
