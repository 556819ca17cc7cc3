package service

import (
	"context"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/cartsim/game/engine"
)

// SimulationService defines all simulation operations shared by the REST,
// websocket and MCP transports.
type SimulationService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Simulation Operations
	Tick(ctx context.Context, sessionID string, count int) (*TickResponse, error)
	Run(ctx context.Context, sessionID string) (*RunResponse, error)
	Reset(ctx context.Context, sessionID string) (*engine.State, error)

	// Simulation State
	GetState(ctx context.Context, sessionID string) (*engine.State, error)
	GetReport(ctx context.Context, sessionID string) (*engine.Report, error)
	DescribeCell(ctx context.Context, sessionID string, x, y int) (*CellInfo, error)

	// Stateless solving
	Solve(ctx context.Context, req SolveRequest) (*SolveResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.TrackConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.TrackConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.TrackConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, config *engine.TrackConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Count() int
}

// ConfigManager handles track configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.TrackConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.TrackConfig
	SaveConfig(name string, config *engine.TrackConfig) error
}

// Observer receives simulation events, typically to export them as metrics.
type Observer interface {
	TicksAdvanced(n int)
	CollisionsObserved(n int)
	RunFinished(outcome string)
	SessionsActive(n int)
}

// Run outcomes reported to Observer.RunFinished.
const (
	OutcomeSurvivor   = "survivor"
	OutcomeNoSurvivor = "no_survivor"
	OutcomeTickLimit  = "tick_limit"
	OutcomeFailed     = "failed"
)

// Session represents an active simulation run. The access time is guarded by
// its own lock since read-only requests touch it concurrently.
type Session struct {
	ID         string
	Simulation *engine.Simulation
	Config     *engine.TrackConfig
	ConfigID   string
	CreatedAt  time.Time

	mu             sync.RWMutex
	lastAccessedAt time.Time
}

// Touch records t as the last access time.
func (s *Session) Touch(t time.Time) {
	s.mu.Lock()
	s.lastAccessedAt = t
	s.mu.Unlock()
}

// LastAccessed returns the last access time.
func (s *Session) LastAccessed() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastAccessedAt
}

type nopObserver struct{}

func (nopObserver) TicksAdvanced(int)      {}
func (nopObserver) CollisionsObserved(int) {}
func (nopObserver) RunFinished(string)     {}
func (nopObserver) SessionsActive(int)     {}
