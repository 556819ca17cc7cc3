package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/wricardo/mcp-training/cartsim/game/engine"
	"github.com/wricardo/mcp-training/cartsim/internal/logging"
)

// simulationServiceImpl implements the SimulationService interface
type simulationServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	observer Observer
	logger   *slog.Logger
	mu       sync.RWMutex
}

// Option configures the simulation service.
type Option func(*simulationServiceImpl)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *simulationServiceImpl) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver sets the receiver of tick, collision and run events.
func WithObserver(observer Observer) Option {
	return func(s *simulationServiceImpl) {
		if observer != nil {
			s.observer = observer
		}
	}
}

// NewSimulationService creates a new simulation service instance
func NewSimulationService(sessions SessionManager, configs ConfigManager, opts ...Option) SimulationService {
	s := &simulationServiceImpl{
		sessions: sessions,
		configs:  configs,
		observer: nopObserver{},
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// getConfigID returns the config_id for a given display name, used for consistent API responses
func (s *simulationServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

// CreateSession creates a new simulation session from a track config. An
// empty configName selects the default track.
func (s *simulationServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.TrackConfig
	if configName != "" {
		var err error
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			return nil, s.configLoadError(configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	sess.ConfigID = configName
	if sess.ConfigID == "" {
		sess.ConfigID = s.getConfigID(sess.Config.Name)
	}

	s.observer.SessionsActive(s.sessions.Count())
	s.logger.Info("session created", "session", sess.ID, "config", sess.ConfigID, "carts", sess.Simulation.AliveCount())

	return s.sessionInfo(sess), nil
}

// configLoadError adds the available config IDs to a not-found error.
func (s *simulationServiceImpl) configLoadError(configName string, err error) error {
	if !strings.Contains(err.Error(), "configuration not found") {
		return fmt.Errorf("failed to load config %s: %w", configName, err)
	}
	availableConfigs, listErr := s.configs.ListConfigs()
	if listErr != nil || len(availableConfigs) == 0 {
		return fmt.Errorf("config '%s' not found, use /api/configs to list available configurations: %w", configName, err)
	}
	configIDs := make([]string, 0, len(availableConfigs))
	for _, cfg := range availableConfigs {
		configIDs = append(configIDs, cfg.ConfigID)
	}
	return fmt.Errorf("config '%s' not found, available configs: %v: %w", configName, configIDs, err)
}

// GetSession retrieves session information
func (s *simulationServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *simulationServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *simulationServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}
	s.observer.SessionsActive(s.sessions.Count())
	s.logger.Info("session deleted", "session", sessionID)
	return nil
}

// Tick advances a session by count ticks. count <= 0 means one tick; counts
// above engine.MaxTicksPerCall are truncated.
func (s *simulationServiceImpl) Tick(ctx context.Context, sessionID string, count int) (*TickResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if count <= 0 {
		count = 1
	}
	resp := &TickResponse{Requested: count}
	if count > engine.MaxTicksPerCall {
		resp.Truncated = true
		resp.Limit = engine.MaxTicksPerCall
		count = engine.MaxTicksPerCall
	}

	sim := sess.Simulation
	failedBefore := sim.Err() != nil
	results, err := sim.Advance(count)
	s.recordTicks(results)
	if err != nil {
		if !errors.Is(err, engine.ErrFinished) && !failedBefore {
			s.observer.RunFinished(OutcomeFailed)
			s.logger.Error("tick failed", "session", sess.ID, "tick", sim.CurrentTick(), "error", err)
		}
		return nil, fmt.Errorf("session %s: %w", sess.ID, err)
	}

	resp.Ticks = results
	resp.Executed = len(results)
	resp.State = s.state(sess)
	if sim.IsFinished() {
		s.observer.RunFinished(outcome(sim.Report()))
		resp.Message = finishedMessage(sim.Report())
	} else {
		resp.Message = fmt.Sprintf("Tick %d: %d carts on the track", sim.CurrentTick(), sim.AliveCount())
	}

	s.logger.Debug("ticks advanced", "session", sess.ID, "tick", sim.CurrentTick(), "executed", resp.Executed, "alive", sim.AliveCount())
	return resp, nil
}

// Run ticks a session until at most one cart is left, bounded by the tick
// budget of its track.
func (s *simulationServiceImpl) Run(ctx context.Context, sessionID string) (*RunResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sim := sess.Simulation
	if sim.IsFinished() {
		return nil, fmt.Errorf("session %s: %w", sess.ID, engine.ErrFinished)
	}

	failedBefore := sim.Err() != nil
	before := sim.CurrentTick()
	collisionsBefore := len(sim.Snapshot().Collisions)
	report, err := sim.Run(ctx, sess.Config.TickBudget())

	s.observer.TicksAdvanced(sim.CurrentTick() - before)
	s.observer.CollisionsObserved(len(sim.Snapshot().Collisions) - collisionsBefore)

	if err != nil {
		switch {
		case errors.Is(err, engine.ErrTickLimit):
			s.observer.RunFinished(OutcomeTickLimit)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		case failedBefore:
		default:
			s.observer.RunFinished(OutcomeFailed)
		}
		s.logger.Warn("run stopped", "session", sess.ID, "tick", sim.CurrentTick(), "alive", sim.AliveCount(), "error", err)
		return nil, fmt.Errorf("session %s: %w", sess.ID, err)
	}

	s.observer.RunFinished(outcome(report))
	s.logger.Info("run finished", "session", sess.ID, "tick", report.Ticks,
		"first_collision", report.FormatFirstCollision(), "survivor", report.FormatSurvivor())

	return &RunResponse{
		Report:  report,
		State:   s.state(sess),
		Message: finishedMessage(report),
	}, nil
}

// Reset restores a session to its initial carts
func (s *simulationServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Simulation.Reset()
	s.logger.Info("session reset", "session", sess.ID)
	return s.state(sess), nil
}

// GetState returns the current snapshot of a session
func (s *simulationServiceImpl) GetState(ctx context.Context, sessionID string) (*engine.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.state(sess), nil
}

// GetReport returns the result reporter output for a session
func (s *simulationServiceImpl) GetReport(ctx context.Context, sessionID string) (*engine.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Simulation.Report(), nil
}

// DescribeCell returns the tile and the alive carts at (x, y)
func (s *simulationServiceImpl) DescribeCell(ctx context.Context, sessionID string, x, y int) (*CellInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	info := &CellInfo{Position: engine.Position{X: x, Y: y}}
	tile, err := sess.Simulation.Grid().TileAt(x, y)
	if err != nil {
		info.Tile = "out_of_bounds"
		return info, nil
	}

	info.InBounds = true
	info.Tile = tile.String()
	info.Char = string(tile.Rune())
	for _, c := range sess.Simulation.Carts() {
		if c.Alive && c.Position == info.Position {
			info.Carts = append(info.Carts, c)
			info.Char = string(c.Facing.Marker())
		}
	}
	return info, nil
}

// Solve runs a posted layout to completion without creating a session
func (s *simulationServiceImpl) Solve(ctx context.Context, req SolveRequest) (*SolveResponse, error) {
	sim, err := engine.NewSimulationFromLayout(req.Layout, engine.ParseOptions{PadRaggedRows: req.PadRaggedRows})
	if err != nil {
		return nil, err
	}

	maxTicks := req.MaxTicks
	if maxTicks <= 0 {
		maxTicks = engine.DefaultMaxTicks
	}

	report, err := sim.Run(ctx, maxTicks)
	s.observer.TicksAdvanced(sim.CurrentTick())
	if err != nil {
		return nil, err
	}
	s.observer.CollisionsObserved(len(report.Collisions))
	s.observer.RunFinished(outcome(report))

	return &SolveResponse{
		FirstCollision: report.FormatFirstCollision(),
		LastCart:       report.FormatSurvivor(),
		Report:         report,
	}, nil
}

// ListConfigs returns all available track configurations
func (s *simulationServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a track configuration by name
func (s *simulationServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.TrackConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig validates and stores a track configuration
func (s *simulationServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.TrackConfig) error {
	if err := s.configs.SaveConfig(configName, config); err != nil {
		return err
	}
	s.logger.Info("config saved", "config", configName)
	return nil
}

// session looks up a session and marks it as accessed.
func (s *simulationServiceImpl) session(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	if err := s.sessions.UpdateLastAccessed(sessionID); err != nil {
		s.logger.Debug("session vanished during lookup", "session", sessionID, "error", err)
	}
	return sess, nil
}

func (s *simulationServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     sess.ConfigID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessed(),
		State:          s.state(sess),
		TrackConfig:    sess.Config,
	}
}

func (s *simulationServiceImpl) state(sess *Session) *engine.State {
	state := sess.Simulation.Snapshot()
	state.ConfigName = sess.ConfigID
	return state
}

func (s *simulationServiceImpl) recordTicks(results []engine.TickResult) {
	collisions := 0
	for _, r := range results {
		collisions += len(r.Collisions)
	}
	s.observer.TicksAdvanced(len(results))
	s.observer.CollisionsObserved(collisions)
}

func outcome(report *engine.Report) string {
	if report.Survivor != nil {
		return OutcomeSurvivor
	}
	return OutcomeNoSurvivor
}

func finishedMessage(report *engine.Report) string {
	return fmt.Sprintf("Finished after %d ticks. First collision: %s. Last cart: %s",
		report.Ticks, report.FormatFirstCollision(), report.FormatSurvivor())
}
