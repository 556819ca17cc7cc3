package engine

import (
	"context"
	"fmt"
	"sort"
)

// Engine provides the main interface for simulation operations
type Engine interface {
	// Simulation state
	Snapshot() *State
	Reset()
	IsFinished() bool
	Err() error
	CurrentTick() int
	AliveCount() int

	// Stepping
	Tick() (*TickResult, error)
	Advance(n int) ([]TickResult, error)
	Run(ctx context.Context, maxTicks int) (*Report, error)

	// Results
	FirstCollision() *CollisionEvent
	Survivor() *Position
	Report() *Report

	// Track
	Grid() *Grid
	Layout() []string
}

// Simulation implements the Engine interface. It exclusively owns the cart
// arena; carts are addressed by ID, which is their index in the arena.
type Simulation struct {
	grid    *Grid
	initial []Cart
	carts   []Cart
	alive   int

	tick       int
	first      *CollisionEvent
	collisions []CollisionEvent
	lastCrash  []Position
	finished   bool
	failed     error
}

var _ Engine = (*Simulation)(nil)

// NewSimulation creates a simulation over grid with the given initial carts.
// Cart IDs are reassigned to their index in carts. Every cart must sit on
// straight track aligned with its facing and no two carts may share a cell.
func NewSimulation(grid *Grid, carts []Cart) (*Simulation, error) {
	if grid == nil {
		return nil, fmt.Errorf("%w: grid cannot be nil", ErrInvalidTrack)
	}
	if len(carts) < MinCarts {
		return nil, fmt.Errorf("%w: need at least %d carts, got %d", ErrInsufficientCarts, MinCarts, len(carts))
	}

	initial := make([]Cart, len(carts))
	occupied := make(map[Position]int, len(carts))
	for i, c := range carts {
		tile, err := grid.TileAt(c.Position.X, c.Position.Y)
		if err != nil {
			return nil, fmt.Errorf("cart %d: %w", i, err)
		}
		if !tile.IsStraight() || (tile == Horizontal) != c.Facing.Horizontal() {
			return nil, fmt.Errorf("%w: cart %d facing %s sits on %s tile at %s", ErrInvalidTrack, i, c.Facing, tile, c.Position)
		}
		if other, dup := occupied[c.Position]; dup {
			return nil, fmt.Errorf("%w: carts %d and %d both start at %s", ErrInvalidTrack, other, i, c.Position)
		}
		occupied[c.Position] = i

		initial[i] = NewCart(i, c.Position, c.Facing)
		initial[i].Phase = c.Phase
	}

	s := &Simulation{grid: grid, initial: initial}
	s.Reset()
	return s, nil
}

// NewSimulationFromLayout parses lines and creates a simulation over them.
func NewSimulationFromLayout(lines []string, opts ParseOptions) (*Simulation, error) {
	grid, carts, err := ParseLayout(lines, opts)
	if err != nil {
		return nil, err
	}
	return NewSimulation(grid, carts)
}

// Reset restores the initial carts and clears the tick counter and collisions.
func (s *Simulation) Reset() {
	s.carts = make([]Cart, len(s.initial))
	copy(s.carts, s.initial)
	s.alive = len(s.carts)
	s.tick = 0
	s.first = nil
	s.collisions = nil
	s.lastCrash = nil
	s.finished = false
	s.failed = nil
}

// Tick runs one full pass over the alive carts in reading order. A crash is
// resolved right after the move that caused it, so carts later in the same
// pass see the updated occupancy.
func (s *Simulation) Tick() (*TickResult, error) {
	if s.failed != nil {
		return nil, s.failed
	}
	if s.finished {
		return nil, ErrFinished
	}

	order := s.readingOrder()
	s.tick++
	s.lastCrash = s.lastCrash[:0]
	result := &TickResult{Tick: s.tick}

	for _, id := range order {
		cart := &s.carts[id]
		if !cart.Alive {
			continue
		}
		if err := cart.Step(s.grid); err != nil {
			s.failed = fmt.Errorf("tick %d: %w", s.tick, err)
			return nil, s.failed
		}
		result.Moved++

		if event, crashed := s.resolveCollision(id); crashed {
			result.Collisions = append(result.Collisions, event)
		}
	}

	if s.alive <= 1 {
		s.finished = true
	}
	result.Alive = s.alive
	result.Finished = s.finished
	return result, nil
}

// Advance runs up to n ticks, stopping early when the simulation finishes.
func (s *Simulation) Advance(n int) ([]TickResult, error) {
	if n <= 0 {
		n = 1
	}
	if n > MaxTicksPerCall {
		n = MaxTicksPerCall
	}

	results := make([]TickResult, 0, n)
	for i := 0; i < n; i++ {
		if s.finished && s.failed == nil {
			if i == 0 {
				return nil, ErrFinished
			}
			break
		}
		result, err := s.Tick()
		if err != nil {
			return results, err
		}
		results = append(results, *result)
	}
	return results, nil
}

// Run ticks until at most one cart is left. maxTicks <= 0 means no bound;
// otherwise ErrTickLimit is returned once that many ticks ran in this call.
func (s *Simulation) Run(ctx context.Context, maxTicks int) (*Report, error) {
	ran := 0
	for !s.finished {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if maxTicks > 0 && ran >= maxTicks {
			return nil, fmt.Errorf("%w: %d ticks without a single survivor (alive: %d)", ErrTickLimit, maxTicks, s.alive)
		}
		if _, err := s.Tick(); err != nil {
			return nil, err
		}
		ran++
	}
	if s.failed != nil {
		return nil, s.failed
	}
	return s.Report(), nil
}

// readingOrder returns the IDs of alive carts sorted by row, then column.
func (s *Simulation) readingOrder() []int {
	order := make([]int, 0, s.alive)
	for i := range s.carts {
		if s.carts[i].Alive {
			order = append(order, i)
		}
	}
	sort.Slice(order, func(i, j int) bool {
		return s.carts[order[i]].Position.Less(s.carts[order[j]].Position)
	})
	return order
}

// resolveCollision removes every alive cart sharing the cell of cart id,
// including id itself.
func (s *Simulation) resolveCollision(id int) (CollisionEvent, bool) {
	pos := s.carts[id].Position
	ids := []int{id}
	for i := range s.carts {
		if i != id && s.carts[i].Alive && s.carts[i].Position == pos {
			ids = append(ids, i)
		}
	}
	if len(ids) == 1 {
		return CollisionEvent{}, false
	}

	for _, i := range ids {
		s.carts[i].Alive = false
	}
	s.alive -= len(ids)
	sort.Ints(ids)

	event := CollisionEvent{Position: pos, Tick: s.tick, CartIDs: ids}
	if s.first == nil {
		first := event
		s.first = &first
	}
	s.collisions = append(s.collisions, event)
	s.lastCrash = append(s.lastCrash, pos)
	return event, true
}

// IsFinished returns whether one cart or none is left
func (s *Simulation) IsFinished() bool {
	return s.finished
}

// Err returns the step failure that stopped the run, if any. It stays set
// until Reset.
func (s *Simulation) Err() error {
	return s.failed
}

// CurrentTick returns the number of completed ticks
func (s *Simulation) CurrentTick() int {
	return s.tick
}

// AliveCount returns the number of carts still on the track
func (s *Simulation) AliveCount() int {
	return s.alive
}

// Grid returns the shared read-only track
func (s *Simulation) Grid() *Grid {
	return s.grid
}

// Carts returns a copy of the cart arena, dead carts included
func (s *Simulation) Carts() []Cart {
	carts := make([]Cart, len(s.carts))
	copy(carts, s.carts)
	return carts
}

// FirstCollision returns the first collision of the run, or nil if none happened yet.
func (s *Simulation) FirstCollision() *CollisionEvent {
	if s.first == nil {
		return nil
	}
	first := *s.first
	return &first
}

// Survivor returns the position of the last cart once the run finished with
// exactly one cart left, nil otherwise.
func (s *Simulation) Survivor() *Position {
	if !s.finished || s.alive != 1 {
		return nil
	}
	for _, c := range s.carts {
		if c.Alive {
			pos := c.Position
			return &pos
		}
	}
	return nil
}

// Snapshot returns a copy of the current state
func (s *Simulation) Snapshot() *State {
	collisions := make([]CollisionEvent, len(s.collisions))
	copy(collisions, s.collisions)
	return &State{
		Tick:           s.tick,
		Carts:          s.Carts(),
		Alive:          s.alive,
		FirstCollision: s.FirstCollision(),
		Collisions:     collisions,
		Finished:       s.finished,
		Layout:         s.Layout(),
	}
}
