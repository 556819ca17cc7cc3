package engine

// Report is the terminal result of a run
type Report struct {
	FirstCollision *CollisionEvent  `json:"first_collision,omitempty"`
	Survivor       *Position        `json:"survivor,omitempty"`
	Ticks          int              `json:"ticks"`
	Finished       bool             `json:"finished"`
	Collisions     []CollisionEvent `json:"collisions"`
}

// Report reads the result from the current state. Survivor stays nil until
// the run has finished with exactly one cart.
func (s *Simulation) Report() *Report {
	collisions := make([]CollisionEvent, len(s.collisions))
	copy(collisions, s.collisions)
	return &Report{
		FirstCollision: s.FirstCollision(),
		Survivor:       s.Survivor(),
		Ticks:          s.tick,
		Finished:       s.finished,
		Collisions:     collisions,
	}
}

// FormatFirstCollision returns "x,y" of the first collision or "none".
func (r *Report) FormatFirstCollision() string {
	if r.FirstCollision == nil {
		return "none"
	}
	return r.FirstCollision.Position.String()
}

// FormatSurvivor returns "x,y" of the last cart or "no survivor".
func (r *Report) FormatSurvivor() string {
	if r.Survivor == nil {
		return "no survivor"
	}
	return r.Survivor.String()
}
