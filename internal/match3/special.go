package match3

// ActivateSpecial aims the live wildcard at target, which must be one of
// its neighbours. Every tile of target's value is cleared.
//
// With no wildcard on the board the result is ReasonSpecialUsed when the
// wildcard was consumed in the current life, ReasonNoSpecial otherwise.
func (s *Session) ActivateSpecial(target Pos) MoveResult {
	if !s.busy.CompareAndSwap(false, true) {
		return s.reject(ReasonBusy)
	}
	defer s.busy.Store(false)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return s.rejectLocked(ReasonNotRunning)
	}

	sp, ok := s.grid.SpecialPos()
	if !ok {
		if s.specialUsed {
			return s.rejectLocked(ReasonSpecialUsed)
		}
		return s.rejectLocked(ReasonNoSpecial)
	}
	if !s.grid.InBounds(target) || !Adjacent(sp, target) {
		return s.rejectLocked(ReasonNotAdjacent)
	}
	return s.playSpecial(sp, target)
}

// SpecialLive reports whether a wildcard is on the board.
func (s *Session) SpecialLive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.grid == nil {
		return false
	}
	_, ok := s.grid.SpecialPos()
	return ok
}

// SpecialUsed reports whether the wildcard was consumed in the current life.
func (s *Session) SpecialUsed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.specialUsed
}

// playSpecial consumes the wildcard at sp and clears every tile sharing
// target's value, then runs the regular cascade. Callers hold mu and have
// checked adjacency.
func (s *Session) playSpecial(sp, target Pos) MoveResult {
	value := s.grid.Get(target)
	if !value.IsOrdinary() {
		return s.rejectLocked(ReasonNoMatch)
	}

	s.state = StateResolving

	cleared := s.grid.Positions(value)
	for _, p := range cleared {
		s.grid.Set(p, Empty)
	}
	s.grid.Set(sp, Empty)
	s.specialUsed = true

	score := len(cleared) * s.cfg.Special.RewardPerTile
	step := CascadeStep{
		Cleared:  append(cleared, sp),
		Score:    score,
		Wildcard: true,
	}
	step.Refilled = ApplyGravity(s.grid, s.drawTile)

	s.logger.Debug("special tile used", "tile", value, "cleared", len(cleared), "reward", score)

	steps, gained := s.cascade()
	steps = append([]CascadeStep{step}, steps...)

	res := s.finishMove(steps, score+gained)
	res.SpecialUsed = true
	res.SpecialCleared = len(cleared)
	return res
}

// maybeSpawnSpecial places a fresh wildcard on a random cleared cell when
// the resolution holds a large enough group and the single-use policy allows it.
func (s *Session) maybeSpawnSpecial(res Resolution) bool {
	rules := s.cfg.Special
	if !rules.Enabled || rules.SpawnMinGroup == 0 || s.specialUsed {
		return false
	}
	if _, live := s.grid.SpecialPos(); live {
		return false
	}

	earned := false
	for _, g := range res.Groups {
		if g.Size() >= rules.SpawnMinGroup {
			earned = true
			break
		}
	}
	if !earned {
		return false
	}

	cleared := res.Cleared()
	p := cleared[s.src.Intn(len(cleared))]
	s.grid.Set(p, Special)
	s.logger.Debug("special tile spawned", "pos", p)
	return true
}

// placeSpecial puts the wildcard on a random cell of a stable board.
// A tile that cannot match never creates a run, so any cell is safe.
func (s *Session) placeSpecial() {
	if _, live := s.grid.SpecialPos(); live {
		return
	}
	n := s.cfg.Size
	p := Pos{Row: s.src.Intn(n), Col: s.src.Intn(n)}
	s.grid.Set(p, Special)
}

// specialPlayable reports whether the live wildcard has an ordinary neighbour.
func (s *Session) specialPlayable() bool {
	sp, ok := s.grid.SpecialPos()
	if !ok {
		return false
	}
	_, ok = s.specialTarget(sp)
	return ok
}

func (s *Session) specialTarget(sp Pos) (Pos, bool) {
	for _, d := range neighbours {
		p := Pos{Row: sp.Row + d.Row, Col: sp.Col + d.Col}
		if s.grid.InBounds(p) && s.grid.Get(p).IsOrdinary() {
			return p, true
		}
	}
	return Pos{}, false
}
