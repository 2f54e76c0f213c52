package observation

// Switcher holds the connectable currently collecting dependencies, with a
// stack of the ones it interrupted.
type Switcher struct {
	current Connectable
	stack   []Connectable
	paused  bool
}

// Current returns the active connectable, or nil.
func (s *Switcher) Current() Connectable {
	return s.current
}

// Connecting reports whether reads should register dependencies.
func (s *Switcher) Connecting() bool {
	return s.current != nil && !s.paused
}

// Enter makes c the active connectable.
func (s *Switcher) Enter(c Connectable) error {
	if c == nil {
		return ErrSwitchNullConnectable
	}
	if c == s.current {
		return ErrSwitchActive
	}
	s.stack = append(s.stack, c)
	s.current = c
	s.paused = false
	return nil
}

// Exit deactivates c, which must be the active connectable, and restores the
// one it interrupted.
func (s *Switcher) Exit(c Connectable) error {
	if c == nil {
		return ErrSwitchNullConnectable
	}
	if c != s.current {
		return ErrSwitchInactive
	}
	s.stack = s.stack[:len(s.stack)-1]
	if n := len(s.stack); n > 0 {
		s.current = s.stack[n-1]
	} else {
		s.current = nil
	}
	s.paused = false
	return nil
}

// Pause suspends dependency registration until Resume.
func (s *Switcher) Pause() { s.paused = true }

// Resume re-enables dependency registration.
func (s *Switcher) Resume() { s.paused = false }
