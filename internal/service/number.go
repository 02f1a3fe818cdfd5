package service

import (
	"fmt"
	"sync"
	"time"
)

// NumberSource yields quote numbers. Implementations must be safe for
// concurrent use.
type NumberSource interface {
	Next() string
}

// ClockNumberSource formats numbers as <prefix>-<YYYYMMDD>-<suffix>, the
// suffix being the milliseconds since UTC midnight padded to 8 digits. The
// suffix is strictly increasing inside one process so concurrent creates
// never receive the same number; collisions across processes are left to
// the unique index.
type ClockNumberSource struct {
	prefix string
	now    func() time.Time

	mu      sync.Mutex
	lastDay string
	lastMs  int64
}

func NewClockNumberSource(prefix string) *ClockNumberSource {
	return &ClockNumberSource{prefix: prefix, now: time.Now}
}

func (s *ClockNumberSource) Next() string {
	t := s.now().UTC()
	day := t.Format("20060102")
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	ms := t.Sub(midnight).Milliseconds()

	s.mu.Lock()
	if day == s.lastDay && ms <= s.lastMs {
		ms = s.lastMs + 1
	}
	s.lastDay, s.lastMs = day, ms
	s.mu.Unlock()

	return fmt.Sprintf("%s-%s-%08d", s.prefix, day, ms)
}
