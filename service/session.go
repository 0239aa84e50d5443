package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"emi-calculator/domain"
)

// Session owns everything one user works with: its converter, its last
// schedule and the view state of both tables. Nothing in it is shared with
// other sessions.
type Session struct {
	ID        string
	Converter *CurrencyConverter

	mu            sync.Mutex
	result        *domain.LoanResult
	scheduleTable *Table[domain.AmortizationRow]
	rateTable     *Table[domain.RateRow]
	lastSeen      time.Time
}

func newSession(id string, converter *CurrencyConverter, now time.Time) *Session {
	return &Session{
		ID:            id,
		Converter:     converter,
		scheduleTable: NewTable(ScheduleTableSpec),
		rateTable:     NewTable(RateTableSpec),
		lastSeen:      now,
	}
}

// SetResult replaces the session schedule and returns its table to page 1.
func (s *Session) SetResult(result domain.LoanResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = &result
	s.scheduleTable.SetPage(1)
}

func (s *Session) Result() (domain.LoanResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return domain.LoanResult{}, false
	}
	return *s.result, true
}

// SchedulePage applies update to the schedule view and presents it.
func (s *Session) SchedulePage(update func(*Table[domain.AmortizationRow])) (domain.Page[domain.AmortizationRow], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.result == nil {
		return domain.Page[domain.AmortizationRow]{}, ErrNoSchedule
	}
	if update != nil {
		update(s.scheduleTable)
	}
	return s.scheduleTable.Present(s.result.Schedule), nil
}

// RatePage presents the converter's current table. It fails while the
// converter is loading or after its last fetch failed.
func (s *Session) RatePage(update func(*Table[domain.RateRow])) (domain.Page[domain.RateRow], error) {
	snap := s.Converter.Snapshot()
	switch snap.State {
	case domain.ConverterLoading:
		return domain.Page[domain.RateRow]{}, ErrConverterLoading
	case domain.ConverterError:
		return domain.Page[domain.RateRow]{}, fmt.Errorf("%w: %s", ErrRatesUnavailable, snap.Error)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if update != nil {
		update(s.rateTable)
	}
	return s.rateTable.Present(snap.Table.Rows()), nil
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// SessionManager creates, looks up and evicts sessions.
type SessionManager struct {
	newConverter func() *CurrencyConverter
	defaultBase  string
	idleTimeout  time.Duration
	log          logrus.FieldLogger
	now          func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
	cron     *cron.Cron
}

func NewSessionManager(
	newConverter func() *CurrencyConverter,
	defaultBase string,
	idleTimeout time.Duration,
	log logrus.FieldLogger,
) *SessionManager {
	return &SessionManager{
		newConverter: newConverter,
		defaultBase:  defaultBase,
		idleTimeout:  idleTimeout,
		log:          log,
		now:          time.Now,
		sessions:     make(map[string]*Session),
	}
}

// Create starts a session and begins loading rates for the default base.
func (m *SessionManager) Create() *Session {
	converter := m.newConverter()
	sess := newSession(uuid.NewString(), converter, m.now())
	converter.SetBaseCurrency(m.defaultBase)

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()

	m.log.WithField("session", sess.ID).Debug("session created")
	return sess
}

func (m *SessionManager) Get(id string) (*Session, error) {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.touch(m.now())
	return sess, nil
}

// Has reports whether id names a live session without refreshing it.
func (m *SessionManager) Has(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[id]
	return ok
}

// GetOrCreate returns the session for id, or a new one when id is empty or
// unknown. created reports which happened.
func (m *SessionManager) GetOrCreate(id string) (sess *Session, created bool) {
	if id != "" {
		if sess, err := m.Get(id); err == nil {
			return sess, false
		}
	}
	return m.Create(), true
}

func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep evicts sessions idle for longer than the idle timeout.
func (m *SessionManager) Sweep() int {
	cutoff := m.now().Add(-m.idleTimeout)

	m.mu.Lock()
	var evicted []*Session
	for id, sess := range m.sessions {
		if sess.idleSince().Before(cutoff) {
			evicted = append(evicted, sess)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, sess := range evicted {
		sess.Converter.Close()
	}
	if len(evicted) > 0 {
		m.log.WithField("evicted", len(evicted)).Info("idle sessions evicted")
	}
	return len(evicted)
}

// Start schedules Sweep with a cron spec such as "@every 5m".
func (m *SessionManager) Start(spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { m.Sweep() }); err != nil {
		return fmt.Errorf("schedule session sweep: %w", err)
	}
	c.Start()

	m.mu.Lock()
	m.cron = c
	m.mu.Unlock()
	return nil
}

// Stop halts the sweeper and closes every session.
func (m *SessionManager) Stop() {
	m.mu.Lock()
	c := m.cron
	m.cron = nil
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
	for _, sess := range sessions {
		sess.Converter.Close()
	}
}
