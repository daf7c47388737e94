// Package session owns the mutable per-holder records. Every operation builds
// the complete next record, writes it, and only then adopts it in memory, so
// a failed write leaves the session exactly as it was.
package session

import (
	"context"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/dinofightergenesis/dinofighterg/internal/economy"
	"github.com/dinofightergenesis/dinofighterg/internal/metrics"
	"github.com/dinofightergenesis/dinofighterg/internal/model"
	"github.com/dinofightergenesis/dinofighterg/internal/recorder"
	"github.com/dinofightergenesis/dinofighterg/internal/store"
)

// Deps wires a Manager to its collaborators. Zero-valued optional fields get
// working defaults.
type Deps struct {
	Repo     *store.Repository
	Params   economy.Params
	Sale     *economy.Sale
	Clock    economy.Clock
	Rand     economy.Rand
	Recorder recorder.Recorder
	Metrics  *metrics.Metrics
	Observer Observer
	// IdleTTL evicts cached sessions that saw no Open for this long.
	// Zero means DefaultIdleTTL.
	IdleTTL time.Duration
}

// DefaultIdleTTL is the idle eviction window when Deps.IdleTTL is unset.
const DefaultIdleTTL = 30 * time.Minute

// Manager keeps one Session per holder identity and owns the global burn ledger.
type Manager struct {
	deps Deps

	mu       sync.Mutex
	sessions map[string]*Session

	// globalMu serialises read-modify-write of the global burn document.
	globalMu sync.Mutex

	epochMu   sync.Mutex
	lastEpoch int64
}

func NewManager(deps Deps) *Manager {
	if deps.Clock == nil {
		deps.Clock = economy.SystemClock{}
	}
	if deps.Sale == nil {
		deps.Sale = economy.NewSale(economy.DefaultSaleParams(), deps.Clock)
	}
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed))
	}
	deps.Rand = &lockedRand{r: deps.Rand}
	if deps.Recorder == nil {
		deps.Recorder = recorder.NewNoopRecorder()
	}
	if deps.Observer == nil {
		deps.Observer = nopObserver{}
	}
	if deps.IdleTTL <= 0 {
		deps.IdleTTL = DefaultIdleTTL
	}
	return &Manager{
		deps:      deps,
		sessions:  make(map[string]*Session),
		lastEpoch: -2,
	}
}

// Params returns the economics in force.
func (m *Manager) Params() economy.Params { return m.deps.Params }

// Sale returns the sale engine.
func (m *Manager) Sale() *economy.Sale { return m.deps.Sale }

// Now is the manager's clock reading.
func (m *Manager) Now() time.Time { return m.deps.Clock.Now() }

// Open returns the holder's session, loading the record and persisting the
// seed record on first contact. Every call refreshes the session's idle timer.
func (m *Manager) Open(ctx context.Context, holderID string) (*Session, error) {
	if holderID == "" {
		return nil, ErrNotAuthenticated
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	nowMs := m.Now().UnixMilli()
	if s, ok := m.sessions[holderID]; ok {
		s.lastSeen.Store(nowMs)
		return s, nil
	}

	rec, exists, err := m.deps.Repo.LoadUser(ctx, holderID, nowMs)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := m.deps.Repo.SaveUser(ctx, holderID, rec); err != nil {
			return nil, err
		}
		log.WithField("holder", holderID).Info("initialised new holder account")
	}
	s := &Session{id: holderID, m: m, rec: rec}
	s.lastSeen.Store(nowMs)
	m.sessions[holderID] = s
	m.deps.Metrics.Sessions(len(m.sessions))
	return s, nil
}

// CloseSession drops the holder's session. The persisted record is untouched.
func (m *Manager) CloseSession(holderID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, holderID)
	m.deps.Metrics.Sessions(len(m.sessions))
}

// Sessions returns the open sessions ordered by holder id.
func (m *Manager) Sessions() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// Peek reads a holder record without opening a session. Anonymous callers
// get the default record.
func (m *Manager) Peek(ctx context.Context, holderID string) (model.UserRecord, error) {
	nowMs := m.Now().UnixMilli()
	if holderID == "" {
		return m.deps.Repo.Default(nowMs), nil
	}
	m.mu.Lock()
	s, ok := m.sessions[holderID]
	m.mu.Unlock()
	if ok {
		return s.Snapshot(), nil
	}
	rec, _, err := m.deps.Repo.LoadUser(ctx, holderID, nowMs)
	return rec, err
}

// Exists reports whether the holder has an open session or a stored record.
func (m *Manager) Exists(ctx context.Context, holderID string) (bool, error) {
	m.mu.Lock()
	_, ok := m.sessions[holderID]
	m.mu.Unlock()
	if ok {
		return true, nil
	}
	_, exists, err := m.deps.Repo.LoadUser(ctx, holderID, m.Now().UnixMilli())
	return exists, err
}

// Watch streams the holder's persisted record: the current snapshot first,
// then every committed change. The channel closes when ctx ends. The
// holder's session is kept open while the stream lives.
func (m *Manager) Watch(ctx context.Context, holderID string) (<-chan model.UserRecord, error) {
	s, err := m.Open(ctx, holderID)
	if err != nil {
		return nil, err
	}
	updates, err := m.deps.Repo.WatchUser(ctx, holderID, m.Now().UnixMilli())
	if err != nil {
		return nil, err
	}
	s.watchers.Add(1)
	go func() {
		<-ctx.Done()
		s.lastSeen.Store(m.Now().UnixMilli())
		s.watchers.Add(-1)
	}()
	return updates, nil
}

// EvictIdle drops sessions with no Open within the idle TTL. Sessions with a
// live Watch stream, a spin in flight or an operation holding the session
// lock are kept. Persisted records are untouched; accrual resumes from the
// stored anchor when the holder comes back.
func (m *Manager) EvictIdle() int {
	cutoff := m.Now().Add(-m.deps.IdleTTL).UnixMilli()

	m.mu.Lock()
	defer m.mu.Unlock()
	evicted := 0
	for id, s := range m.sessions {
		if s.lastSeen.Load() > cutoff || s.watchers.Load() > 0 || s.spinning.Load() {
			continue
		}
		if !s.mu.TryLock() {
			continue
		}
		s.mu.Unlock()
		delete(m.sessions, id)
		evicted++
	}
	if evicted > 0 {
		m.deps.Metrics.Sessions(len(m.sessions))
		log.WithFields(log.Fields{"evicted": evicted, "open": len(m.sessions)}).Debug("idle sessions evicted")
	}
	return evicted
}

// TickAccrual settles accrual for every open session, then evicts the idle ones.
func (m *Manager) TickAccrual(ctx context.Context) {
	start := time.Now()
	for _, s := range m.Sessions() {
		if err := s.Tick(ctx); err != nil {
			log.WithError(err).WithField("holder", s.id).Warn("accrual tick failed")
		}
	}
	m.EvictIdle()
	m.deps.Metrics.ObserveTick(time.Since(start).Seconds())
}

// TickSale recomputes the sale epoch, announces transitions and resets the
// per-epoch counters of open sessions.
func (m *Manager) TickSale(ctx context.Context) economy.Status {
	st := m.deps.Sale.Status(m.Now())
	m.deps.Metrics.Epoch(st.Epoch)

	m.epochMu.Lock()
	changed := m.lastEpoch != -2 && st.Epoch != m.lastEpoch
	m.lastEpoch = st.Epoch
	m.epochMu.Unlock()

	if changed {
		log.WithFields(log.Fields{"epoch": st.Epoch, "price": st.Price.String()}).Info("sale epoch changed")
		m.deps.Observer.EpochChanged(st)
	}
	for _, s := range m.Sessions() {
		if err := s.ObserveSale(ctx); err != nil {
			log.WithError(err).WithField("holder", s.id).Warn("sale tick failed")
		}
	}
	return st
}

// GlobalBurn reads the global burn ledger.
func (m *Manager) GlobalBurn(ctx context.Context) (model.GlobalBurnStats, error) {
	return m.deps.Repo.LoadGlobalBurn(ctx)
}

// CreditGlobal adds amount to the global ready-to-burn counter.
func (m *Manager) CreditGlobal(ctx context.Context, amount decimal.Decimal) (model.GlobalBurnStats, error) {
	if !amount.IsPositive() {
		return model.GlobalBurnStats{}, economy.ErrInvalidAmount
	}
	m.globalMu.Lock()
	defer m.globalMu.Unlock()

	g, err := m.deps.Repo.LoadGlobalBurn(ctx)
	if err != nil {
		return model.GlobalBurnStats{}, err
	}
	g.BurnPool = economy.Credit(g.BurnPool, amount)
	g.UpdatedAt = m.Now().UnixMilli()
	if err := m.deps.Repo.SaveGlobalBurn(ctx, g); err != nil {
		return model.GlobalBurnStats{}, err
	}
	return g, nil
}

// BurnGlobal burns everything ready in the global ledger. holderID names the
// caller for the event log and may be empty for operator actions.
func (m *Manager) BurnGlobal(ctx context.Context, holderID string) (decimal.Decimal, error) {
	m.globalMu.Lock()
	defer m.globalMu.Unlock()

	g, err := m.deps.Repo.LoadGlobalBurn(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	pool, burnt, err := economy.BurnAll(g.BurnPool)
	if err != nil {
		return decimal.Zero, err
	}
	g.BurnPool = pool
	g.UpdatedAt = m.Now().UnixMilli()
	if err := m.deps.Repo.SaveGlobalBurn(ctx, g); err != nil {
		return decimal.Zero, err
	}

	m.afterBurn(holderID, economy.TargetGlobal, burnt, pool.TotalBurnt)
	return burnt, nil
}

// lockedRand makes a Rand safe for spins running on different sessions.
type lockedRand struct {
	mu sync.Mutex
	r  economy.Rand
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

func (m *Manager) afterBurn(holderID string, target economy.BurnTarget, burnt, total decimal.Decimal) {
	if err := m.deps.Recorder.RecordBurn(&recorder.BurnEvent{
		Holder: holderID, Target: string(target), Amount: burnt, TotalAfter: total,
	}); err != nil {
		log.WithError(err).Error("record burn")
	}
	m.deps.Metrics.Burnt(string(target), burnt)
	m.deps.Observer.Burned(holderID, target, burnt, total)
}
