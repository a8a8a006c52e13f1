package shift

import (
	"cmp"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/tf416/rosterbot/internal/roster"
	"go.uber.org/zap"
)

var (
	ErrAlreadyClockedIn = errors.New("already clocked in")
	ErrNotClockedIn     = errors.New("not clocked in")
)

// DefaultProofTimeout is how long a clocked-out member has to post proof.
const DefaultProofTimeout = 5 * time.Minute

// Session is an open clock-in.
type Session struct {
	UserID   snowflake.ID
	Username string
	Rank     roster.Rank
	Zone     Zone
	Start    time.Time
}

// Proof is a closed session waiting for its screenshot.
type Proof struct {
	Session

	End     time.Time
	Elapsed time.Duration
	Note    string
}

type pendingProof struct {
	proof Proof
	timer *time.Timer
	gen   uint64
}

// Tracker holds open sessions and pending proofs. Each user has at most one
// of each; proofs expire after the configured timeout.
type Tracker struct {
	mu       sync.Mutex
	active   map[snowflake.ID]*Session
	pending  map[snowflake.ID]*pendingProof
	gen      uint64
	timeout  time.Duration
	now      func() time.Time
	onExpire func(Proof)
	logger   *zap.Logger
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// NewTracker creates a tracker. A non-positive timeout uses DefaultProofTimeout.
func NewTracker(timeout time.Duration, logger *zap.Logger, opts ...Option) *Tracker {
	if timeout <= 0 {
		timeout = DefaultProofTimeout
	}

	t := &Tracker{
		active:  make(map[snowflake.ID]*Session),
		pending: make(map[snowflake.ID]*pendingProof),
		timeout: timeout,
		now:     time.Now,
		logger:  logger.Named("shift"),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// OnExpire registers a hook called when a pending proof times out.
func (t *Tracker) OnExpire(fn func(Proof)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.onExpire = fn
}

// ClockIn opens a session for the user.
func (t *Tracker) ClockIn(userID snowflake.ID, username string, rank roster.Rank, zone Zone) (Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.active[userID]; ok {
		return Session{}, ErrAlreadyClockedIn
	}

	s := &Session{
		UserID:   userID,
		Username: username,
		Rank:     rank,
		Zone:     zone,
		Start:    t.now().UTC(),
	}
	t.active[userID] = s

	t.logger.Info("Clocked in",
		zap.Stringer("userID", userID),
		zap.String("username", username),
		zap.String("zone", zone.Name))

	return *s, nil
}

// ClockOut closes the user's session and holds it as a pending proof. An
// earlier pending proof for the same user is replaced and its timer stopped.
func (t *Tracker) ClockOut(userID snowflake.ID, note string) (Proof, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.active[userID]
	if !ok {
		return Proof{}, ErrNotClockedIn
	}

	delete(t.active, userID)

	end := t.now().UTC()
	proof := Proof{
		Session: *s,
		End:     end,
		Elapsed: end.Sub(s.Start),
		Note:    note,
	}

	if old, ok := t.pending[userID]; ok {
		old.timer.Stop()
		t.logger.Info("Replaced pending proof", zap.Stringer("userID", userID))
	}

	t.gen++
	gen := t.gen
	t.pending[userID] = &pendingProof{
		proof: proof,
		gen:   gen,
		timer: time.AfterFunc(t.timeout, func() { t.expire(userID, gen) }),
	}

	t.logger.Info("Clocked out",
		zap.Stringer("userID", userID),
		zap.Duration("elapsed", proof.Elapsed))

	return proof, nil
}

// ConsumeProof removes and returns the user's pending proof.
func (t *Tracker) ConsumeProof(userID snowflake.ID) (Proof, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.pending[userID]
	if !ok {
		return Proof{}, false
	}

	p.timer.Stop()
	delete(t.pending, userID)

	return p.proof, true
}

// HasPendingProof reports whether the user owes proof.
func (t *Tracker) HasPendingProof(userID snowflake.ID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.pending[userID]

	return ok
}

// Elapsed returns how long the user has been clocked in.
func (t *Tracker) Elapsed(userID snowflake.ID) (time.Duration, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.active[userID]
	if !ok {
		return 0, false
	}

	return t.now().UTC().Sub(s.Start), true
}

// Session returns the user's open session.
func (t *Tracker) Session(userID snowflake.ID) (Session, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.active[userID]
	if !ok {
		return Session{}, false
	}

	return *s, true
}

// Active returns open sessions, highest rank first, then earliest start.
func (t *Tracker) Active() []Session {
	t.mu.Lock()
	sessions := make([]Session, 0, len(t.active))
	for _, s := range t.active {
		sessions = append(sessions, *s)
	}
	t.mu.Unlock()

	slices.SortFunc(sessions, func(a, b Session) int {
		if c := cmp.Compare(b.Rank, a.Rank); c != 0 {
			return c
		}

		return a.Start.Compare(b.Start)
	})

	return sessions
}

// Close stops every pending timer.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, p := range t.pending {
		p.timer.Stop()
	}
}

// expire drops a pending proof if it is still the one the timer was armed for.
func (t *Tracker) expire(userID snowflake.ID, gen uint64) {
	t.mu.Lock()

	p, ok := t.pending[userID]
	if !ok || p.gen != gen {
		t.mu.Unlock()
		return
	}

	delete(t.pending, userID)
	hook := t.onExpire
	t.mu.Unlock()

	t.logger.Info("Pending proof expired",
		zap.Stringer("userID", userID),
		zap.String("username", p.proof.Username),
		zap.Duration("elapsed", p.proof.Elapsed))

	if hook != nil {
		hook(p.proof)
	}
}
