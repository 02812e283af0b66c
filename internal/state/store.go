package state

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"marketpulse/internal/domain"
	"marketpulse/internal/ports"
)

const persistTimeout = 5 * time.Second

// KeyPair is the dual identity used for dedup: an optional source-defined
// natural key plus the normalized title fingerprint.
type KeyPair struct {
	NaturalKey  string
	Fingerprint string
}

// Store owns the single per-day publication record. All access is serialized
// through its mutex; the record is replaced wholesale on day rollover, never
// rolled over incrementally. Every Record persists synchronously so a restart
// mid-day does not repeat deliveries; persistence failures are logged and
// swallowed because the in-memory record stays authoritative for the process
// lifetime.
type Store struct {
	mu sync.Mutex

	repo   ports.StateRepository
	quota  int
	idCap  int
	logger *slog.Logger
	loc    *time.Location
	now    func() time.Time

	day          string
	naturalKeys  *identitySet
	fingerprints *identitySet
	published    int
}

// Options configure the store; Now is injectable for day-rollover tests.
type Options struct {
	Repository  ports.StateRepository
	DailyQuota  int
	IdentityCap int
	Location    *time.Location
	Logger      *slog.Logger
	Now         func() time.Time
}

// New builds the store and loads today's record, if one was persisted, so a
// mid-day restart resumes with the identities and counter already spent.
func New(ctx context.Context, opts Options) *Store {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.IdentityCap <= 0 {
		opts.IdentityCap = 500
	}

	s := &Store{
		repo:   opts.Repository,
		quota:  opts.DailyQuota,
		idCap:  opts.IdentityCap,
		logger: opts.Logger,
		loc:    opts.Location,
		now:    opts.Now,
	}

	today := s.dayKey()
	s.replaceLocked(today)

	if s.repo != nil {
		if rec, ok, err := s.repo.Load(ctx, today); err != nil {
			s.logger.Warn("state load failed, starting empty", "day", today, "error", err)
		} else if ok {
			s.naturalKeys = newIdentitySet(opts.IdentityCap, rec.NaturalKeys)
			s.fingerprints = newIdentitySet(opts.IdentityCap, rec.Fingerprints)
			s.published = rec.Published
			s.logger.Info("state restored", "day", today, "published", rec.Published)
		}
	}

	return s
}

// Seen reports whether either identity of the pair was already published
// today. The natural key is checked first, then the fingerprint.
func (s *Store) Seen(pair KeyPair) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetIfNewDayLocked()

	if pair.NaturalKey != "" && s.naturalKeys.has(pair.NaturalKey) {
		return true
	}
	return s.fingerprints.has(pair.Fingerprint)
}

// Record marks the pair as published, increments the counter, and persists
// the record synchronously.
func (s *Store) Record(pair KeyPair) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetIfNewDayLocked()

	if pair.NaturalKey != "" {
		s.naturalKeys.add(pair.NaturalKey)
	}
	if pair.Fingerprint != "" {
		s.fingerprints.add(pair.Fingerprint)
	}
	s.published++
	s.persistLocked()
}

// RemainingQuota returns how many publications are still allowed today.
func (s *Store) RemainingQuota() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetIfNewDayLocked()

	remaining := s.quota - s.published
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Reset replaces the record wholesale with an empty one stamped today,
// regardless of whether the day changed. Used by the daily reset job.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.replaceLocked(s.dayKey())
	s.persistLocked()
}

// Snapshot returns a copy of the current record, for the health endpoint.
func (s *Store) Snapshot() domain.PublicationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetIfNewDayLocked()

	return s.recordLocked()
}

func (s *Store) dayKey() string {
	return s.now().In(s.loc).Format("2006-01-02")
}

func (s *Store) resetIfNewDayLocked() {
	if today := s.dayKey(); today != s.day {
		s.replaceLocked(today)
		s.persistLocked()
	}
}

func (s *Store) replaceLocked(day string) {
	s.day = day
	s.naturalKeys = newIdentitySet(s.idCap, nil)
	s.fingerprints = newIdentitySet(s.idCap, nil)
	s.published = 0
}

func (s *Store) recordLocked() domain.PublicationRecord {
	return domain.PublicationRecord{
		Day:          s.day,
		NaturalKeys:  s.naturalKeys.values(),
		Fingerprints: s.fingerprints.values(),
		Published:    s.published,
	}
}

func (s *Store) persistLocked() {
	if s.repo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.repo.Save(ctx, s.recordLocked()); err != nil {
		s.logger.Warn("state persist failed, in-memory record stays authoritative", "day", s.day, "error", err)
	}
}

// identitySet is an insertion-ordered set capped to the most recent N
// entries; the oldest entry is evicted first. The cap bounds memory and
// knowingly permits re-publication of a very old recurring identity.
type identitySet struct {
	cap     int
	order   []string
	members map[string]struct{}
}

func newIdentitySet(cap int, values []string) *identitySet {
	s := &identitySet{
		cap:     cap,
		members: make(map[string]struct{}, len(values)),
	}
	for _, v := range values {
		s.add(v)
	}
	return s
}

func (s *identitySet) add(v string) {
	if _, ok := s.members[v]; ok {
		return
	}
	s.members[v] = struct{}{}
	s.order = append(s.order, v)
	for len(s.order) > s.cap {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.members, oldest)
	}
}

func (s *identitySet) has(v string) bool {
	_, ok := s.members[v]
	return ok
}

func (s *identitySet) values() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
