package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"timeguesser/internal/chain"
	"timeguesser/internal/domain"
	"timeguesser/internal/repository"
)

const (
	testValidatorKey     = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testValidatorAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	testContract         = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
	testWallet           = "0xAbC0000000000000000000000000000000000123"
	testTxHash           = "0x5c504ed432cb51138bcf09aa5e8a410dd4a1e204ef84bfed1be16dfba1b22060"
	otherTxHash          = "0x1111111111111111111111111111111111111111111111111111111111111111"
)

// fakeReceipts fails the first failTimes lookups with err, then returns receipt.
type fakeReceipts struct {
	mu        sync.Mutex
	receipt   *chain.Receipt
	byHash    map[string]*chain.Receipt
	err       error
	failTimes int
	calls     int
}

func (f *fakeReceipts) TransactionReceipt(ctx context.Context, txHash string) (*chain.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failTimes {
		return nil, f.err
	}
	if f.byHash != nil {
		r, ok := f.byHash[strings.ToLower(txHash)]
		if !ok {
			return nil, chain.ErrReceiptNotFound
		}
		return r, nil
	}
	if f.receipt == nil {
		return nil, chain.ErrReceiptNotFound
	}
	return f.receipt, nil
}

func (f *fakeReceipts) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func matchingReceipt() *chain.Receipt {
	return &chain.Receipt{
		TxHash: testTxHash,
		Status: chain.ReceiptSuccess,
		From:   strings.ToLower(testWallet),
		To:     strings.ToLower(testContract),
	}
}

// memStore implements every store interface against maps, mimicking the
// repository's constraint errors.
type memStore struct {
	mu        sync.Mutex
	users     map[string]domain.User
	games     map[string]domain.Game
	rounds    []domain.Round
	mints     []*domain.Mint
	writes    int
	roundsErr error
	nextID    int64
	checks    int64
}

func newMemStore() *memStore {
	return &memStore{users: map[string]domain.User{}, games: map[string]domain.Game{}}
}

func (s *memStore) Upsert(ctx context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes++
	prev, ok := s.users[u.CanonicalUserID]
	if ok {
		if u.DisplayName == nil {
			u.DisplayName = prev.DisplayName
		}
		if u.FarcasterFID == nil {
			u.FarcasterFID = prev.FarcasterFID
		}
		if u.AvatarURL == nil {
			u.AvatarURL = prev.AvatarURL
		}
	}
	s.users[u.CanonicalUserID] = *u
	return nil
}

func (s *memStore) Create(ctx context.Context, g *domain.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes++
	if _, ok := s.games[g.ID]; ok {
		return repository.ErrDuplicateGame
	}
	if _, ok := s.users[g.CanonicalUserID]; !ok {
		return errors.New("insert or update on table \"games\" violates foreign key constraint")
	}
	s.games[g.ID] = *g
	return nil
}

func (s *memStore) GetByID(ctx context.Context, id string) (*domain.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &g, nil
}

func (s *memStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes++
	delete(s.games, id)
	kept := s.rounds[:0]
	for _, r := range s.rounds {
		if r.GameID != id {
			kept = append(kept, r)
		}
	}
	s.rounds = kept
	return nil
}

func (s *memStore) CreateBatch(ctx context.Context, rounds []domain.Round) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes++
	if s.roundsErr != nil {
		return s.roundsErr
	}
	s.rounds = append(s.rounds, rounds...)
	return nil
}

// mintStore is the mint table view of memStore; both tables have a Create.
type mintStore struct{ *memStore }

func (s *memStore) stores() *Stores {
	return &Stores{Users: s, Games: s, Rounds: s, Mints: mintStore{s}}
}

func (m mintStore) Create(ctx context.Context, mint *domain.Mint) error {
	s := m.memStore
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes++
	for _, existing := range s.mints {
		if existing.GameID == mint.GameID || existing.TxHash == mint.TxHash {
			return repository.ErrDuplicateMint
		}
	}
	s.nextID++
	mint.ID = s.nextID
	mint.CreatedAt = time.Now()
	stored := *mint
	stored.Player = s.games[mint.GameID].CanonicalUserID
	s.mints = append(s.mints, &stored)
	return nil
}

func (m mintStore) GetByGameID(ctx context.Context, gameID string) (*domain.Mint, error) {
	s := m.memStore
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.mints {
		if existing.GameID == gameID {
			cp := *existing
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m mintStore) GetByTxHash(ctx context.Context, txHash string) (*domain.Mint, error) {
	s := m.memStore
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.mints {
		if strings.EqualFold(existing.TxHash, txHash) {
			cp := *existing
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

// ListForReconcile orders like the repository: never checked first, then by
// last check, then by insertion.
func (m mintStore) ListForReconcile(ctx context.Context, limit int) ([]*domain.Mint, error) {
	s := m.memStore
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Mint
	for _, existing := range s.mints {
		if existing.Status == domain.MintUnverified {
			cp := *existing
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].CheckedAt, out[j].CheckedAt
		switch {
		case a == nil && b == nil:
			return out[i].ID < out[j].ID
		case a == nil || b == nil:
			return a == nil
		case !a.Equal(*b):
			return a.Before(*b)
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m mintStore) MarkChecked(ctx context.Context, id int64) error {
	s := m.memStore
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.mints {
		if existing.ID == id {
			s.checks++
			at := time.Unix(s.checks, 0)
			existing.CheckedAt = &at
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m mintStore) UpdateStatus(ctx context.Context, id int64, from, to domain.MintStatus) error {
	s := m.memStore
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.mints {
		if existing.ID == id && existing.Status == from {
			existing.Status = to
			s.writes++
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *memStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func (s *memStore) mintFor(gameID string) *domain.Mint {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.mints {
		if m.GameID == gameID {
			return m
		}
	}
	return nil
}

// recordingListener captures score events.
type recordingListener struct {
	mu     sync.Mutex
	events []domain.ScoreEvent
}

func (l *recordingListener) ScorePersisted(ctx context.Context, ev domain.ScoreEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}
