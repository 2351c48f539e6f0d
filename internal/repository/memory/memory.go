// Package memory is the in-process storage backend. It satisfies the same contracts
// as the postgres stores and is what the service runs on when no database is configured.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/maxviazov/rotation-advisor-service/internal/history"
	"github.com/maxviazov/rotation-advisor-service/internal/model"
	"github.com/maxviazov/rotation-advisor-service/internal/repository"
)

// Store holds every game and its rotation log.
// Transactions are serialised with each other and roll back by restoring a snapshot.
type Store struct {
	txMu sync.Mutex

	mu         sync.RWMutex
	games      map[string]model.Game
	logs       map[string]*history.Log
	historyCap int
	now        func() time.Time
}

// New returns an empty store. historyCap bounds each game's rotation log.
func New(historyCap int) *Store {
	return &Store{
		games:      make(map[string]model.Game),
		logs:       make(map[string]*history.Log),
		historyCap: historyCap,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Games() repository.GameRepository      { return (*gameStore)(s) }
func (s *Store) History() repository.HistoryRepository { return (*historyStore)(s) }
func (s *Store) TxManager() repository.TxManager       { return (*txManager)(s) }

// Ping only fails when the context is already done.
func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

var _ repository.Pinger = (*Store)(nil)

type gameStore Store

func (r *gameStore) Create(_ context.Context, g model.Game) (model.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if _, ok := r.games[g.ID]; ok {
		return model.Game{}, repository.ErrAlreadyExists
	}
	now := r.now()
	g.CreatedAt, g.UpdatedAt = now, now
	g.State = g.State.Clone()
	r.games[g.ID] = g
	return cloneGame(g), nil
}

func (r *gameStore) GetByID(_ context.Context, id string) (model.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.games[id]
	if !ok {
		return model.Game{}, repository.ErrNotFound
	}
	return cloneGame(g), nil
}

func (r *gameStore) Update(_ context.Context, g model.Game) (model.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.games[g.ID]
	if !ok {
		return model.Game{}, repository.ErrNotFound
	}
	cur.Name = g.Name
	cur.State = g.State.Clone()
	cur.UpdatedAt = r.now()
	r.games[g.ID] = cur
	return cloneGame(cur), nil
}

func (r *gameStore) List(_ context.Context, p repository.Page) (repository.PageResult[model.Game], error) {
	p = p.Sanitize()
	r.mu.RLock()
	all := make([]model.Game, 0, len(r.games))
	for _, g := range r.games {
		all = append(all, g)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})
	res := repository.PageResult[model.Game]{Items: []model.Game{}, Total: len(all)}
	if p.Offset >= len(all) {
		return res, nil
	}
	end := min(p.Offset+p.Limit, len(all))
	for _, g := range all[p.Offset:end] {
		res.Items = append(res.Items, cloneGame(g))
	}
	return res, nil
}

type historyStore Store

func (r *historyStore) Append(_ context.Context, rec model.RotationRecord) (model.RotationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.games[rec.GameID]; !ok {
		return model.RotationRecord{}, repository.ErrConflict
	}
	if rec.Action != model.ActionIn && rec.Action != model.ActionOut {
		return model.RotationRecord{}, repository.ErrInvalidRecord
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = r.now()
	}
	l, ok := r.logs[rec.GameID]
	if !ok {
		l = history.New(r.historyCap)
		r.logs[rec.GameID] = l
	}
	l.Append(rec)
	return rec, nil
}

func (r *historyStore) Recent(_ context.Context, gameID string, limit int) ([]model.RotationRecord, error) {
	r.mu.RLock()
	l, ok := r.logs[gameID]
	r.mu.RUnlock()
	if !ok {
		return []model.RotationRecord{}, nil
	}
	all := l.All()
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, nil
}

type txManager Store

func (m *txManager) WithinTx(ctx context.Context, fn repository.TxFunc) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	s := (*Store)(m)
	snap := s.snapshot()
	if err := fn(ctx); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type snapshot struct {
	games map[string]model.Game
	logs  map[string][]model.RotationRecord
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := snapshot{
		games: make(map[string]model.Game, len(s.games)),
		logs:  make(map[string][]model.RotationRecord, len(s.logs)),
	}
	for id, g := range s.games {
		snap.games[id] = cloneGame(g)
	}
	for id, l := range s.logs {
		snap.logs[id] = l.All()
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games = snap.games
	s.logs = make(map[string]*history.Log, len(snap.logs))
	for id, recs := range snap.logs {
		l := history.New(s.historyCap)
		for _, rec := range recs {
			l.Append(rec)
		}
		s.logs[id] = l
	}
}

func cloneGame(g model.Game) model.Game {
	g.State = g.State.Clone()
	return g
}

var (
	_ repository.GameRepository    = (*gameStore)(nil)
	_ repository.HistoryRepository = (*historyStore)(nil)
	_ repository.TxManager         = (*txManager)(nil)
)
