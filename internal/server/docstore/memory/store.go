// Package memory is an in-process document store with optimistic
// concurrency control. Each document carries a version; a transaction
// records the version of everything it reads, buffers its writes and, at
// commit, rejects with docstore.ErrConflict if any of those versions moved.
// The public identifier map is updated in the same commit as the user
// document, so it acts as a secondary index.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/dmitrijs2005/followhub/internal/common"
	"github.com/dmitrijs2005/followhub/internal/server/docstore"
	"github.com/dmitrijs2005/followhub/internal/server/models"
)

type docKind int

const (
	userDocument docKind = iota
	indexDocument
	publicIDEntry
)

// docRef names one versioned thing a transaction may read.
type docRef struct {
	kind docKind
	id   string
}

type userDoc struct {
	user    *models.User
	version uint64
}

// Store implements docstore.Store in memory. Safe for concurrent use.
type Store struct {
	mu           sync.RWMutex
	users        map[string]*userDoc
	byPublicID   map[string]string
	index        []string
	indexVersion uint64
}

var _ docstore.Store = (*Store)(nil)

// New returns an empty store whose index document exists and is empty.
func New() *Store {
	return &Store{
		users:      make(map[string]*userDoc),
		byPublicID: make(map[string]string),
		index:      []string{},
	}
}

func (s *Store) GetUser(ctx context.Context, privateID string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.users[privateID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return d.user.Clone(), nil
}

func (s *Store) FindUserByPublicID(ctx context.Context, publicID string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	privateID, ok := s.byPublicID[publicID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return s.users[privateID].user.Clone(), nil
}

func (s *Store) GetIndex(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.index), nil
}

// RunInTx runs fn once and commits its writes if nothing it read has changed.
func (s *Store) RunInTx(ctx context.Context, fn docstore.TxFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t := &tx{
		s:              s,
		reads:          make(map[docRef]uint64),
		following:      make(map[string][]string),
		followerCounts: make(map[string]int64),
	}
	if err := fn(ctx, docstore.Ordered(t)); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	return s.commit(t)
}

func (s *Store) Close() error {
	return nil
}

// versionLocked returns the current version of ref. Absent documents are version 0.
// s.mu must be held.
func (s *Store) versionLocked(ref docRef) uint64 {
	switch ref.kind {
	case userDocument:
		if d, ok := s.users[ref.id]; ok {
			return d.version
		}
	case indexDocument:
		return s.indexVersion
	case publicIDEntry:
		// public ids are immutable once assigned
		if _, ok := s.byPublicID[ref.id]; ok {
			return 1
		}
	}
	return 0
}

func (s *Store) commit(t *tx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for ref, seen := range t.reads {
		if s.versionLocked(ref) != seen {
			return docstore.ErrConflict
		}
	}

	// validate everything before touching anything
	pending := make(map[string]bool, len(t.created))
	for _, u := range t.created {
		if _, exists := s.users[u.PrivateID]; exists || pending[u.PrivateID] {
			return fmt.Errorf("user document %s already exists", u.PrivateID)
		}
		if _, exists := s.byPublicID[u.PublicID]; exists {
			return fmt.Errorf("public id %s already assigned", u.PublicID)
		}
		pending[u.PrivateID] = true
	}
	for privateID := range t.following {
		if _, ok := s.users[privateID]; !ok && !pending[privateID] {
			return common.ErrorNotFound
		}
	}
	for privateID := range t.followerCounts {
		if _, ok := s.users[privateID]; !ok && !pending[privateID] {
			return common.ErrorNotFound
		}
	}

	for _, u := range t.created {
		s.users[u.PrivateID] = &userDoc{user: u, version: 1}
		s.byPublicID[u.PublicID] = u.PrivateID
	}

	touched := make(map[string]struct{})
	for privateID, following := range t.following {
		s.users[privateID].user.Following = following
		touched[privateID] = struct{}{}
	}
	for privateID, count := range t.followerCounts {
		s.users[privateID].user.FollowerCount = count
		touched[privateID] = struct{}{}
	}
	for privateID := range touched {
		s.users[privateID].version++
	}

	if t.indexSet {
		s.index = t.index
		s.indexVersion++
	}
	return nil
}

// tx buffers writes until commit. It is used by one goroutine.
type tx struct {
	s     *Store
	reads map[docRef]uint64

	created        []*models.User
	following      map[string][]string
	followerCounts map[string]int64
	index          []string
	indexSet       bool
}

// observe records the version of ref the first time it is read. s.mu must be held.
func (t *tx) observe(ref docRef) {
	if _, seen := t.reads[ref]; !seen {
		t.reads[ref] = t.s.versionLocked(ref)
	}
}

func (t *tx) GetUser(ctx context.Context, privateID string) (*models.User, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	t.observe(docRef{kind: userDocument, id: privateID})
	d, ok := t.s.users[privateID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return d.user.Clone(), nil
}

func (t *tx) FindUserByPublicID(ctx context.Context, publicID string) (*models.User, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	t.observe(docRef{kind: publicIDEntry, id: publicID})
	privateID, ok := t.s.byPublicID[publicID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	t.observe(docRef{kind: userDocument, id: privateID})
	return t.s.users[privateID].user.Clone(), nil
}

func (t *tx) GetIndex(ctx context.Context) ([]string, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	t.observe(docRef{kind: indexDocument})
	return slices.Clone(t.s.index), nil
}

func (t *tx) SetIndex(ctx context.Context, userList []string) error {
	t.index = slices.Clone(userList)
	if t.index == nil {
		t.index = []string{}
	}
	t.indexSet = true
	return nil
}

func (t *tx) CreateUser(ctx context.Context, user *models.User) error {
	t.created = append(t.created, user.Clone())
	return nil
}

func (t *tx) UpdateFollowing(ctx context.Context, privateID string, following []string) error {
	t.following[privateID] = slices.Clone(following)
	return nil
}

func (t *tx) UpdateFollowerCount(ctx context.Context, privateID string, count int64) error {
	t.followerCounts[privateID] = count
	return nil
}
