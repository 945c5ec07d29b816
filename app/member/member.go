// Package member holds the member domain used by the demo application.
package member

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// ErrNotFound is returned when no member has the requested id.
var ErrNotFound = errors.New("member not found")

// Grade is a member's tier.
type Grade string

const (
	Basic Grade = "BASIC"
	VIP   Grade = "VIP"
)

// ParseGrade accepts "BASIC" or "VIP". An empty string is Basic.
func ParseGrade(s string) (Grade, error) {
	switch Grade(s) {
	case "", Basic:
		return Basic, nil
	case VIP:
		return VIP, nil
	default:
		return "", errors.Errorf("unknown grade %q", s)
	}
}

type Member struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Grade Grade  `json:"grade"`
}

// Repository stores members.
type Repository interface {
	Save(m Member) error
	FindByID(id int64) (Member, error)
	All() []Member
}

// MemoryRepository is a Repository backed by a map.
type MemoryRepository struct {
	mu      sync.RWMutex
	members map[int64]Member
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{members: make(map[int64]Member)}
}

func (r *MemoryRepository) Save(m Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[m.ID] = m
	return nil
}

func (r *MemoryRepository) FindByID(id int64) (Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.members[id]
	if !ok {
		return Member{}, errors.Wrapf(ErrNotFound, "id %d", id)
	}
	return m, nil
}

// All returns every member ordered by id.
func (r *MemoryRepository) All() []Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Member, 0, len(r.members))
	for _, m := range r.members {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
