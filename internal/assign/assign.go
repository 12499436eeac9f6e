// Package assign picks a project manager for a newly created project.
package assign

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"

	"github.com/storefront/backend/internal/model"
)

// ErrEmptyPool is returned when there is no PM to pick from.
var ErrEmptyPool = errors.New("no project manager available")

// Policy chooses one PM from the available pool.
type Policy interface {
	Pick(pool []model.ProjectManager) (model.ProjectManager, error)
}

// Random picks uniformly at random.
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandom creates a Random policy. A nil src uses a randomly seeded PCG.
func NewRandom(src rand.Source) *Random {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Random{rng: rand.New(src)}
}

func (p *Random) Pick(pool []model.ProjectManager) (model.ProjectManager, error) {
	if len(pool) == 0 {
		return model.ProjectManager{}, ErrEmptyPool
	}
	p.mu.Lock()
	i := p.rng.IntN(len(pool))
	p.mu.Unlock()
	return pool[i], nil
}

// RoundRobin cycles through the pool ordered by id, so the rotation is stable
// when the pool is listed in a different order.
type RoundRobin struct {
	mu   sync.Mutex
	last string
}

func NewRoundRobin() *RoundRobin { return &RoundRobin{} }

func (p *RoundRobin) Pick(pool []model.ProjectManager) (model.ProjectManager, error) {
	if len(pool) == 0 {
		return model.ProjectManager{}, ErrEmptyPool
	}
	sorted := sortedByID(pool)

	p.mu.Lock()
	defer p.mu.Unlock()
	i := sort.Search(len(sorted), func(i int) bool { return sorted[i].ID > p.last })
	if i == len(sorted) {
		i = 0
	}
	p.last = sorted[i].ID
	return sorted[i], nil
}

// LeastLoaded picks the PM with the fewest active projects; ties go to the
// lowest id.
type LeastLoaded struct{}

func NewLeastLoaded() LeastLoaded { return LeastLoaded{} }

func (LeastLoaded) Pick(pool []model.ProjectManager) (model.ProjectManager, error) {
	if len(pool) == 0 {
		return model.ProjectManager{}, ErrEmptyPool
	}
	best := pool[0]
	for _, pm := range pool[1:] {
		if pm.ActiveProjects < best.ActiveProjects ||
			(pm.ActiveProjects == best.ActiveProjects && pm.ID < best.ID) {
			best = pm
		}
	}
	return best, nil
}

func sortedByID(pool []model.ProjectManager) []model.ProjectManager {
	out := make([]model.ProjectManager, len(pool))
	copy(out, pool)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ParsePolicy builds a policy from its config name. Empty means random.
func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "random":
		return NewRandom(nil), nil
	case "round_robin", "roundrobin":
		return NewRoundRobin(), nil
	case "least_loaded", "leastloaded":
		return NewLeastLoaded(), nil
	default:
		return nil, fmt.Errorf("assign: unknown policy %q", name)
	}
}
