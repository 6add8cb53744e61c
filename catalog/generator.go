package catalog

import (
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/use-agent/velocity/models"
)

// DefaultBaseURL prefixes the synthesized demo source URLs.
const DefaultBaseURL = "https://example.com"

// Generator samples demo records. It is safe for concurrent use.
type Generator struct {
	min, max int
	baseURL  string

	mu  sync.Mutex
	rng *rand.Rand
}

// Options configures a Generator.
type Options struct {
	// Seed makes sampling deterministic when non-zero.
	Seed uint64
	// Min and Max bound the number of records per sample. Defaults 3 and 5.
	Min, Max int
	// BaseURL overrides DefaultBaseURL.
	BaseURL string
}

// NewGenerator returns a Generator over the built-in pool.
func NewGenerator(opts Options) *Generator {
	if opts.Min <= 0 {
		opts.Min = 3
	}
	if opts.Max < opts.Min {
		opts.Max = max(opts.Min, 5)
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	seed1, seed2 := opts.Seed, opts.Seed^0x9e3779b97f4a7c15
	if opts.Seed == 0 {
		seed1, seed2 = rand.Uint64(), rand.Uint64()
	}
	return &Generator{
		min:     opts.Min,
		max:     opts.Max,
		baseURL: opts.BaseURL,
		rng:     rand.New(rand.NewPCG(seed1, seed2)),
	}
}

// Sample draws between Min and Max distinct records. A target naming a
// category ("electronics", "home-appliances", "beauty") restricts the draw
// to that category; any other target draws from the whole pool.
func (g *Generator) Sample(target string) []models.RawScrapedItem {
	candidates := Filter(target)
	if len(candidates) == 0 {
		candidates = pool
	}

	g.mu.Lock()
	n := g.min + g.rng.IntN(g.max-g.min+1)
	perm := g.rng.Perm(len(candidates))
	g.mu.Unlock()

	n = min(n, len(candidates))
	items := make([]models.RawScrapedItem, 0, n)
	for _, idx := range perm[:n] {
		items = append(items, candidates[idx].Item(g.baseURL))
	}
	return items
}

// Filter returns the pool products whose category matches target, or nil
// when target names no category.
func Filter(target string) []Product {
	key := normalize(target)
	if key == "" {
		return nil
	}
	var out []Product
	for _, p := range pool {
		cat := normalize(p.Category)
		first, _, _ := strings.Cut(cat, " ")
		if cat == key || first == key {
			out = append(out, p)
		}
	}
	return out
}

// Categories lists the distinct categories in pool order.
func Categories() []string {
	var out []string
	seen := make(map[string]bool)
	for _, p := range pool {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", " ", "_", " ", "&", "and").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
