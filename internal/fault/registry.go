package fault

// Recipe binds a fault kind to the description of how to induce it. Run
// drives Executor primitives only; under the host executor it does not
// return.
type Recipe struct {
	Kind      Kind
	Label     string
	Summary   string
	Signature string
	Run       func(Executor)
}

// Registry is the closed catalog of inducible faults. It is built once and
// shared by reference; all methods are read-only and safe for concurrent use.
type Registry struct {
	recipes map[Kind]Recipe
	byLabel map[string]Kind
	order   []string
}

// NewRegistry builds the catalog. Every non-NONE kind gets exactly one
// recipe; the listing order is the label declaration order.
func NewRegistry() *Registry {
	r := &Registry{
		recipes: make(map[Kind]Recipe, len(labels)),
		byLabel: make(map[string]Kind, len(labels)),
		order:   labels[:],
	}
	for _, rec := range buildRecipes() {
		r.recipes[rec.Kind] = rec
		r.byLabel[rec.Label] = rec.Kind
	}
	return r
}

// List returns every command label in declaration order.
func (r *Registry) List() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Resolve maps a normalized command string to its Kind. Matching is exact
// and case-sensitive; anything unrecognized resolves to KindNone.
func (r *Registry) Resolve(label string) Kind {
	if k, ok := r.byLabel[label]; ok {
		return k
	}
	return KindNone
}

// Recipe retrieves the recipe for a kind. KindNone has none.
func (r *Registry) Recipe(k Kind) (Recipe, bool) {
	rec, ok := r.recipes[k]
	return rec, ok
}
