package aggregate

// Link defaults.
const (
	DefaultLinkCap      = 100
	DefaultMaxThreshold = 5
)

// Link is a weighted relation from a source entity to a target entity.
type Link struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Weight int    `json:"weight"`
}

// Graph is an entity/link view over a table: sources are the A axis and
// targets the B axis.
type Graph struct {
	Sources []Entity `json:"sources"`
	Targets []Entity `json:"targets"`
	Links   []Link   `json:"links"`
}

// SelectThreshold returns the smallest inclusion threshold in
// [1, maxThreshold] that keeps a non-zero number of cells not above limit.
// It falls back to 1 when no threshold qualifies.
func SelectThreshold(cells []Cell, limit, maxThreshold int) int {
	for threshold := 1; threshold <= maxThreshold; threshold++ {
		n := 0
		for _, c := range cells {
			if c.Count >= threshold {
				n++
			}
		}
		if n > 0 && n <= limit {
			return threshold
		}
	}
	return 1
}

// BuildLinks converts cells into links. Cells below threshold, with zero
// weight, or with an end outside the given entity sets are dropped.
func BuildLinks(cells []Cell, threshold int, sources, targets []Entity) []Link {
	srcSet := entitySet(sources)
	dstSet := entitySet(targets)

	var links []Link
	for _, c := range cells {
		if c.Count <= 0 || c.Count < threshold {
			continue
		}
		if !srcSet[c.A] || !dstSet[c.B] {
			continue
		}
		links = append(links, Link{Source: c.A, Target: c.B, Weight: c.Count})
	}
	return links
}

// Graph builds the full graph of the table using the automatic threshold.
func (t *Table) Graph(limit, maxThreshold int) (Graph, int) {
	cells := t.Cells()
	threshold := SelectThreshold(cells, limit, maxThreshold)
	sources := t.EntitiesA()
	targets := t.EntitiesB()
	return Graph{
		Sources: sources,
		Targets: targets,
		Links:   BuildLinks(cells, threshold, sources, targets),
	}, threshold
}

// Entity returns the named source or target and whether it exists.
func (g Graph) Entity(name string) (Entity, bool) {
	for _, e := range g.Sources {
		if e.Name == name {
			return e, true
		}
	}
	for _, e := range g.Targets {
		if e.Name == name {
			return e, true
		}
	}
	return Entity{}, false
}

// Weight returns the link weight between source and target (0 if none).
func (g Graph) Weight(source, target string) int {
	for _, l := range g.Links {
		if l.Source == source && l.Target == target {
			return l.Weight
		}
	}
	return 0
}

func entitySet(es []Entity) map[string]bool {
	set := make(map[string]bool, len(es))
	for _, e := range es {
		set[e.Name] = true
	}
	return set
}
