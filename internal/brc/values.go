package brc

// ValueGroups collects already decoded values per key. It owns copies of
// its keys, so it does not depend on the memory the records came from.
type ValueGroups struct {
	index  map[string]int
	names  []string
	values [][]Fixed
}

func NewValueGroups() *ValueGroups {
	return &ValueGroups{index: make(map[string]int, defaultBuckets)}
}

func (g *ValueGroups) Add(name []byte, m Fixed) {
	i, ok := g.index[string(name)]
	if !ok {
		i = len(g.names)
		key := string(name)
		g.index[key] = i
		g.names = append(g.names, key)
		g.values = append(g.values, nil)
	}
	g.values[i] = append(g.values[i], m)
}

// Merge appends the values of other after ours.
func (g *ValueGroups) Merge(other *ValueGroups) {
	for j, name := range other.names {
		i, ok := g.index[name]
		if !ok {
			g.index[name] = len(g.names)
			g.names = append(g.names, name)
			g.values = append(g.values, other.values[j])
			continue
		}
		g.values[i] = append(g.values[i], other.values[j]...)
	}
}

func (g *ValueGroups) Len() int { return len(g.names) }

func (g *ValueGroups) Name(i int) string { return g.names[i] }

func (g *ValueGroups) Values(i int) []Fixed { return g.values[i] }
