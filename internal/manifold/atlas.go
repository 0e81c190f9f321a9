package manifold

import (
	"fmt"
	"sort"

	"github.com/san-kum/geodesim/internal/dynamo"
)

type pair struct {
	from, to string
}

// Atlas is a registry of charts and the conversions between them.
type Atlas struct {
	charts map[string]Chart
	convs  map[pair]Conversion
}

func NewAtlas() *Atlas {
	return &Atlas{
		charts: make(map[string]Chart),
		convs:  make(map[pair]Conversion),
	}
}

func (a *Atlas) AddChart(charts ...Chart) {
	for _, c := range charts {
		a.charts[c.Name()] = c
	}
}

// Register adds conversions and the charts at both ends.
func (a *Atlas) Register(convs ...Conversion) {
	for _, c := range convs {
		a.AddChart(c.From(), c.To())
		a.convs[pair{c.From().Name(), c.To().Name()}] = c
	}
}

func (a *Atlas) Chart(name string) (Chart, error) {
	c, ok := a.charts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", dynamo.ErrUnknownChart, name)
	}
	return c, nil
}

func (a *Atlas) Conversion(from, to string) (Conversion, error) {
	c, ok := a.convs[pair{from, to}]
	if !ok {
		return nil, fmt.Errorf("%w: %s -> %s", dynamo.ErrNoConversion, from, to)
	}
	return c, nil
}

func (a *Atlas) Charts() []string {
	names := make([]string, 0, len(a.charts))
	for name := range a.charts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Conversions returns every registered conversion ordered by source, then target.
func (a *Atlas) Conversions() []Conversion {
	keys := make([]pair, 0, len(a.convs))
	for k := range a.convs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].from != keys[j].from {
			return keys[i].from < keys[j].from
		}
		return keys[i].to < keys[j].to
	})
	out := make([]Conversion, len(keys))
	for i, k := range keys {
		out[i] = a.convs[k]
	}
	return out
}
