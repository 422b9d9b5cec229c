package led

import (
	"fmt"
	"sort"
)

// Resolver maps an LED index to the sysfs base paths of its two channels.
type Resolver interface {
	Resolve(id int) (Mapping, error)
}

// TemplateResolver formats the LED index into a path template per channel,
// e.g. "/sys/class/leds/port%d_led:blue".
type TemplateResolver struct {
	BlueTemplate   string
	YellowTemplate string
	// Offset is added to the LED index before formatting, for platforms
	// whose sysfs names are 1-based.
	Offset int
}

// Resolve implements Resolver.
func (r TemplateResolver) Resolve(id int) (Mapping, error) {
	if r.BlueTemplate == "" || r.YellowTemplate == "" {
		return Mapping{}, newError(ErrCodeConfig, id, "", "path template not configured", nil)
	}
	return Mapping{
		ID:         id,
		BluePath:   fmt.Sprintf(r.BlueTemplate, id+r.Offset),
		YellowPath: fmt.Sprintf(r.YellowTemplate, id+r.Offset),
	}, nil
}

// StaticResolver serves mappings from a fixed table.
type StaticResolver map[int]Mapping

// NewStaticResolver indexes mappings by ID. Later duplicates win.
func NewStaticResolver(mappings []Mapping) StaticResolver {
	r := make(StaticResolver, len(mappings))
	for _, m := range mappings {
		r[m.ID] = m
	}
	return r
}

// Resolve implements Resolver.
func (r StaticResolver) Resolve(id int) (Mapping, error) {
	m, ok := r[id]
	if !ok {
		return Mapping{}, newError(ErrCodeNotFound, id, "", "no mapping for LED", nil)
	}
	return m, nil
}

// ResolveRange resolves ids [0, count) and returns them in order.
func ResolveRange(r Resolver, count int) ([]Mapping, error) {
	mappings := make([]Mapping, 0, count)
	for id := 0; id < count; id++ {
		m, err := r.Resolve(id)
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, m)
	}
	return mappings, nil
}

func sortMappings(mappings []Mapping) {
	sort.Slice(mappings, func(i, j int) bool {
		return mappings[i].ID < mappings[j].ID
	})
}
