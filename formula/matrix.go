package formula

import (
	"sort"
	"strings"
)

// Matrix spans the settings and options a package can be built with.
// Require holds settings (os, arch, ...) and Options holds recipe options.
type Matrix struct {
	Require map[string][]string
	Options map[string][]string
}

// Expand returns every combination of the matrix as a name→value map.
// Keys are walked in sorted order, Require first, so the result order is
// stable.
func (m *Matrix) Expand() []map[string]string {
	type axis struct {
		key    string
		values []string
	}
	var axes []axis
	for _, kvs := range []map[string][]string{m.Require, m.Options} {
		keys := make([]string, 0, len(kvs))
		for k := range kvs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			axes = append(axes, axis{key: k, values: kvs[k]})
		}
	}
	if len(axes) == 0 {
		return nil
	}

	result := []map[string]string{{}}
	for _, a := range axes {
		next := make([]map[string]string, 0, len(result)*len(a.values))
		for _, prev := range result {
			for _, v := range a.values {
				combo := make(map[string]string, len(prev)+1)
				for k, pv := range prev {
					combo[k] = pv
				}
				combo[a.key] = v
				next = append(next, combo)
			}
		}
		result = next
	}
	return result
}

// Combinations returns every combination rendered as a string. Require
// values are joined with "-", option values likewise, and the two halves
// are joined with "|".
func (m *Matrix) Combinations() []string {
	combos := m.Expand()
	out := make([]string, 0, len(combos))
	for _, c := range combos {
		req := joinValues(m.Require, c)
		opt := joinValues(m.Options, c)
		switch {
		case req == "":
			out = append(out, opt)
		case opt == "":
			out = append(out, req)
		default:
			out = append(out, req+"|"+opt)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// CombinationCount returns len(m.Combinations()) without building them.
func (m *Matrix) CombinationCount() int {
	if len(m.Require) == 0 && len(m.Options) == 0 {
		return 0
	}
	count := 1
	for _, kvs := range []map[string][]string{m.Require, m.Options} {
		for _, v := range kvs {
			count *= len(v)
		}
	}
	return count
}

func joinValues(axes map[string][]string, combo map[string]string) string {
	keys := make([]string, 0, len(axes))
	for k := range axes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	vals := make([]string, len(keys))
	for i, k := range keys {
		vals[i] = combo[k]
	}
	return strings.Join(vals, "-")
}
