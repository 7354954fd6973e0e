package formula

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

var (
	// ErrUnknownOption is returned when an override names an option the
	// recipe does not declare.
	ErrUnknownOption = errors.New("unknown option")

	// ErrInvalidOptionValue is returned when an override value is outside
	// the declared domain of its option.
	ErrInvalidOptionValue = errors.New("invalid option value")
)

// Boolean option values, spelled the way recipes declare them.
const (
	False = "False"
	True  = "True"
)

// Option declares the allowed values of a single build option and its default.
type Option struct {
	Values  []string
	Default string
}

// BoolOption returns an option over {False, True} with the given default.
func BoolOption(def bool) Option {
	return Option{Values: []string{False, True}, Default: boolString(def)}
}

func (o Option) isBool() bool {
	return len(o.Values) == 2 && slices.Contains(o.Values, False) && slices.Contains(o.Values, True)
}

// normalize maps v onto the option domain. Boolean options accept anything
// strconv.ParseBool does.
func (o Option) normalize(v string) (string, bool) {
	if o.isBool() {
		b, err := strconv.ParseBool(strings.ToLower(v))
		if err != nil {
			return "", false
		}
		return boolString(b), true
	}
	if slices.Contains(o.Values, v) {
		return v, true
	}
	return "", false
}

// OptionSet maps option names to their declarations.
type OptionSet map[string]Option

// Names returns the option names in sorted order.
func (s OptionSet) Names() []string {
	names := lo.Keys(s)
	sort.Strings(names)
	return names
}

// Defaults returns the default value of every option.
func (s OptionSet) Defaults() Options {
	return lo.MapValues(s, func(o Option, _ string) string {
		return o.Default
	})
}

// Resolve fills in defaults and validates overrides against the declared
// domains. The returned Options always has a value for every option.
func (s OptionSet) Resolve(overrides map[string]string) (Options, error) {
	opts := s.Defaults()
	for name, v := range overrides {
		o, ok := s[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownOption, name)
		}
		nv, ok := o.normalize(v)
		if !ok {
			return nil, fmt.Errorf("%w: %s=%s (allowed: %s)",
				ErrInvalidOptionValue, name, v, strings.Join(o.Values, ", "))
		}
		opts[name] = nv
	}
	return opts, nil
}

// Matrix returns the matrix spanning every declared option value.
func (s OptionSet) Matrix() Matrix {
	m := Matrix{Options: make(map[string][]string, len(s))}
	for name, o := range s {
		m.Options[name] = slices.Clone(o.Values)
	}
	return m
}

// Options holds the selected value of every option for one invocation.
type Options map[string]string

// Bool reports whether the named option is set to True.
func (o Options) Bool(name string) bool {
	return o[name] == True
}

// String renders the options as "name=value" pairs sorted by name and
// joined with ",". The form is stable and used as a cache key.
func (o Options) String() string {
	keys := lo.Keys(o)
	sort.Strings(keys)
	pairs := lo.Map(keys, func(k string, _ int) string {
		return k + "=" + o[k]
	})
	return strings.Join(pairs, ",")
}

func boolString(b bool) string {
	if b {
		return True
	}
	return False
}
