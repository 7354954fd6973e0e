package internal

import (
	"fmt"

	"github.com/cybercalc/minisat-recipe/formula"
	"github.com/mitchellh/mapstructure"
)

// parseSettings overlays key=value overrides on the host settings.
// Keys are the mapstructure tags of formula.Settings; unknown keys fail.
func parseSettings(overrides map[string]string) (formula.Settings, error) {
	settings := formula.DefaultSettings()
	if len(overrides) == 0 {
		return settings, nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &settings,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return settings, err
	}
	if err := dec.Decode(overrides); err != nil {
		return settings, fmt.Errorf("invalid settings: %w", err)
	}
	return settings, nil
}
