package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// ErrUnknownKey is returned when an update payload carries a key that
// is not a recognized workflow option. The whole update is rejected.
var ErrUnknownKey = errors.New("unknown config key")

// ApplyUpdates merges a key/value payload into the workflow options.
// Any unrecognized key fails the entire call and leaves the input
// untouched; there is no partial application.
func ApplyUpdates(opts Options, updates map[string]any) (Options, error) {
	out := opts

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return opts, err
	}

	if err := dec.Decode(updates); err != nil {
		if strings.Contains(err.Error(), "invalid keys") {
			return opts, fmt.Errorf("%w: %v", ErrUnknownKey, unusedKeys(updates))
		}
		return opts, err
	}
	return out, nil
}

func unusedKeys(updates map[string]any) []string {
	known := map[string]struct{}{
		"scraping_interval_hours":  {},
		"scoring_threshold":        {},
		"max_auto_applications":    {},
		"auto_apply_enabled":       {},
		"follow_up_interval_days":  {},
		"max_applications_per_day": {},
	}
	var bad []string
	for k := range updates {
		if _, ok := known[k]; !ok {
			bad = append(bad, k)
		}
	}
	return bad
}
