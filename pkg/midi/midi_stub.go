//go:build !midi_native

package midi

import "errors"

var errNoDriver = errors.New("native midi driver is not included in this build (build with -tags midi_native)")

// Open opens a midi output.
// Without the midi_native build tag there is no driver and Open always fails.
func Open(name string) (Out, error) {
	return nil, errNoDriver
}

// ListOutputs returns the names of the available midi outputs.
func ListOutputs() []string {
	return nil
}
