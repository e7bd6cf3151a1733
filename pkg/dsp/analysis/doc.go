// Package analysis provides the FFT used by the correction bus to move
// between a realized cascade and the frequency domain.
//
// Visualization-oriented analyzers (spectrum/correlation/phasescope/level
// meters) are out of scope here; they belong to a host's UI layer, not
// the audio core.
package analysis
