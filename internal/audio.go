package internal

import (
	"fmt"
	"math"
)

// Audio pattern constants
const (
	PatternSize  = 16
	PatternBits  = PatternSize * 8
	DefaultPitch = 64

	basePatternRate = 4000.0
)

var defaultPattern = [PatternSize]uint8{
	0x00, 0xFF, 0x00, 0xFF, 0x00, 0xFF, 0x00, 0xFF,
	0x00, 0xFF, 0x00, 0xFF, 0x00, 0xFF, 0x00, 0xFF,
}

// AudioUnit plays a 128-bit one bit pattern at a pitch controlled rate
type AudioUnit struct {
	pattern [PatternSize]uint8 // played MSB first
	pitch   uint8              // FX3A value
	phase   float64            // bit position in [0, 128)
}

// NewAudioUnit returns a unit with the default square wave pattern
func NewAudioUnit() *AudioUnit {
	a := &AudioUnit{}
	a.Reset()
	return a
}

// Reset restores the default pattern and pitch
func (a *AudioUnit) Reset() {
	a.pattern = defaultPattern
	a.pitch = DefaultPitch
	a.phase = 0
}

// SetPattern replaces the playback pattern, which must be exactly 16 bytes
func (a *AudioUnit) SetPattern(pattern []uint8) error {
	if len(pattern) != PatternSize {
		return &ResourceFault{
			Resource: "audio pattern",
			Reason:   fmt.Sprintf("expected %d bytes, got %d", PatternSize, len(pattern)),
		}
	}
	copy(a.pattern[:], pattern)
	return nil
}

// Pattern returns the current playback pattern
func (a *AudioUnit) Pattern() [PatternSize]uint8 {
	return a.pattern
}

// SetPitch sets the playback rate selector
func (a *AudioUnit) SetPitch(pitch uint8) {
	a.pitch = pitch
}

// Pitch returns the playback rate selector
func (a *AudioUnit) Pitch() uint8 {
	return a.pitch
}

// Rate returns the pattern bits played per second
func (a *AudioUnit) Rate() float64 {
	return PitchToRate(a.pitch)
}

// PitchToRate converts a pitch value to pattern bits per second
func PitchToRate(pitch uint8) float64 {
	return basePatternRate * math.Pow(2, (float64(pitch)-64)/48)
}

// ResetPhase restarts playback at the first pattern bit
func (a *AudioUnit) ResetPhase() {
	a.phase = 0
}

// NextSample returns the current pattern bit as +1 or -1 and advances
// the phase by one output sample at outputRate samples per second.
func (a *AudioUnit) NextSample(outputRate int) float64 {
	bit := int(a.phase) % PatternBits
	sample := -1.0
	if a.pattern[bit/8]&(0x80>>(bit%8)) != 0 {
		sample = 1.0
	}
	if outputRate > 0 {
		a.phase = math.Mod(a.phase+a.Rate()/float64(outputRate), PatternBits)
	}
	return sample
}
