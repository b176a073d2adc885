// Package audio plays the machine's sound output through the speaker
package audio

import (
	"fmt"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"
)

// SampleRate is the output rate the speaker is opened with
const SampleRate = beep.SampleRate(44100)

// Source produces mono samples in [-1, 1] at a requested output rate
type Source interface {
	NextSample(outputRate int) float64
}

// Streamer adapts a Source to beep.Streamer
type Streamer struct {
	src  Source
	rate int
}

var _ beep.Streamer = (*Streamer)(nil)

// NewStreamer returns a streamer pulling samples from src at rate
func NewStreamer(src Source, rate beep.SampleRate) *Streamer {
	return &Streamer{src: src, rate: int(rate)}
}

// Stream fills samples with the source output on both channels. It never drains.
func (s *Streamer) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		v := s.src.NextSample(s.rate)
		samples[i][0] = v
		samples[i][1] = v
	}
	return len(samples), true
}

// Err always returns nil
func (s *Streamer) Err() error {
	return nil
}

// Player plays a Source on the default audio device. Lock and Unlock hold
// the speaker so callers can mutate the source between callbacks.
type Player struct {
	volume *effects.Volume
}

// NewPlayer opens the speaker and starts playing src. volume is in powers of two.
func NewPlayer(src Source, volume float64) (*Player, error) {
	if err := speaker.Init(SampleRate, SampleRate.N(time.Second/30)); err != nil {
		return nil, fmt.Errorf("initialising speaker: %w", err)
	}
	p := &Player{
		volume: &effects.Volume{
			Streamer: NewStreamer(src, SampleRate),
			Base:     2,
			Volume:   volume,
		},
	}
	speaker.Play(p.volume)
	return p, nil
}

// Lock pauses the audio callback
func (p *Player) Lock() {
	speaker.Lock()
}

// Unlock resumes the audio callback
func (p *Player) Unlock() {
	speaker.Unlock()
}

// SetMuted silences the output without stopping playback
func (p *Player) SetMuted(muted bool) {
	speaker.Lock()
	p.volume.Silent = muted
	speaker.Unlock()
}

// Close stops playback
func (p *Player) Close() {
	speaker.Clear()
}
