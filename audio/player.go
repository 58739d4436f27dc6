// Package audio decodes synthesized WAV files and exposes a play/pause/seek controller.
package audio

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
)

// Track is a decoded WAV stream
type Track struct {
	stream beep.StreamSeekCloser
	format beep.Format
}

// Decode reads a WAV stream. Seeking needs r to be an io.ReadSeeker.
func Decode(r io.Reader) (*Track, error) {
	stream, format, err := wav.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode wav: %w", err)
	}
	return &Track{stream: stream, format: format}, nil
}

// Open decodes the WAV file at path
func Open(path string) (*Track, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}
	t, err := Decode(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return t, nil
}

// Duration returns the total playing time
func (t *Track) Duration() time.Duration {
	return t.format.SampleRate.D(t.stream.Len())
}

// Format returns the sample format
func (t *Track) Format() beep.Format {
	return t.format
}

// Close releases the underlying reader
func (t *Track) Close() error {
	return t.stream.Close()
}

// Player controls playback of a track. It is a beep.Streamer so any sink can pull from it.
type Player struct {
	mu    sync.Mutex
	track *Track
	ctrl  *beep.Ctrl
}

// NewPlayer starts paused at the beginning of the track
func NewPlayer(t *Track) *Player {
	return &Player{
		track: t,
		ctrl:  &beep.Ctrl{Streamer: t.stream, Paused: true},
	}
}

// Play resumes playback. At the end of the track it starts over.
func (p *Player) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.track.stream.Position() >= p.track.stream.Len() {
		if err := p.track.stream.Seek(0); err != nil {
			return fmt.Errorf("rewind: %w", err)
		}
	}
	p.ctrl.Paused = false
	return nil
}

// Pause stops playback and keeps the position
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ctrl.Paused = true
}

// Toggle switches between playing and paused and reports whether it is now playing
func (p *Player) Toggle() (bool, error) {
	if p.IsPlaying() {
		p.Pause()
		return false, nil
	}
	if err := p.Play(); err != nil {
		return false, err
	}
	return true, nil
}

// IsPlaying reports whether the player is producing audio
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.ctrl.Paused
}

// Seek moves to d, clamped to the track
func (p *Player) Seek(d time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := p.track.format.SampleRate.N(d)
	n = max(0, min(n, p.track.stream.Len()))
	if err := p.track.stream.Seek(n); err != nil {
		return fmt.Errorf("seek: %w", err)
	}
	return nil
}

// Position returns the current playing time
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.track.format.SampleRate.D(p.track.stream.Position())
}

// Duration returns the track length
func (p *Player) Duration() time.Duration {
	return p.track.Duration()
}

// Stream fills samples. Paused players stream silence. Reaching the end pauses the player.
func (p *Player) Stream(samples [][2]float64) (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n, ok := p.ctrl.Stream(samples)
	if !p.ctrl.Paused && n < len(samples) {
		p.ctrl.Paused = true
		for i := n; i < len(samples); i++ {
			samples[i] = [2]float64{}
		}
		return len(samples), true
	}
	return n, ok
}

// Err returns the decoder error, if any
func (p *Player) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.track.stream.Err()
}

// Close releases the track
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ctrl.Paused = true
	return p.track.Close()
}
