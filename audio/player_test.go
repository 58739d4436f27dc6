package audio

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRate = beep.SampleRate(44100)

func writeSilence(t *testing.T, samples int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "silence.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	format := beep.Format{SampleRate: testRate, NumChannels: 2, Precision: 2}
	require.NoError(t, wav.Encode(f, beep.Silence(samples), format))
	return path
}

func TestOpenDuration(t *testing.T) {
	track, err := Open(writeSilence(t, 22050))
	require.NoError(t, err)
	defer track.Close()

	assert.Equal(t, 500*time.Millisecond, track.Duration())
	assert.Equal(t, testRate, track.Format().SampleRate)
	assert.Equal(t, 2, track.Format().NumChannels)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("definitely not a wav file")))
	assert.Error(t, err)

	_, err = Open(filepath.Join(t.TempDir(), "missing.wav"))
	assert.Error(t, err)
}

func TestPlayerPauseAndPlay(t *testing.T) {
	track, err := Open(writeSilence(t, 22050))
	require.NoError(t, err)
	p := NewPlayer(track)
	defer p.Close()

	buf := make([][2]float64, 1000)
	assert.False(t, p.IsPlaying())
	n, ok := p.Stream(buf)
	assert.True(t, ok)
	assert.Equal(t, len(buf), n)
	assert.Equal(t, time.Duration(0), p.Position())

	require.NoError(t, p.Play())
	assert.True(t, p.IsPlaying())
	p.Stream(buf)
	assert.Equal(t, testRate.D(1000), p.Position())

	playing, err := p.Toggle()
	require.NoError(t, err)
	assert.False(t, playing)
	p.Stream(buf)
	assert.Equal(t, testRate.D(1000), p.Position())
}

func TestPlayerSeek(t *testing.T) {
	track, err := Open(writeSilence(t, 22050))
	require.NoError(t, err)
	p := NewPlayer(track)
	defer p.Close()

	require.NoError(t, p.Seek(250*time.Millisecond))
	assert.Equal(t, 250*time.Millisecond, p.Position())

	require.NoError(t, p.Seek(time.Hour))
	assert.Equal(t, p.Duration(), p.Position())

	require.NoError(t, p.Seek(-time.Second))
	assert.Equal(t, time.Duration(0), p.Position())
}

func TestPlayerPausesAtEnd(t *testing.T) {
	track, err := Open(writeSilence(t, 1500))
	require.NoError(t, err)
	p := NewPlayer(track)
	defer p.Close()

	require.NoError(t, p.Play())
	buf := make([][2]float64, 1000)
	p.Stream(buf)
	n, ok := p.Stream(buf)
	assert.True(t, ok)
	assert.Equal(t, len(buf), n)
	assert.False(t, p.IsPlaying())
	assert.Equal(t, p.Duration(), p.Position())

	// playing again starts over
	require.NoError(t, p.Play())
	assert.Equal(t, time.Duration(0), p.Position())
	assert.NoError(t, p.Err())
}
