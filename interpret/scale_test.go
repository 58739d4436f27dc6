package interpret

import (
	"testing"

	"github.com/Conceptual-Machines/magda-lsystem-go/notation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pitch(t *testing.T, s string) notation.Pitch {
	t.Helper()
	p, err := notation.ParsePitch(s)
	require.NoError(t, err)
	return p
}

func key(t *testing.T, s string) notation.KeySignature {
	t.Helper()
	k, err := notation.ParseKeySignature(s)
	require.NoError(t, err)
	return k
}

func TestAdvanceEMajor(t *testing.T) {
	scale := NewScale(key(t, "E major"), Basic)

	p := pitch(t, "G#4")
	for _, want := range []string{"A4", "B4", "C#5", "D#5", "E5", "F#5"} {
		p = scale.Next(p)
		assert.Equal(t, want, p.String())
	}
}

func TestRecedeEMajor(t *testing.T) {
	scale := NewScale(key(t, "E major"), Basic)

	p := pitch(t, "G#5")
	for _, want := range []string{"F#5", "E5", "D#5", "C#5", "B4", "A4"} {
		p = scale.Prev(p)
		assert.True(t, pitch(t, want).Equal(p), "expected %s, got %s", want, p)
	}
}

func TestScaleDegrees(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		scale   ScaleType
		start   string
		degrees []int // MIDI offsets from start over one octave
	}{
		{"C major", "C", Basic, "C4", []int{2, 4, 5, 7, 9, 11, 12}},
		{"A minor", "A minor", Basic, "A3", []int{2, 3, 5, 7, 8, 10, 12}},
		{"C major blues", "C", JazzLike, "C4", []int{2, 3, 4, 7, 9, 12}},
		{"C minor blues", "C minor", JazzLike, "C4", []int{3, 5, 6, 7, 10, 12}},
		{"Eb major", "Eb", Basic, "Eb4", []int{2, 4, 5, 7, 9, 11, 12}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scale := NewScale(key(t, tt.key), tt.scale)
			start := pitch(t, tt.start)
			p := start
			for _, offset := range tt.degrees {
				require.True(t, scale.Advance(&p))
				assert.Equal(t, start.MIDI()+offset, p.MIDI(), "at %s", p)
				assert.True(t, scale.Contains(p), "%s should be in scale", p)
			}
		})
	}
}

func TestAdvanceRecedeRoundTrip(t *testing.T) {
	keys := []string{"C", "G", "F#", "Bb", "A minor", "Eb minor", "C#"}
	for _, k := range keys {
		for _, st := range []ScaleType{Basic, JazzLike} {
			scale := NewScale(key(t, k), st)
			start := pitch(t, "C4")
			for i := 0; i < 12; i++ {
				p := start
				require.True(t, scale.Advance(&p))
				require.True(t, scale.Recede(&p))
				assert.True(t, start.Equal(p), "%s %s: %s round trip gave %s", k, st, start, p)

				q := start
				require.True(t, scale.Recede(&q))
				require.True(t, scale.Advance(&q))
				assert.True(t, start.Equal(q), "%s %s: %s reverse round trip gave %s", k, st, start, q)

				start.MoveHalftoneUp()
			}
		}
	}
}

func TestOffScalePitchesStayOffScale(t *testing.T) {
	scale := NewScale(key(t, "C"), Basic)
	p := pitch(t, "C#4")
	assert.False(t, scale.Contains(p))
	for i := 0; i < 10; i++ {
		scale.Advance(&p)
		assert.False(t, scale.Contains(p), "%s", p)
	}
}

func TestAdvanceSaturatesAtRangeEdge(t *testing.T) {
	scale := NewScale(key(t, "C"), Basic)

	top := pitch(t, "B9")
	assert.False(t, scale.Advance(&top))
	assert.Equal(t, "B9", top.String())

	bottom := pitch(t, "C0")
	assert.False(t, scale.Recede(&bottom))
	assert.Equal(t, "C0", bottom.String())
}

func TestParseScaleType(t *testing.T) {
	st, err := ParseScaleType("Jazz")
	require.NoError(t, err)
	assert.Equal(t, JazzLike, st)

	st, err = ParseScaleType("")
	require.NoError(t, err)
	assert.Equal(t, Basic, st)

	_, err = ParseScaleType("lydian")
	assert.Error(t, err)
}
