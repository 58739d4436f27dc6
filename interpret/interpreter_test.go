package interpret

import (
	"errors"
	"testing"

	"github.com/Conceptual-Machines/magda-lsystem-go/notation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func notesOf(score *notation.Score) []string {
	var out []string
	for _, n := range score.Staves[0].Notes() {
		out = append(out, n.Pitch.String()+"/"+n.Duration.String())
	}
	return out
}

func TestTranslateHeader(t *testing.T) {
	info := DefaultInfo()
	info.Score = notation.ScoreInfo{Name: "Test", Author: "Someone"}
	score := New(info).Translate("F")

	require.Len(t, score.Staves, 1)
	syms := score.Staves[0].Symbols
	require.Len(t, syms, 5)
	assert.Equal(t, notation.Treble, syms[0])
	assert.Equal(t, info.Key, syms[1])
	assert.Equal(t, info.Tempo, syms[2])
	assert.Equal(t, notation.CommonTime(), syms[3])
	assert.Equal(t, info.FirstNote, syms[4])
	assert.Equal(t, "Test", score.Info.Name)
	assert.Equal(t, info.Tempo, score.Tempo)
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name     string
		word     string
		expected []string
	}{
		{"empty word", "", nil},
		{"moves without writes", "+++--", nil},
		{"walk up", "F+F+F", []string{"C4/4", "D4/4", "E4/4"}},
		{"walk down keeps flat spelling", "F-F-F", []string{"C4/4", "Cb4/4", "A3/4"}},
		{"halving", "FdFdF", []string{"C4/4", "C4/8", "C4/16"}},
		{"branch returns to saved note", "F[F+F]F", []string{"C4/4", "C4/4", "D4/4", "C4/4"}},
		{"stack restores note", "F[d+F]F", []string{"C4/4", "D4/8", "C4/4"}},
		{"nested stack", "[+[+F]F]F", []string{"E4/4", "D4/4", "C4/4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := New(DefaultInfo()).Translate(tt.word)
			assert.Equal(t, tt.expected, notesOf(score))
		})
	}
}

func TestHalvingStopsAtShortest(t *testing.T) {
	info := DefaultInfo()
	info.FirstNote.Duration = notation.SixtyFourth
	score := New(info).Translate("dFdF")
	assert.Equal(t, []string{"C4/128", "C4/128"}, notesOf(score))
}

func TestTranslatePanics(t *testing.T) {
	it := New(DefaultInfo())

	assert.PanicsWithError(t, (&StackUnderflowError{Pos: 1}).Error(), func() {
		it.Translate("F]")
	})
	assert.PanicsWithError(t, (&InvalidSymbolError{Symbol: 'x', Pos: 2}).Error(), func() {
		it.Translate("F+xF")
	})
}

func TestCheckWord(t *testing.T) {
	assert.NoError(t, CheckWord("F[+F]-F[d[F]]"))

	var underflow *StackUnderflowError
	require.True(t, errors.As(CheckWord("[F]]"), &underflow))
	assert.Equal(t, 3, underflow.Pos)

	var invalid *InvalidSymbolError
	require.True(t, errors.As(CheckWord("FF A"), &invalid))
	assert.Equal(t, ' ', invalid.Symbol)
	assert.Equal(t, 2, invalid.Pos)
}

func TestTranslateSafe(t *testing.T) {
	it := New(DefaultInfo())
	_, err := it.TranslateSafe("]")
	assert.Error(t, err)

	score, err := it.TranslateSafe("F+F")
	require.NoError(t, err)
	assert.Len(t, score.Staves[0].Notes(), 2)
}

func TestTranslateMinorJazz(t *testing.T) {
	info := DefaultInfo()
	info.Key = key(t, "A minor")
	info.Scale = JazzLike
	info.FirstNote.Pitch = pitch(t, "A3")

	score := New(info).Translate("F+F+F+F")
	var midi []int
	for _, n := range score.Staves[0].Notes() {
		midi = append(midi, n.Pitch.MIDI())
	}
	// A C D D#
	assert.Equal(t, []int{57, 60, 62, 63}, midi)
}
