package interpret

import (
	"fmt"
	"log"

	"github.com/Conceptual-Machines/magda-lsystem-go/notation"
)

// Alphabet lists the symbols the interpreter understands
const Alphabet = "F+-d[]"

// StackUnderflowError is raised by ']' with nothing saved
type StackUnderflowError struct {
	Pos int
}

func (e *StackUnderflowError) Error() string {
	return fmt.Sprintf("unbalanced ']' at position %d: note stack is empty", e.Pos)
}

// InvalidSymbolError is raised by a character outside Alphabet
type InvalidSymbolError struct {
	Symbol rune
	Pos    int
}

func (e *InvalidSymbolError) Error() string {
	return fmt.Sprintf("invalid symbol %q at position %d (allowed: %s)", e.Symbol, e.Pos, Alphabet)
}

// Info is the starting point of an interpretation
type Info struct {
	Key       notation.KeySignature
	Scale     ScaleType
	FirstNote notation.Note
	Tempo     notation.Tempo
	Time      notation.TimeSignature
	Clef      notation.Clef
	Score     notation.ScoreInfo
}

// DefaultInfo starts on a quarter C4 in C major, 4/4 at 120
func DefaultInfo() Info {
	return Info{
		Key:       notation.KeySignature{Note: notation.C, Accidental: notation.Natural, Mode: notation.Major},
		Scale:     Basic,
		FirstNote: notation.Note{Pitch: notation.NewPitch(notation.C, 4, notation.Natural), Duration: notation.Quarter},
		Tempo:     notation.DefaultTempo(),
		Time:      notation.CommonTime(),
		Clef:      notation.Treble,
	}
}

// Interpreter turns an L-system word into a single-stave score.
//
//	F  write the current note
//	+  move the current note one degree up
//	-  move the current note one degree down
//	d  halve the current note's duration
//	[  push the current note
//	]  pop the current note
type Interpreter struct {
	info Info
}

// New creates an interpreter
func New(info Info) *Interpreter {
	return &Interpreter{info: info}
}

// Info returns the interpretation settings
func (it *Interpreter) Info() Info {
	return it.info
}

type cursor struct {
	note  notation.Note
	scale Scale
	notes []notation.Note
	stack []notation.Note
}

// Translate interprets word. It panics with *StackUnderflowError or *InvalidSymbolError on
// a malformed word; use CheckWord first when the word is untrusted.
func (it *Interpreter) Translate(word string) *notation.Score {
	c := &cursor{
		note:  it.info.FirstNote,
		scale: NewScale(it.info.Key, it.info.Scale),
	}
	for pos, sym := range word {
		if err := c.apply(sym, pos); err != nil {
			panic(err)
		}
	}

	symbols := make([]notation.Symbol, 0, len(c.notes)+4)
	symbols = append(symbols, it.info.Clef, it.info.Key, it.info.Tempo, it.info.Time)
	for _, n := range c.notes {
		symbols = append(symbols, n)
	}

	return &notation.Score{
		Staves: []notation.Stave{{Symbols: symbols}},
		Info:   it.info.Score,
		Tempo:  it.info.Tempo,
	}
}

// TranslateSafe is Translate with malformed words reported as errors
func (it *Interpreter) TranslateSafe(word string) (*notation.Score, error) {
	if err := CheckWord(word); err != nil {
		return nil, err
	}
	return it.Translate(word), nil
}

func (c *cursor) apply(sym rune, pos int) error {
	switch sym {
	case 'F':
		c.notes = append(c.notes, c.note)
	case '+':
		c.scale.Advance(&c.note.Pitch)
	case '-':
		c.scale.Recede(&c.note.Pitch)
	case 'd':
		d, ok := c.note.Duration.Halve()
		if !ok {
			log.Printf("⚠️  'd' at position %d ignored: note is already 1/%d", pos, notation.Shortest)
		}
		c.note.Duration = d
	case '[':
		c.stack = append(c.stack, c.note)
	case ']':
		if len(c.stack) == 0 {
			return &StackUnderflowError{Pos: pos}
		}
		c.note = c.stack[len(c.stack)-1]
		c.stack = c.stack[:len(c.stack)-1]
	default:
		return &InvalidSymbolError{Symbol: sym, Pos: pos}
	}
	return nil
}

// CheckWord reports the first symbol that would make Translate panic
func CheckWord(word string) error {
	depth := 0
	for pos, sym := range word {
		switch sym {
		case 'F', '+', '-', 'd':
		case '[':
			depth++
		case ']':
			if depth == 0 {
				return &StackUnderflowError{Pos: pos}
			}
			depth--
		default:
			return &InvalidSymbolError{Symbol: sym, Pos: pos}
		}
	}
	return nil
}
