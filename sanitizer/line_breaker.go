package sanitizer

import (
	"errors"
	"fmt"

	"github.com/Conceptual-Machines/magda-lsystem-go/lily"
)

// ErrMissingTimeSignature means a stave has no \time to measure bars against
var ErrMissingTimeSignature = errors.New("score is missing a time signature")

const (
	DefaultMaxLineNotes = 45
	DefaultMaxLineBars  = 7
)

// LineBreaker inserts \break once a line holds MaxLineNotes notes or MaxLineBars bars
type LineBreaker struct {
	MaxLineNotes int `yaml:"line_notes" json:"line_notes"`
	MaxLineBars  int `yaml:"line_bars" json:"line_bars"`
}

// NewLineBreaker returns the default limits
func NewLineBreaker() LineBreaker {
	return LineBreaker{MaxLineNotes: DefaultMaxLineNotes, MaxLineBars: DefaultMaxLineBars}
}

// Sanitize adds breaks to every stave of doc. Non-positive limits use the defaults.
func (b LineBreaker) Sanitize(doc *lily.Document) error {
	if b.MaxLineNotes <= 0 {
		b.MaxLineNotes = DefaultMaxLineNotes
	}
	if b.MaxLineBars <= 0 {
		b.MaxLineBars = DefaultMaxLineBars
	}
	for i := range doc.Staves {
		if err := b.sanitizeStave(&doc.Staves[i]); err != nil {
			return fmt.Errorf("stave %d: %w", i, err)
		}
	}
	return nil
}

func (b LineBreaker) sanitizeStave(stave *lily.Stave) error {
	var time *lily.Time
	for _, e := range stave.Elements {
		if t, ok := e.(lily.Time); ok {
			time = &t
			break
		}
	}
	if time == nil {
		return ErrMissingTimeSignature
	}

	barLen := time.Time.BarValue128()
	lineNotes, lineBars, current := 0, 0, 0
	out := make([]lily.Element, 0, len(stave.Elements)+len(stave.Elements)/b.MaxLineNotes+1)
	for _, e := range stave.Elements {
		out = append(out, e)
		n, ok := e.(lily.Note)
		if !ok {
			continue
		}

		lineNotes++
		current += n.Duration.Value128()
		if current >= barLen {
			lineBars++
			current -= barLen
		}
		if lineNotes >= b.MaxLineNotes || lineBars >= b.MaxLineBars {
			out = append(out, lily.Break{})
			lineNotes, lineBars = 0, 0
		}
	}
	stave.Elements = out
	return nil
}
