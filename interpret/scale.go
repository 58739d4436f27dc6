package interpret

import (
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/magda-lsystem-go/notation"
)

// ScaleType selects the family of step tables
type ScaleType int

const (
	// Basic is the diatonic scale of the key's mode
	Basic ScaleType = iota
	// JazzLike is the blues scale of the key's mode
	JazzLike
)

func (t ScaleType) String() string {
	if t == JazzLike {
		return "jazz"
	}
	return "basic"
}

// ParseScaleType parses "basic" or "jazz"
func ParseScaleType(s string) (ScaleType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "basic", "diatonic":
		return Basic, nil
	case "jazz", "jazzlike", "jazz-like", "blues":
		return JazzLike, nil
	default:
		return Basic, fmt.Errorf("unknown scale type: %q (allowed: basic, jazz)", s)
	}
}

// stepTable holds, for each rank above the tonic, how many halftones to move
type stepTable struct {
	advance [12]int
	recede  [12]int
}

// Off-scale ranks form their own cycle so that recede always undoes advance.
var (
	majorSteps = stepTable{
		advance: [12]int{2, 2, 2, 3, 1, 2, 2, 2, 2, 2, 3, 1},
		recede:  [12]int{1, 3, 2, 2, 2, 1, 3, 2, 2, 2, 2, 2},
	}
	minorSteps = stepTable{
		advance: [12]int{2, 3, 1, 2, 2, 2, 3, 1, 2, 2, 2, 2},
		recede:  [12]int{2, 2, 2, 1, 3, 2, 2, 2, 1, 3, 2, 2},
	}
	// major blues: 0 2 3 4 7 9
	majorBluesSteps = stepTable{
		advance: [12]int{2, 4, 1, 1, 3, 1, 2, 2, 2, 3, 1, 2},
		recede:  [12]int{3, 2, 2, 1, 1, 4, 1, 3, 2, 2, 2, 1},
	}
	// minor blues: 0 3 5 6 7 10
	minorBluesSteps = stepTable{
		advance: [12]int{3, 1, 2, 2, 4, 1, 1, 3, 1, 2, 2, 2},
		recede:  [12]int{2, 2, 1, 3, 2, 2, 1, 1, 4, 1, 3, 2},
	}
)

// Scale moves pitches along the degrees of a key
type Scale struct {
	Key  notation.KeySignature
	Type ScaleType
}

// NewScale creates a scale
func NewScale(key notation.KeySignature, t ScaleType) Scale {
	return Scale{Key: key, Type: t}
}

func (s Scale) steps() *stepTable {
	switch {
	case s.Type == JazzLike && s.Key.Mode == notation.Minor:
		return &minorBluesSteps
	case s.Type == JazzLike:
		return &majorBluesSteps
	case s.Key.Mode == notation.Minor:
		return &minorSteps
	default:
		return &majorSteps
	}
}

// rank is the pitch class relative to the tonic
func (s Scale) rank(p notation.Pitch) int {
	return (p.HalftoneValue() - s.Key.Halftone() + 12) % 12
}

// Advance moves p to the next degree. At the top of the range p is left unchanged
// and false is returned.
func (s Scale) Advance(p *notation.Pitch) bool {
	return move(p, s.steps().advance[s.rank(*p)])
}

// Recede moves p to the previous degree. At the bottom of the range p is left unchanged
// and false is returned.
func (s Scale) Recede(p *notation.Pitch) bool {
	return move(p, -s.steps().recede[s.rank(*p)])
}

// Next returns the following degree of p
func (s Scale) Next(p notation.Pitch) notation.Pitch {
	s.Advance(&p)
	return p
}

// Prev returns the preceding degree of p
func (s Scale) Prev(p notation.Pitch) notation.Pitch {
	s.Recede(&p)
	return p
}

// Contains reports whether p is a degree of the scale
func (s Scale) Contains(p notation.Pitch) bool {
	r := s.rank(p)
	t := s.steps()
	// on-scale ranks are reached from another on-scale rank; walk from the tonic
	for cur, i := 0, 0; i < 12; i++ {
		if cur == r {
			return true
		}
		cur = (cur + t.advance[cur]) % 12
		if cur == 0 {
			break
		}
	}
	return false
}

func move(p *notation.Pitch, halftones int) bool {
	q := *p
	want := halftones
	if want < 0 {
		want = -want
	}
	if q.MoveHalftones(halftones) != want {
		return false
	}
	*p = q
	return true
}
