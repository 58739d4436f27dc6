package notation

// Symbol is anything that can appear on a stave. The set is closed: Clef, TimeSignature,
// KeySignature, Tempo, Note, Chord and Rest.
type Symbol interface {
	isSymbol()
}

func (Clef) isSymbol()          {}
func (TimeSignature) isSymbol() {}
func (KeySignature) isSymbol()  {}
func (Tempo) isSymbol()         {}
func (Note) isSymbol()          {}
func (Chord) isSymbol()         {}
func (Rest) isSymbol()          {}

// Note is a single pitch held for a duration
type Note struct {
	Pitch    Pitch
	Duration Duration
}

// Chord is several pitches struck together
type Chord struct {
	Pitches  []Pitch
	Duration Duration
}

// Rest is silence for a duration
type Rest struct {
	Duration Duration
}

// Stave is an ordered sequence of symbols
type Stave struct {
	Symbols []Symbol
}

// Notes returns the notes of the stave in order
func (s Stave) Notes() []Note {
	var notes []Note
	for _, sym := range s.Symbols {
		if n, ok := sym.(Note); ok {
			notes = append(notes, n)
		}
	}
	return notes
}

// ScoreInfo is descriptive score metadata
type ScoreInfo struct {
	Name        string `yaml:"name" json:"name"`
	Author      string `yaml:"author" json:"author"`
	Transcriber string `yaml:"transcriber" json:"transcriber"`
}

// Score is a set of staves plus metadata
type Score struct {
	Staves []Stave
	Info   ScoreInfo
	Tempo  Tempo
}

// Clone returns a deep copy of the score
func (s *Score) Clone() *Score {
	out := &Score{Info: s.Info, Tempo: s.Tempo, Staves: make([]Stave, len(s.Staves))}
	for i, stave := range s.Staves {
		syms := make([]Symbol, len(stave.Symbols))
		for j, sym := range stave.Symbols {
			if c, ok := sym.(Chord); ok {
				c.Pitches = append([]Pitch(nil), c.Pitches...)
				sym = c
			}
			syms[j] = sym
		}
		out.Staves[i] = Stave{Symbols: syms}
	}
	return out
}
