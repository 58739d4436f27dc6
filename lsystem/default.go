package lsystem

// DefaultAxiom seeds the built-in grammar
const DefaultAxiom = "F++++F--F++F"

var defaultRules = []string{
	"F -> F % 1/2",
	"F -> FF % 1/15",
	"F -> F+F % 1/15",
	"F -> F-F % 1/15",
	"FF -> [Fd+F-F] % 1/40",
	"FF -> [Fd-F+F] % 1/40",
	"FF -> [dF+F]F % 1/40",
	"FF -> [dF-F]F % 1/40",
	"F+F -> [Fd+F+F] % 1/40",
	"F-F -> [Fd-F-F] % 1/40",
	"F+F -> [dF+F]++F % 1/40",
	"F-F -> [dF-F]--F % 1/40",
	"F-F -> [Fd++F]--F % 1/40",
	"F-F -> [Fd-F]++F % 1/40",
	"F+F -> [Fd+++F--F] % 1/40",
	"F+F -> [Fd----F++F] % 1/40",
}

// DefaultRules returns the built-in grammar, one rule per line
func DefaultRules() []string {
	return append([]string(nil), defaultRules...)
}
