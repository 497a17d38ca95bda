package build

// State is a stage of the compiler.  States are totally ordered and the state
// of a compiler only moves forward until it is reset.
type State int

// Enumeration of compiler states.
const (
	StateEmpty State = iota
	StateSourcesSet
	StateParsed
	StateParsedAndImported
	StateAnalysisSuccessful
	StateCompilationSuccessful
)

var stateNames = [...]string{
	"empty",
	"sources-set",
	"parsed",
	"parsed-and-imported",
	"analysis-successful",
	"compilation-successful",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}

	return stateNames[s]
}

// ParseState converts the name of a state into a state.
func ParseState(name string) (State, bool) {
	for i, sname := range stateNames {
		if sname == name {
			return State(i), true
		}
	}

	return StateEmpty, false
}
