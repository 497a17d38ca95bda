package pipeline

// Wildcard is the pattern matching every source or contract name.
const Wildcard = ""

// Rule requests a configuration for every contract matching both patterns.  An
// empty pattern matches everything.
type Rule struct {
	Source   string
	Contract string
	Config   Config
}

// Matches returns whether the rule applies to a contract.
func (r Rule) Matches(source, contract string) bool {
	return (r.Source == Wildcard || r.Source == source) &&
		(r.Contract == Wildcard || r.Contract == contract)
}

// Selection is an unordered set of selection rules.
type Selection []Rule

// Requested computes the effective configuration of a contract: the join of
// every matching rule, or Default if no rule matches.  The result does not
// depend on the order of the rules.
func (s Selection) Requested(source, contract string) Config {
	var c Config
	matched := false

	for _, r := range s {
		if r.Matches(source, contract) {
			c = c.Join(r.Config)
			matched = true
		}
	}

	if !matched {
		return Default
	}

	return c
}

// Add returns a selection with the given rule appended.
func (s Selection) Add(source, contract string, c Config) Selection {
	return append(s, Rule{Source: source, Contract: contract, Config: c})
}
