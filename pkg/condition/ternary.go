package condition

// Ternary is the three-valued result of an audience condition evaluation.
// Unknown means the condition could not be decided (missing attribute,
// runtime type mismatch, unparsable version) and must stay distinguishable
// from False: gating treats it as "not matched", diagnostics do not.
type Ternary int8

const (
	// False means the condition definitively did not match.
	False Ternary = iota
	// True means the condition definitively matched.
	True
	// Unknown means the condition could not be evaluated.
	Unknown
)

// String returns the lowercase name of the ternary value.
func (t Ternary) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unknown"
	}
}

// Of converts a Go bool into a definitive Ternary.
func Of(b bool) Ternary {
	if b {
		return True
	}
	return False
}

// And combines two ternary values with Kleene conjunction:
// False dominates, otherwise Unknown taints the result.
func (t Ternary) And(other Ternary) Ternary {
	if t == False || other == False {
		return False
	}
	if t == Unknown || other == Unknown {
		return Unknown
	}
	return True
}

// Or combines two ternary values with Kleene disjunction:
// True dominates, otherwise Unknown taints the result.
func (t Ternary) Or(other Ternary) Ternary {
	if t == True || other == True {
		return True
	}
	if t == Unknown || other == Unknown {
		return Unknown
	}
	return False
}

// Not inverts True and False; Unknown stays Unknown.
func (t Ternary) Not() Ternary {
	switch t {
	case True:
		return False
	case False:
		return True
	default:
		return Unknown
	}
}
