package catalog

// FilterValidator decides whether a candidate filter value matches anything
// in the catalog. Engine implements it against its own entries.
type FilterValidator interface {
	ValidateSubjectFilter(subject string) bool
	ValidateAuthorFilter(author string) bool
}

// Policy selects what a hide operation does with a value the validator
// rejects. In both policies the value is hidden.
type Policy int

const (
	// PolicyWarn logs a warning for values that match no entry.
	PolicyWarn Policy = iota
	// PolicyPermissive accepts every value silently.
	PolicyPermissive
)

// ParsePolicy maps "warn" and "permissive" to a Policy. Anything else is
// treated as PolicyWarn.
func ParsePolicy(name string) Policy {
	if name == "permissive" {
		return PolicyPermissive
	}
	return PolicyWarn
}

func (p Policy) String() string {
	if p == PolicyPermissive {
		return "permissive"
	}
	return "warn"
}
