package address

import (
	"fmt"
	"regexp"
	"strings"
)

// nameRegex restricts names to characters that are safe in file names and
// cannot be confused with the dot separator.
var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9_][a-zA-Z0-9_-]*$`)

// ValidName reports whether name can be used as a declaration or kernel name.
func ValidName(name string) bool {
	return nameRegex.MatchString(name)
}

// Parse creates an Address from its canonical string representation.
func Parse(raw string) (Address, error) {
	if raw == "" {
		return Address{}, fmt.Errorf("address cannot be empty")
	}

	parts := strings.Split(raw, ".")
	if len(parts) < 2 || len(parts) > 3 {
		return Address{}, fmt.Errorf("invalid address %q: expected <kind>.<name>[.<stage>]", raw)
	}
	for _, p := range parts {
		if p == "" {
			return Address{}, fmt.Errorf("address %q contains an empty segment", raw)
		}
	}

	kind := Kind(parts[0])
	if !kind.Known() {
		return Address{}, fmt.Errorf("unknown declaration kind %q in address %q", parts[0], raw)
	}
	if !ValidName(parts[1]) {
		return Address{}, fmt.Errorf("invalid name %q in address %q", parts[1], raw)
	}

	addr := New(kind, parts[1])
	if len(parts) == 3 {
		switch parts[2] {
		case StageCompile, StageLink:
			addr.Stage = parts[2]
		default:
			return Address{}, fmt.Errorf("unknown stage %q in address %q", parts[2], raw)
		}
	}
	return addr, nil
}
