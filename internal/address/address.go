package address

import "strings"

// String serializes the Address into its canonical dotted form.
func (a Address) String() string {
	if a.IsZero() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(string(a.Kind))
	sb.WriteRune('.')
	sb.WriteString(a.Name)
	if a.Stage != "" {
		sb.WriteRune('.')
		sb.WriteString(a.Stage)
	}
	return sb.String()
}

// Equal reports whether two addresses point at the same declaration stage.
func (a Address) Equal(other Address) bool {
	return a == other
}

// Less orders addresses by kind, name and stage. Compile sorts before link so
// that the stages of one pipeline keep their execution order.
func (a Address) Less(other Address) bool {
	if a.Kind != other.Kind {
		return kindRank(a.Kind) < kindRank(other.Kind)
	}
	if a.Name != other.Name {
		return a.Name < other.Name
	}
	return stageRank(a.Stage) < stageRank(other.Stage)
}

func kindRank(k Kind) int {
	for i, known := range Kinds {
		if k == known {
			return i
		}
	}
	return len(Kinds)
}

func stageRank(stage string) int {
	switch stage {
	case "":
		return 0
	case StageCompile:
		return 1
	case StageLink:
		return 2
	default:
		return 3
	}
}
