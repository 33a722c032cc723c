package address

// Kind is the declaration type an address points at.
type Kind string

const (
	// KindXO addresses a kernel object declaration (`xo` block).
	KindXO Kind = "xo"
	// KindBitstream addresses a bitstream declaration (`bitstream` block).
	KindBitstream Kind = "bitstream"
)

// Kinds lists every declaration kind, in the order plans are rendered.
var Kinds = []Kind{KindXO, KindBitstream}

// Known reports whether k is a supported declaration kind.
func (k Kind) Known() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Pipeline stage names.
const (
	StageCompile = "compile"
	StageLink    = "link"
)

// Address identifies a declaration, or one stage of it when Stage is set.
type Address struct {
	Kind  Kind
	Name  string
	Stage string
}

// New creates a declaration address without a stage.
func New(kind Kind, name string) Address {
	return Address{Kind: kind, Name: name}
}

// WithStage returns a copy of the address pointing at one pipeline stage.
func (a Address) WithStage(stage string) Address {
	a.Stage = stage
	return a
}

// Declaration strips the stage, returning the owning declaration's address.
func (a Address) Declaration() Address {
	a.Stage = ""
	return a
}

// IsZero reports whether the address is unset.
func (a Address) IsZero() bool {
	return a.Kind == "" && a.Name == "" && a.Stage == ""
}
