package diag

import "fmt"

type Code uint16

const (
	UnknownCode Code = 0

	// Round protocol and collection
	RoundInfo         Code = 1000
	UnknownAnnotation Code = 1001
	LateMember        Code = 1002
	OutOfOrderRound   Code = 1003
	InvalidDecl       Code = 1004

	// Validation
	DuplicateRole   Code = 2001
	ShapeViolation  Code = 2002
	IncompleteUnit  Code = 2003
	CyclicReference Code = 2004

	// Rendering and output
	ArtifactCollision Code = 3001
	RenderFailed      Code = 3002
	WriteFailed       Code = 3003
	StaleArtifact     Code = 3004

	// Host
	MalformedDirective Code = 4001
	PackageLoadError   Code = 4002

	// Internal faults
	InternalFault Code = 9001
)

var codeDescription = map[Code]string{
	UnknownCode:        "Unknown diagnostic",
	RoundInfo:          "Round information",
	UnknownAnnotation:  "Annotation is not bound to any generation kind",
	LateMember:         "Declaration arrived after its unit was generated",
	OutOfOrderRound:    "Round delivered after the final round",
	InvalidDecl:        "Declaration is missing required metadata",
	DuplicateRole:      "Singular role claimed more than once",
	ShapeViolation:     "Declaration does not satisfy the role's shape",
	IncompleteUnit:     "Generation unit is missing required roles",
	CyclicReference:    "Declaration references its own unit",
	ArtifactCollision:  "Two units render to the same file",
	RenderFailed:       "Rendering failed",
	WriteFailed:        "Writing a generated file failed",
	StaleArtifact:      "Generated file is out of date",
	MalformedDirective: "Malformed annotation directive",
	PackageLoadError:   "Package could not be loaded",
	InternalFault:      "Internal generator fault",
}

// ID returns the stable short identifier, e.g. "MG2001".
func (c Code) ID() string {
	if c == UnknownCode {
		return "MG0000"
	}
	return fmt.Sprintf("MG%04d", int(c))
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// Codes returns every known code in ascending order.
func Codes() []Code {
	return []Code{
		RoundInfo, UnknownAnnotation, LateMember, OutOfOrderRound, InvalidDecl,
		DuplicateRole, ShapeViolation, IncompleteUnit, CyclicReference,
		ArtifactCollision, RenderFailed, WriteFailed, StaleArtifact,
		MalformedDirective, PackageLoadError,
		InternalFault,
	}
}
