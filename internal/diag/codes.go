package diag

import "fmt"

type Code uint16

const (
	UnknownCode Code = 0

	// Manifest decoding and declaration errors.
	ManInfo           Code = 1000
	ManSyntax         Code = 1001
	ManUnknownKey     Code = 1002
	ManBadType        Code = 1003
	ManBadSemantic    Code = 1004
	ManDuplicateID    Code = 1005
	ManUnknownID      Code = 1006
	ManBadSwizzle     Code = 1007
	ManBadOp          Code = 1008
	ManOutOfRange     Code = 1009
	ManBadMetadata    Code = 1010
	ManBadValue       Code = 1011
	ManMissingField   Code = 1012
	ManBadAttribute   Code = 1013
	ManOperandCount   Code = 1014
	ManAbsentOperand  Code = 1015
	ManEmptyStatement Code = 1016

	// Builder-level findings.
	IRInfo     Code = 2000
	IRInvalid  Code = 2001
	IRContract Code = 2002

	// File system and cache.
	IOInfo      Code = 3000
	IOLoadFile  Code = 3001
	IOWriteFile Code = 3002
	IOCache     Code = 3003

	ObsTimings Code = 4000
)

var codeDescription = map[Code]string{
	UnknownCode:       "Unknown error",
	ManInfo:           "Manifest information",
	ManSyntax:         "Malformed TOML",
	ManUnknownKey:     "Unknown manifest key",
	ManBadType:        "Type not allowed for this declaration",
	ManBadSemantic:    "Unknown semantic",
	ManDuplicateID:    "Duplicate declaration id",
	ManUnknownID:      "Reference to undeclared id",
	ManBadSwizzle:     "Malformed swizzle",
	ManBadOp:          "Unknown statement op",
	ManOutOfRange:     "Integer field out of range",
	ManBadMetadata:    "Unknown metadata key",
	ManBadValue:       "Constant value has the wrong shape",
	ManMissingField:   "Required field missing",
	ManBadAttribute:   "Unknown buffer attribute",
	ManOperandCount:   "Wrong number of operands",
	ManAbsentOperand:  "Operand refers to an unavailable declaration",
	ManEmptyStatement: "Statement has no op",
	IRInfo:            "IR information",
	IRInvalid:         "Malformed statement stream",
	IRContract:        "Builder contract violation",
	IOInfo:            "I/O information",
	IOLoadFile:        "Cannot read file",
	IOWriteFile:       "Cannot write file",
	IOCache:           "Snapshot cache error",
	ObsTimings:        "Pipeline timings",
}

// ID is the stable short form: MAN1003, IR2001, IO3001.
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("MAN%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("IR%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	if desc, ok := codeDescription[c]; ok {
		return desc
	}
	return codeDescription[UnknownCode]
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
