package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Template contract (format strings and argument binding)
	TplInfo              Code = 1000
	TplDangling          Code = 1001 // format ends inside a directive
	TplIndexedNoArg      Code = 1002 // argument-free directive carries an index
	TplIndexOutOfRange   Code = 1003
	TplMixedIndexing     Code = 1004
	TplUnusedArgument    Code = 1005
	TplUnknownDirective  Code = 1006
	TplNamedCase         Code = 1007 // named argument does not start lowercase
	TplMissingNamed      Code = 1008
	TplBadArgument       Code = 1009 // argument cannot be coerced for its directive
	TplUnexpectedControl Code = 1010 // stray character where a directive was expected

	// Structural contract (emission state machines)
	StrInfo                 Code = 2000
	StrUnbalancedScope      Code = 2001
	StrNestedStatement      Code = 2002
	StrUnmatchedStatement   Code = 2003
	StrUnclosedStatement    Code = 2004
	StrBadUnindent          Code = 2005
	StrMalformedWildcard    Code = 2006
	StrUnsupportedMember    Code = 2007
	StrWriterClosed         Code = 2008
	StrUnbalancedIndent     Code = 2009
	StrMalformedDeclaration Code = 2010

	// Symbol shape
	SymInfo              Code = 3000
	SymInvalidIdentifier Code = 3001
	SymMalformedName     Code = 3002

	// I/O
	IOLoadUnit    Code = 4001
	IOWriteOutput Code = 4002
	IOCache       Code = 4003

	// Configuration
	CfgInvalid      Code = 5001
	CfgMissingField Code = 5002
	CfgOutOfRange   Code = 5003

	// Unit descriptions
	UntInvalid     Code = 6001
	UntUnknownKind Code = 6002
	UntBadType     Code = 6003
	UntBadArgument Code = 6004
)

var codeDescription = map[Code]string{
	UnknownCode:             "Unknown error",
	TplInfo:                 "Template information",
	TplDangling:             "Dangling format characters",
	TplIndexedNoArg:         "Argument-free directive with index",
	TplIndexOutOfRange:      "Argument index out of range",
	TplMixedIndexing:        "Mixed indexed and positional arguments",
	TplUnusedArgument:       "Unused argument",
	TplUnknownDirective:     "Unknown directive",
	TplNamedCase:            "Named argument casing",
	TplMissingNamed:         "Missing named argument",
	TplBadArgument:          "Argument does not fit directive",
	TplUnexpectedControl:    "Unexpected character in format",
	StrInfo:                 "Structure information",
	StrUnbalancedScope:      "Unbalanced scope stack",
	StrNestedStatement:      "Nested statement",
	StrUnmatchedStatement:   "Unmatched statement end",
	StrUnclosedStatement:    "Unclosed statement",
	StrBadUnindent:          "Unindent below zero",
	StrMalformedWildcard:    "Malformed wildcard bounds",
	StrUnsupportedMember:    "Unsupported member",
	StrWriterClosed:         "Writer already closed",
	StrUnbalancedIndent:     "Unbalanced indentation",
	StrMalformedDeclaration: "Malformed declaration",
	SymInfo:                 "Symbol information",
	SymInvalidIdentifier:    "Invalid identifier",
	SymMalformedName:        "Malformed qualified name",
	IOLoadUnit:              "Failed to load unit",
	IOWriteOutput:           "Failed to write output",
	IOCache:                 "Render cache failure",
	CfgInvalid:              "Invalid configuration",
	CfgMissingField:         "Missing configuration field",
	CfgOutOfRange:           "Configuration value out of range",
	UntInvalid:              "Invalid unit description",
	UntUnknownKind:          "Unknown member kind",
	UntBadType:              "Malformed type expression",
	UntBadArgument:          "Malformed fragment argument",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("TPL%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("STR%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SYM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("CFG%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("UNT%04d", ic)
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

// Class groups codes by the contract they belong to.
type Class uint8

const (
	ClassUnknown Class = iota
	ClassTemplate
	ClassStructure
	ClassSymbol
	ClassIO
	ClassConfig
	ClassUnit
)

func (c Code) Class() Class {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return ClassTemplate
	case ic >= 2000 && ic < 3000:
		return ClassStructure
	case ic >= 3000 && ic < 4000:
		return ClassSymbol
	case ic >= 4000 && ic < 5000:
		return ClassIO
	case ic >= 5000 && ic < 6000:
		return ClassConfig
	case ic >= 6000 && ic < 7000:
		return ClassUnit
	}
	return ClassUnknown
}

func (c Class) String() string {
	switch c {
	case ClassTemplate:
		return "template"
	case ClassStructure:
		return "structure"
	case ClassSymbol:
		return "symbol"
	case ClassIO:
		return "io"
	case ClassConfig:
		return "config"
	case ClassUnit:
		return "unit"
	default:
		return "unknown"
	}
}
