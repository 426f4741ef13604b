package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Разбор документов (1000-1999)
	XMLInfo                   Code = 1000
	XMLMalformed              Code = 1001
	XMLMissingAttribute       Code = 1002
	XMLInvalidBoolean         Code = 1003
	XMLInvalidInteger         Code = 1004
	XMLUnknownArgType         Code = 1005
	XMLUnexpectedElement      Code = 1006
	XMLMissingProtocolElement Code = 1007

	// Структурная валидация IR (2000-2999)
	ValInfo                       Code = 2000
	ValEmptyInterfaceSet          Code = 2001
	ValEmptyEnumeration           Code = 2002
	ValMultipleTypedReturns       Code = 2003
	ValDestructorNotMarked        Code = 2004
	ValNullableUnsupported        Code = 2005
	ValInterfaceOnUnsupportedKind Code = 2006
	ValEnumOnUnsupportedKind      Code = 2007
	ValDuplicateInterface         Code = 2008
	ValDuplicateMessage           Code = 2009
	ValDuplicateEnumeration       Code = 2010

	// Разрешение ссылок (3000-3999)
	ResInfo                 Code = 3000
	ResUnresolvedInterface  Code = 3001
	ResAmbiguousInterface   Code = 3002
	ResUnresolvedEnumOwner  Code = 3003
	ResAmbiguousEnumOwner   Code = 3004
	ResEnumTypeMismatch     Code = 3005
	ResImportAliasCollision Code = 3006
	ResEnumNotFound         Code = 3007

	// Ошибки I/O
	IOLoadFileError Code = 4001

	// Ошибки корпуса / DAG
	ProjInfo              Code = 5000
	ProjDuplicateDocument Code = 5001
	ProjImportCycle       Code = 5002
	ProjNoDocuments       Code = 5003
	ProjAliasExhausted    Code = 5004

	// Observability
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var codeDescription = map[Code]string{
	UnknownCode:                   "Unknown error",
	XMLInfo:                       "Document information",
	XMLMalformed:                  "Malformed document",
	XMLMissingAttribute:           "Missing attribute",
	XMLInvalidBoolean:             "Invalid boolean attribute",
	XMLInvalidInteger:             "Invalid integer attribute",
	XMLUnknownArgType:             "Unknown argument type",
	XMLUnexpectedElement:          "Unexpected element",
	XMLMissingProtocolElement:     "Missing protocol element",
	ValInfo:                       "Validation information",
	ValEmptyInterfaceSet:          "Protocol declares no interfaces",
	ValEmptyEnumeration:           "Enumeration has no entries",
	ValMultipleTypedReturns:       "Multiple typed return arguments",
	ValDestructorNotMarked:        "Destructor name not marked as destructor",
	ValNullableUnsupported:        "Nullable on unsupported argument kind",
	ValInterfaceOnUnsupportedKind: "Interface on unsupported argument kind",
	ValEnumOnUnsupportedKind:      "Enumeration on unsupported argument kind",
	ValDuplicateInterface:         "Duplicate interface in document",
	ValDuplicateMessage:           "Duplicate message in interface",
	ValDuplicateEnumeration:       "Duplicate enumeration in interface",
	ResInfo:                       "Resolution information",
	ResUnresolvedInterface:        "Unresolved interface reference",
	ResAmbiguousInterface:         "Ambiguous interface reference",
	ResUnresolvedEnumOwner:        "Unresolved enumeration owner",
	ResAmbiguousEnumOwner:         "Ambiguous enumeration owner",
	ResEnumTypeMismatch:           "Enum reference type mismatch",
	ResImportAliasCollision:       "Import alias collision",
	ResEnumNotFound:               "Enumeration not found in owner",
	IOLoadFileError:               "Failed to load document",
	ProjInfo:                      "Corpus information",
	ProjDuplicateDocument:         "Duplicate document identity",
	ProjImportCycle:               "Import cycle between documents",
	ProjNoDocuments:               "No documents in corpus",
	ProjAliasExhausted:            "Alias assignment exhausted",
	ObsInfo:                       "Observability information",
	ObsTimings:                    "Pipeline timings",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("WLX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("VAL%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("RES%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
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
