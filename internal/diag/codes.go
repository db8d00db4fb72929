package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка - на первое время
	UnknownCode Code = 0

	// Лексические
	LexInfo               Code = 1000
	LexUnknownChar        Code = 1001
	LexUnterminatedString Code = 1002
	LexBadNumber          Code = 1003
	LexTokenTooLong       Code = 1004

	// Синтаксические
	SynInfo             Code = 2000
	SynUnexpectedToken  Code = 2001
	SynExpectSemicolon  Code = 2002
	SynExpectIdentifier Code = 2003
	SynExpectExpression Code = 2004
	SynExpectType       Code = 2005
	SynUnclosedDelim    Code = 2006
	SynExpectItem       Code = 2007
	SynBadAttribute     Code = 2008

	// Владение и заимствование
	OwnInfo                Code = 3000
	OwnUnresolvedName      Code = 3001
	OwnDuplicateName       Code = 3002
	OwnAssignImmutable     Code = 3003
	OwnUseAfterMove        Code = 3004
	OwnPartialUse          Code = 3005
	OwnMoveFromIndex       Code = 3006
	OwnMoveFromDropType    Code = 3007
	OwnBorrowConflict      Code = 3008
	OwnMutateWhileShared   Code = 3009
	OwnMutateWhileBorrowed Code = 3010
	OwnMoveWhileBorrowed   Code = 3011
	OwnBorrowImmutable     Code = 3012
	OwnNonAddressable      Code = 3013
	OwnDanglingRef         Code = 3014
	OwnCopyDropConflict    Code = 3015
	OwnUnknownType         Code = 3016
)

var codeDescription = map[Code]string{
	UnknownCode: "unknown error",

	LexInfo:               "lexer note",
	LexUnknownChar:        "unknown character",
	LexUnterminatedString: "unterminated string literal",
	LexBadNumber:          "malformed numeric literal",
	LexTokenTooLong:       "token exceeds maximum length",

	SynInfo:             "parser note",
	SynUnexpectedToken:  "unexpected token",
	SynExpectSemicolon:  "expected ';'",
	SynExpectIdentifier: "expected identifier",
	SynExpectExpression: "expected expression",
	SynExpectType:       "expected type",
	SynUnclosedDelim:    "unclosed delimiter",
	SynExpectItem:       "expected top-level item",
	SynBadAttribute:     "unknown attribute",

	OwnInfo:                "ownership note",
	OwnUnresolvedName:      "unresolved name",
	OwnDuplicateName:       "duplicate declaration",
	OwnAssignImmutable:     "assignment to immutable binding",
	OwnUseAfterMove:        "use of moved value",
	OwnPartialUse:          "use of partially moved value",
	OwnMoveFromIndex:       "cannot move out of indexed element",
	OwnMoveFromDropType:    "cannot move out of a value with a destructor",
	OwnBorrowConflict:      "conflicting borrow",
	OwnMutateWhileShared:   "write while shared borrows are live",
	OwnMutateWhileBorrowed: "write while exclusively borrowed",
	OwnMoveWhileBorrowed:   "move while borrowed",
	OwnBorrowImmutable:     "exclusive borrow of immutable binding",
	OwnNonAddressable:      "expression is not addressable",
	OwnDanglingRef:         "reference outlives its value",
	OwnCopyDropConflict:    "type cannot be both copyable and own a destructor",
	OwnUnknownType:         "unknown type",
}

// codeDetail carries the longer text shown by `rivet explain`.
var codeDetail = map[Code]string{
	OwnUseAfterMove: "Binding a non-copy value to a new name, assigning it, or " +
		"passing it by value transfers ownership. The previous binding is dead " +
		"for the rest of its scope; reading or moving it again would be a " +
		"use-after-free at runtime.",
	OwnPartialUse: "After a field or element has been moved out, the compound " +
		"value can only be used piecewise. Reinitialize every moved-out part " +
		"(or the whole value) before using it as a whole again.",
	OwnMoveFromIndex: "Indexing with a runtime value yields a reference, and a " +
		"dereference can never move. Take a reference to the element, or swap " +
		"it out explicitly.",
	OwnBorrowConflict: "A place may have any number of live shared borrows or " +
		"exactly one live exclusive borrow, never both. The conflicting borrow " +
		"is live until its last use.",
	OwnMutateWhileShared: "While shared borrows are live the owner keeps read " +
		"access but loses write access. The write becomes legal after the last " +
		"use of every shared borrow.",
	OwnMoveWhileBorrowed: "Moving a value would invalidate every outstanding " +
		"reference to it. The move becomes legal after the last use of each " +
		"borrow.",
	OwnDanglingRef: "The referenced value is destroyed when its scope ends; " +
		"returning or storing the reference would leave it dangling.",
	OwnCopyDropConflict: "Copy duplicates bits with no transfer of ownership, " +
		"so a copyable type can have no destructor: two copies would free the " +
		"same resource twice. The two properties are mutually exclusive.",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("OWN%04d", ic)
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

// Detail returns the extended explanation, empty if none is recorded.
func (c Code) Detail() string {
	return codeDetail[c]
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// ParseCodeID resolves a textual ID like "OWN3004" back to a Code.
func ParseCodeID(id string) (Code, bool) {
	for code := range codeDescription {
		if code.ID() == id {
			return code, true
		}
	}
	return UnknownCode, false
}
