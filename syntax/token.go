package syntax

import "github.com/unparalleled-js/solidity/report"

// Token represents a single lexical token.
type Token struct {
	// The kind of the token.  This must be one of the enumerated token kinds.
	Kind int

	// The string value of the token.  The value of a string token has the
	// quotes trimmed off.
	Value string

	// Doc is the documentation comment directly preceding the token, if any.
	Doc string

	// The text span over which the token exists.
	Span *report.TextSpan
}

// Enumeration of token kinds.
const (
	TOK_PRAGMA = iota
	TOK_IMPORT
	TOK_AS

	TOK_CONTRACT
	TOK_INTERFACE
	TOK_LIBRARY
	TOK_ABSTRACT
	TOK_IS

	TOK_FUNCTION
	TOK_CONSTRUCTOR
	TOK_MODIFIER
	TOK_EVENT
	TOK_RETURNS
	TOK_STRUCT
	TOK_ENUM
	TOK_USING

	TOK_NEW
	TOK_TYPE
	TOK_MAPPING

	TOK_IDENT
	TOK_NUMLIT
	TOK_STRINGLIT

	TOK_LPAREN
	TOK_RPAREN
	TOK_LBRACE
	TOK_RBRACE
	TOK_LBRACKET
	TOK_RBRACKET
	TOK_COMMA
	TOK_DOT
	TOK_SEMI
	TOK_COLON
	TOK_ASSIGN
	TOK_ARROW
	TOK_STAR
	TOK_OPER // any other operator

	TOK_EOF
)

// keywordPatterns maps keyword strings (patterns) to their keyword token kind.
// Everything else made of identifier characters is an identifier: modifiers
// like `public` or `view` are recognized by the parser by value.  So are
// `from`, `error`, `fallback` and `receive` which are valid names elsewhere.
var keywordPatterns = map[string]int{
	"pragma": TOK_PRAGMA,
	"import": TOK_IMPORT,
	"as":     TOK_AS,

	"contract":  TOK_CONTRACT,
	"interface": TOK_INTERFACE,
	"library":   TOK_LIBRARY,
	"abstract":  TOK_ABSTRACT,
	"is":        TOK_IS,

	"function":    TOK_FUNCTION,
	"constructor": TOK_CONSTRUCTOR,
	"modifier":    TOK_MODIFIER,
	"event":       TOK_EVENT,
	"returns":     TOK_RETURNS,
	"struct":      TOK_STRUCT,
	"enum":        TOK_ENUM,
	"using":       TOK_USING,

	"new":     TOK_NEW,
	"type":    TOK_TYPE,
	"mapping": TOK_MAPPING,
}

// symbolPatterns maps punctuation strings to their token kind.  Operators not
// listed are lexed as TOK_OPER.
var symbolPatterns = map[string]int{
	"(":  TOK_LPAREN,
	")":  TOK_RPAREN,
	"{":  TOK_LBRACE,
	"}":  TOK_RBRACE,
	"[":  TOK_LBRACKET,
	"]":  TOK_RBRACKET,
	",":  TOK_COMMA,
	".":  TOK_DOT,
	";":  TOK_SEMI,
	":":  TOK_COLON,
	"=":  TOK_ASSIGN,
	"=>": TOK_ARROW,
	"*":  TOK_STAR,
}

// operatorRunes are the runes that may form multi-character operators.
const operatorRunes = "+-*/%&|^~!<>=?"
