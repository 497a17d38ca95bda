package syntax

import (
	"bufio"
	"strings"

	"github.com/unparalleled-js/solidity/ast"
	"github.com/unparalleled-js/solidity/report"
)

// NOTE: All parsing functions (that are not utility/API functions) are
// commented with the EBNF notation of the grammar they parse.

// Parser is a recursive descent parser for a single source unit.  It parses
// declarations fully and skims function bodies, only recording references to
// other contracts.  All parsing functions assume that they begin with the
// parser centered on the first token of their production and must consume
// all tokens of their production, leaving the parser on the next token.
type Parser struct {
	unit *ast.SourceUnit

	// lexer is the Lexer this parser is using to lex the source unit.
	lexer *Lexer

	// tok is the current token the parser is positioned on.
	tok *Token
}

// Parse parses the source unit with the given name and content.  It stops at
// the first syntax error which is returned as a *report.LocalCompileError.
func Parse(name, content string) (*ast.SourceUnit, error) {
	p := &Parser{
		unit:  &ast.SourceUnit{Name: name},
		lexer: NewLexer(bufio.NewReader(strings.NewReader(content))),
	}

	if err := p.next(); err != nil {
		return nil, err
	}

	if err := p.parseSourceUnit(); err != nil {
		return nil, err
	}

	p.unit.License = p.lexer.License
	return p.unit, nil
}

// -----------------------------------------------------------------------------

// next moves the parser forward one token.
func (p *Parser) next() error {
	tok, err := p.lexer.NextToken()
	if err != nil {
		return err
	}

	p.tok = tok
	return nil
}

// got returns true if the parser is on a token of a given kind.
func (p *Parser) got(kind int) bool {
	return p.tok.Kind == kind
}

// gotValue returns true if the parser is on an identifier with a given value.
func (p *Parser) gotValue(value string) bool {
	return p.tok.Kind == TOK_IDENT && p.tok.Value == value
}

// expect asserts the parser is on a token of the given kind, returns that
// token and moves forward.
func (p *Parser) expect(kind int) (*Token, error) {
	if !p.got(kind) {
		return nil, p.reject()
	}

	tok := p.tok
	return tok, p.next()
}

// reject produces an unexpected token error on the current token.
func (p *Parser) reject() error {
	if p.got(TOK_EOF) {
		return report.Raise(p.tok.Span, "unexpected end of file")
	}

	return report.Raise(p.tok.Span, "unexpected token: `%s`", p.tok.Value)
}

// docs parses the documentation attached to a token.
func docs(tok *Token) *ast.Natspec {
	if tok.Doc == "" {
		return nil
	}

	return ast.ParseNatspec(tok.Doc)
}

// -----------------------------------------------------------------------------

// source_unit = {pragma | import | contract_def | free_def} ;
func (p *Parser) parseSourceUnit() error {
	for !p.got(TOK_EOF) {
		var err error

		switch p.tok.Kind {
		case TOK_PRAGMA:
			err = p.parsePragma()
		case TOK_IMPORT:
			err = p.parseImport()
		case TOK_ABSTRACT, TOK_CONTRACT, TOK_INTERFACE, TOK_LIBRARY:
			var cd *ast.ContractDefinition
			if cd, err = p.parseContract(); err == nil {
				p.unit.Contracts = append(p.unit.Contracts, cd)
			}
		case TOK_STRUCT, TOK_ENUM:
			err = p.skipTypeDef()
		case TOK_FUNCTION:
			// free functions have no bearing on contract compilation beyond
			// being inlined, so only their syntax is checked
			_, err = p.parseFunction(nil)
		case TOK_EVENT, TOK_USING, TOK_TYPE:
			err = p.skipUntilSemi()
		case TOK_SEMI:
			err = p.next()
		default:
			// file level constants: `uint constant X = 1;`
			if p.got(TOK_IDENT) {
				err = p.skipUntilSemi()
			} else {
				err = p.reject()
			}
		}

		if err != nil {
			return err
		}
	}

	return nil
}

// pragma = 'pragma' ? raw text ? ';' ;
func (p *Parser) parsePragma() error {
	start := p.tok.Span

	raw, err := p.lexer.RawUntil(';')
	if err != nil {
		return err
	}

	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return report.Raise(start, "empty pragma")
	}

	p.unit.Pragmas = append(p.unit.Pragmas, &ast.Pragma{
		Name:  fields[0],
		Value: strings.TrimSpace(strings.TrimPrefix(raw, fields[0])),
		Span:  start,
	})

	return p.next()
}

// import = 'import' (
//     string_lit ['as' IDENT]
//   | '*' 'as' IDENT 'from' string_lit
//   | '{' symbol {',' symbol} '}' 'from' string_lit
//   | IDENT 'from' string_lit
// ) ';' ;
// symbol = IDENT ['as' IDENT] ;
func (p *Parser) parseImport() error {
	imp := &ast.ImportDirective{Span: p.tok.Span}
	if err := p.next(); err != nil {
		return err
	}

	switch p.tok.Kind {
	case TOK_STRINGLIT:
		imp.Path = p.tok.Value
		if err := p.next(); err != nil {
			return err
		}

		if p.got(TOK_AS) {
			if err := p.next(); err != nil {
				return err
			}

			alias, err := p.expect(TOK_IDENT)
			if err != nil {
				return err
			}
			imp.UnitAlias = alias.Value
		}
	case TOK_STAR:
		if err := p.next(); err != nil {
			return err
		}
		if _, err := p.expect(TOK_AS); err != nil {
			return err
		}

		alias, err := p.expect(TOK_IDENT)
		if err != nil {
			return err
		}
		imp.UnitAlias = alias.Value

		if err := p.parseImportFrom(imp); err != nil {
			return err
		}
	case TOK_LBRACE:
		if err := p.next(); err != nil {
			return err
		}

		for {
			name, err := p.expect(TOK_IDENT)
			if err != nil {
				return err
			}

			sym := ast.ImportedSymbol{Name: name.Value}
			if p.got(TOK_AS) {
				if err := p.next(); err != nil {
					return err
				}

				alias, err := p.expect(TOK_IDENT)
				if err != nil {
					return err
				}
				sym.Alias = alias.Value
			}

			imp.Symbols = append(imp.Symbols, sym)

			if p.got(TOK_COMMA) {
				if err := p.next(); err != nil {
					return err
				}
				continue
			}

			break
		}

		if _, err := p.expect(TOK_RBRACE); err != nil {
			return err
		}

		if err := p.parseImportFrom(imp); err != nil {
			return err
		}
	case TOK_IDENT:
		imp.UnitAlias = p.tok.Value
		if err := p.next(); err != nil {
			return err
		}

		if err := p.parseImportFrom(imp); err != nil {
			return err
		}
	default:
		return p.reject()
	}

	if imp.Path == "" {
		return report.Raise(imp.Span, "import path cannot be empty")
	}

	imp.Span = report.NewSpanOver(imp.Span, p.tok.Span)
	if _, err := p.expect(TOK_SEMI); err != nil {
		return err
	}

	p.unit.Imports = append(p.unit.Imports, imp)
	return nil
}

// parseImportFrom parses `'from' string_lit`.
func (p *Parser) parseImportFrom(imp *ast.ImportDirective) error {
	if !p.gotValue("from") {
		return p.reject()
	}

	if err := p.next(); err != nil {
		return err
	}

	path, err := p.expect(TOK_STRINGLIT)
	if err != nil {
		return err
	}

	imp.Path = path.Value
	return nil
}

// type_def = ('struct' | 'enum') IDENT '{' ... '}' ;
func (p *Parser) skipTypeDef() error {
	if err := p.next(); err != nil {
		return err
	}

	if _, err := p.expect(TOK_IDENT); err != nil {
		return err
	}

	_, err := p.skipBlock()
	return err
}

// skipUntilSemi skips all tokens up to and including the next `;` that is not
// nested inside brackets.  It returns the references found on the way.
func (p *Parser) skipUntilSemi() error {
	_, err := p.collectUntilSemi()
	return err
}

// collectUntilSemi is like skipUntilSemi but returns the skipped tokens.
func (p *Parser) collectUntilSemi() ([]*Token, error) {
	var toks []*Token
	depth := 0

	for {
		switch p.tok.Kind {
		case TOK_EOF:
			return nil, p.reject()
		case TOK_LPAREN, TOK_LBRACKET, TOK_LBRACE:
			depth++
		case TOK_RPAREN, TOK_RBRACKET, TOK_RBRACE:
			depth--
			if depth < 0 {
				return nil, p.reject()
			}
		case TOK_SEMI:
			if depth == 0 {
				return toks, p.next()
			}
		}

		toks = append(toks, p.tok)
		if err := p.next(); err != nil {
			return nil, err
		}
	}
}

// skipBlock skips a balanced `{ ... }` block and returns the tokens inside it.
func (p *Parser) skipBlock() ([]*Token, error) {
	if !p.got(TOK_LBRACE) {
		return nil, p.reject()
	}

	var toks []*Token
	depth := 0

	for {
		switch p.tok.Kind {
		case TOK_EOF:
			return nil, p.reject()
		case TOK_LBRACE:
			depth++
		case TOK_RBRACE:
			depth--
			if depth == 0 {
				return toks, p.next()
			}
		}

		if depth > 1 || (depth == 1 && !p.got(TOK_LBRACE)) {
			toks = append(toks, p.tok)
		}

		if err := p.next(); err != nil {
			return nil, err
		}
	}
}
