package syntax

import (
	"github.com/unparalleled-js/solidity/ast"
	"github.com/unparalleled-js/solidity/report"
)

// extractReferences scans the tokens of a function body or expression for
// syntactic references to other contracts:
//
//	new C(...)
//	type(C).creationCode
//	type(C).runtimeCode
//	C.f(...)
//
// Whether the names actually denote contracts is decided during analysis.
func extractReferences(toks []*Token) []*ast.CallReference {
	var refs []*ast.CallReference

	kindAt := func(i int) int {
		if i < 0 || i >= len(toks) {
			return TOK_EOF
		}

		return toks[i].Kind
	}

	for i := 0; i < len(toks); i++ {
		switch toks[i].Kind {
		case TOK_NEW:
			if kindAt(i+1) == TOK_IDENT {
				refs = append(refs, &ast.CallReference{
					Kind:   ast.RefCreation,
					Target: toks[i+1].Value,
					Span:   report.NewSpanOver(toks[i].Span, toks[i+1].Span),
				})
			}
		case TOK_TYPE:
			// type ( C ) . member
			if kindAt(i+1) == TOK_LPAREN && kindAt(i+2) == TOK_IDENT && kindAt(i+3) == TOK_RPAREN &&
				kindAt(i+4) == TOK_DOT && kindAt(i+5) == TOK_IDENT {

				ref := &ast.CallReference{
					Target: toks[i+2].Value,
					Member: toks[i+5].Value,
					Span:   report.NewSpanOver(toks[i].Span, toks[i+5].Span),
				}

				switch ref.Member {
				case "creationCode":
					ref.Kind = ast.RefCreationCode
				case "runtimeCode":
					ref.Kind = ast.RefRuntimeCode
				default:
					continue
				}

				refs = append(refs, ref)
			}
		case TOK_IDENT:
			// C . f (  but not  x.C.f(
			if kindAt(i-1) != TOK_DOT && kindAt(i+1) == TOK_DOT && kindAt(i+2) == TOK_IDENT && kindAt(i+3) == TOK_LPAREN {
				refs = append(refs, &ast.CallReference{
					Kind:   ast.RefMemberCall,
					Target: toks[i].Value,
					Member: toks[i+2].Value,
					Span:   report.NewSpanOver(toks[i].Span, toks[i+2].Span),
				})
			}
		}
	}

	return refs
}
