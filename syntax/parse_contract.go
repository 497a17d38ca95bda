package syntax

import (
	"strings"

	"github.com/unparalleled-js/solidity/ast"
	"github.com/unparalleled-js/solidity/report"
)

// contract_def = ['abstract'] ('contract' | 'interface' | 'library') IDENT
//     ['is' base {',' base}] '{' {member} '}' ;
// base = path ['(' ... ')'] ;
func (p *Parser) parseContract() (*ast.ContractDefinition, error) {
	cd := &ast.ContractDefinition{
		Source: p.unit.Name,
		Docs:   docs(p.tok),
	}
	start := p.tok.Span

	if p.got(TOK_ABSTRACT) {
		cd.Abstract = true
		if err := p.next(); err != nil {
			return nil, err
		}

		if !p.got(TOK_CONTRACT) {
			return nil, p.reject()
		}
	}

	switch p.tok.Kind {
	case TOK_CONTRACT:
		cd.Kind = ast.KindContract
	case TOK_INTERFACE:
		cd.Kind = ast.KindInterface
	case TOK_LIBRARY:
		cd.Kind = ast.KindLibrary
	default:
		return nil, p.reject()
	}

	if err := p.next(); err != nil {
		return nil, err
	}

	name, err := p.expect(TOK_IDENT)
	if err != nil {
		return nil, err
	}
	cd.Name = name.Value
	cd.Span = report.NewSpanOver(start, name.Span)

	if p.got(TOK_IS) {
		if err := p.next(); err != nil {
			return nil, err
		}

		for {
			base, err := p.parsePath()
			if err != nil {
				return nil, err
			}
			cd.BaseNames = append(cd.BaseNames, base)

			if p.got(TOK_LPAREN) {
				if _, err := p.skipParens(); err != nil {
					return nil, err
				}
			}

			if !p.got(TOK_COMMA) {
				break
			}

			if err := p.next(); err != nil {
				return nil, err
			}
		}
	}

	if _, err := p.expect(TOK_LBRACE); err != nil {
		return nil, err
	}

	for !p.got(TOK_RBRACE) {
		if err := p.parseMember(cd); err != nil {
			return nil, err
		}
	}

	return cd, p.next()
}

// member = function_def | event_def | error_def | type_def | using | state_var ;
func (p *Parser) parseMember(cd *ast.ContractDefinition) error {
	switch {
	case p.gotValue("fallback"), p.gotValue("receive"):
		fn, err := p.parseFunction(cd)
		if err != nil {
			return err
		}

		cd.Functions = append(cd.Functions, fn)
		return nil
	case p.gotValue("error"):
		ed, err := p.parseError()
		if err != nil {
			return err
		}

		cd.Errors = append(cd.Errors, ed)
		return nil
	}

	switch p.tok.Kind {
	case TOK_FUNCTION, TOK_CONSTRUCTOR, TOK_MODIFIER:
		fn, err := p.parseFunction(cd)
		if err != nil {
			return err
		}

		cd.Functions = append(cd.Functions, fn)
	case TOK_EVENT:
		ev, err := p.parseEvent()
		if err != nil {
			return err
		}

		cd.Events = append(cd.Events, ev)
	case TOK_STRUCT, TOK_ENUM:
		return p.skipTypeDef()
	case TOK_USING, TOK_TYPE:
		return p.skipUntilSemi()
	case TOK_SEMI:
		return p.next()
	case TOK_IDENT, TOK_MAPPING:
		vd, err := p.parseStateVariable()
		if err != nil {
			return err
		}

		cd.StateVariables = append(cd.StateVariables, vd)
	default:
		return p.reject()
	}

	return nil
}

// state_var = type {var_attr} IDENT ['=' expr] ';' ;
func (p *Parser) parseStateVariable() (*ast.VariableDeclaration, error) {
	vd := &ast.VariableDeclaration{
		Docs:       docs(p.tok),
		Visibility: ast.VisibilityInternal,
	}
	start := p.tok.Span

	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	vd.Type = typ

	for p.got(TOK_IDENT) {
		switch p.tok.Value {
		case "public":
			vd.Visibility = ast.VisibilityPublic
		case "internal":
			vd.Visibility = ast.VisibilityInternal
		case "private":
			vd.Visibility = ast.VisibilityPrivate
		case "constant":
			vd.Constant = true
		case "immutable":
			vd.Immutable = true
		case "transient":
			vd.Transient = true
		case "override":
		default:
			vd.Name = p.tok.Value
		}

		if err := p.next(); err != nil {
			return nil, err
		}

		if vd.Name != "" {
			break
		}

		if p.got(TOK_LPAREN) {
			// override(A, B)
			if _, err := p.skipParens(); err != nil {
				return nil, err
			}
		}
	}

	if vd.Name == "" {
		return nil, p.reject()
	}

	vd.Span = report.NewSpanOver(start, p.tok.Span)

	if p.got(TOK_SEMI) {
		return vd, p.next()
	}

	if !p.got(TOK_ASSIGN) && !(p.got(TOK_OPER) && strings.HasPrefix(p.tok.Value, "=")) {
		return nil, p.reject()
	}

	if err := p.next(); err != nil {
		return nil, err
	}

	toks, err := p.collectUntilSemi()
	if err != nil {
		return nil, err
	}

	vd.Calls = extractReferences(toks)
	return vd, nil
}

// function_def = fn_head IDENT? '(' params ')' {fn_attr} ['returns' '(' params ')'] (';' | block) ;
// fn_head = 'function' | 'constructor' | 'fallback' | 'receive' | 'modifier' ;
func (p *Parser) parseFunction(cd *ast.ContractDefinition) (*ast.FunctionDefinition, error) {
	fn := &ast.FunctionDefinition{Docs: docs(p.tok)}
	start := p.tok.Span

	switch {
	case p.got(TOK_FUNCTION):
		fn.Kind = ast.FuncFunction
	case p.got(TOK_CONSTRUCTOR):
		fn.Kind = ast.FuncConstructor
		fn.Visibility = ast.VisibilityPublic
	case p.gotValue("fallback"):
		fn.Kind = ast.FuncFallback
		fn.Visibility = ast.VisibilityExternal
	case p.gotValue("receive"):
		fn.Kind = ast.FuncReceive
		fn.Visibility = ast.VisibilityExternal
		fn.Mutability = ast.MutabilityPayable
	case p.got(TOK_MODIFIER):
		fn.Kind = ast.FuncModifier
		fn.Visibility = ast.VisibilityInternal
	}

	if err := p.next(); err != nil {
		return nil, err
	}

	if fn.Kind == ast.FuncFunction || fn.Kind == ast.FuncModifier {
		// `type` is a keyword but still a valid function name
		switch p.tok.Kind {
		case TOK_IDENT, TOK_TYPE:
			fn.Name = p.tok.Value
			if err := p.next(); err != nil {
				return nil, err
			}
		default:
			return nil, p.reject()
		}
	} else {
		fn.Name = fn.Kind.String()
	}

	fn.Span = report.NewSpanOver(start, p.tok.Span)

	if fn.Kind != ast.FuncModifier || p.got(TOK_LPAREN) {
		params, err := p.parseParams()
		if err != nil {
			return nil, err
		}
		fn.Params = params
	}

	// function attributes
	for {
		if p.got(TOK_RETURNS) {
			if err := p.next(); err != nil {
				return nil, err
			}

			returns, err := p.parseParams()
			if err != nil {
				return nil, err
			}
			fn.Returns = returns
			continue
		}

		if !p.got(TOK_IDENT) {
			break
		}

		switch p.tok.Value {
		case "public":
			fn.Visibility = ast.VisibilityPublic
		case "external":
			fn.Visibility = ast.VisibilityExternal
		case "internal":
			fn.Visibility = ast.VisibilityInternal
		case "private":
			fn.Visibility = ast.VisibilityPrivate
		case "payable":
			fn.Mutability = ast.MutabilityPayable
		case "view":
			fn.Mutability = ast.MutabilityView
		case "pure":
			fn.Mutability = ast.MutabilityPure
		case "virtual":
			fn.Virtual = true
		case "override":
			fn.Override = true
		}

		// anything else is a modifier invocation; arguments are skipped but
		// may still reference contracts
		if err := p.next(); err != nil {
			return nil, err
		}

		if p.got(TOK_LPAREN) {
			toks, err := p.skipParens()
			if err != nil {
				return nil, err
			}

			fn.Calls = append(fn.Calls, extractReferences(toks)...)
		}
	}

	if fn.Visibility == ast.VisibilityDefault {
		if cd != nil && cd.Kind == ast.KindInterface {
			fn.Visibility = ast.VisibilityExternal
		} else {
			fn.Visibility = ast.VisibilityPublic
		}
	}

	if p.got(TOK_SEMI) {
		return fn, p.next()
	}

	toks, err := p.skipBlock()
	if err != nil {
		return nil, err
	}

	fn.HasBody = true
	fn.Calls = append(fn.Calls, extractReferences(toks)...)
	return fn, nil
}

// event_def = 'event' IDENT '(' params ')' ['anonymous'] ';' ;
func (p *Parser) parseEvent() (*ast.EventDefinition, error) {
	ev := &ast.EventDefinition{Docs: docs(p.tok)}
	start := p.tok.Span

	if err := p.next(); err != nil {
		return nil, err
	}

	name, err := p.expect(TOK_IDENT)
	if err != nil {
		return nil, err
	}
	ev.Name = name.Value
	ev.Span = report.NewSpanOver(start, name.Span)

	if ev.Params, err = p.parseParams(); err != nil {
		return nil, err
	}

	if p.gotValue("anonymous") {
		ev.Anonymous = true
		if err := p.next(); err != nil {
			return nil, err
		}
	}

	_, err = p.expect(TOK_SEMI)
	return ev, err
}

// error_def = 'error' IDENT '(' params ')' ';' ;
func (p *Parser) parseError() (*ast.ErrorDefinition, error) {
	ed := &ast.ErrorDefinition{Docs: docs(p.tok)}
	start := p.tok.Span

	if err := p.next(); err != nil {
		return nil, err
	}

	name, err := p.expect(TOK_IDENT)
	if err != nil {
		return nil, err
	}
	ed.Name = name.Value
	ed.Span = report.NewSpanOver(start, name.Span)

	if ed.Params, err = p.parseParams(); err != nil {
		return nil, err
	}

	_, err = p.expect(TOK_SEMI)
	return ed, err
}

// params = '(' [param {',' param}] ')' ;
// param = type ['indexed'] [location] [IDENT] ;
func (p *Parser) parseParams() ([]*ast.Parameter, error) {
	if _, err := p.expect(TOK_LPAREN); err != nil {
		return nil, err
	}

	var params []*ast.Parameter
	for !p.got(TOK_RPAREN) {
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}

		param := &ast.Parameter{Type: typ}
		for p.got(TOK_IDENT) {
			switch p.tok.Value {
			case "indexed":
				param.Indexed = true
			case "memory", "storage", "calldata":
			default:
				param.Name = p.tok.Value
			}

			if err := p.next(); err != nil {
				return nil, err
			}
		}

		params = append(params, param)

		if p.got(TOK_COMMA) {
			if err := p.next(); err != nil {
				return nil, err
			}
		} else if !p.got(TOK_RPAREN) {
			return nil, p.reject()
		}
	}

	return params, p.next()
}

// type = (mapping | path ['payable']) {'[' [expr] ']'} ;
// mapping = 'mapping' '(' type [IDENT] '=>' type [IDENT] ')' ;
func (p *Parser) parseType() (string, error) {
	var typ string

	switch p.tok.Kind {
	case TOK_MAPPING:
		if err := p.next(); err != nil {
			return "", err
		}
		if _, err := p.expect(TOK_LPAREN); err != nil {
			return "", err
		}

		key, err := p.parseType()
		if err != nil {
			return "", err
		}
		if p.got(TOK_IDENT) {
			if err := p.next(); err != nil {
				return "", err
			}
		}

		if _, err := p.expect(TOK_ARROW); err != nil {
			return "", err
		}

		value, err := p.parseType()
		if err != nil {
			return "", err
		}
		if p.got(TOK_IDENT) {
			if err := p.next(); err != nil {
				return "", err
			}
		}

		if _, err := p.expect(TOK_RPAREN); err != nil {
			return "", err
		}

		typ = "mapping(" + key + " => " + value + ")"
	case TOK_IDENT:
		path, err := p.parsePath()
		if err != nil {
			return "", err
		}

		typ = path
		if typ == "address" && p.gotValue("payable") {
			typ = "address payable"
			if err := p.next(); err != nil {
				return "", err
			}
		}
	case TOK_FUNCTION:
		return "", report.Raise(p.tok.Span, "function types are not supported")
	default:
		return "", p.reject()
	}

	for p.got(TOK_LBRACKET) {
		if err := p.next(); err != nil {
			return "", err
		}

		var size []string
		for !p.got(TOK_RBRACKET) {
			if p.got(TOK_EOF) {
				return "", p.reject()
			}

			size = append(size, p.tok.Value)
			if err := p.next(); err != nil {
				return "", err
			}
		}

		typ += "[" + strings.Join(size, "") + "]"
		if err := p.next(); err != nil {
			return "", err
		}
	}

	return typ, nil
}

// path = IDENT {'.' IDENT} ;
func (p *Parser) parsePath() (string, error) {
	first, err := p.expect(TOK_IDENT)
	if err != nil {
		return "", err
	}

	parts := []string{first.Value}
	for p.got(TOK_DOT) {
		if err := p.next(); err != nil {
			return "", err
		}

		part, err := p.expect(TOK_IDENT)
		if err != nil {
			return "", err
		}
		parts = append(parts, part.Value)
	}

	return strings.Join(parts, "."), nil
}

// skipParens skips a balanced `( ... )` group and returns the tokens inside.
func (p *Parser) skipParens() ([]*Token, error) {
	if !p.got(TOK_LPAREN) {
		return nil, p.reject()
	}

	var toks []*Token
	depth := 0

	for {
		switch p.tok.Kind {
		case TOK_EOF:
			return nil, p.reject()
		case TOK_LPAREN:
			depth++
		case TOK_RPAREN:
			depth--
			if depth == 0 {
				return toks, p.next()
			}
		}

		if depth > 1 || (depth == 1 && !p.got(TOK_LPAREN)) {
			toks = append(toks, p.tok)
		}

		if err := p.next(); err != nil {
			return nil, err
		}
	}
}
