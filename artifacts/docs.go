package artifacts

import (
	"fmt"
	"strings"

	"github.com/unparalleled-js/solidity/ast"
)

// Generator produces the derived artifacts of analyzed contracts.  It holds
// no state; every artifact is a pure function of the definition.
type Generator struct{}

// NewGenerator creates a new artifact generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// UserDoc is the documentation aimed at users of a contract.
type UserDoc struct {
	Kind    string                 `json:"kind"`
	Version int                    `json:"version"`
	Notice  string                 `json:"notice,omitempty"`
	Methods map[string]NoticeDoc   `json:"methods"`
	Events  map[string]NoticeDoc   `json:"events,omitempty"`
	Errors  map[string][]NoticeDoc `json:"errors,omitempty"`
}

// NoticeDoc is a single user facing notice.
type NoticeDoc struct {
	Notice string `json:"notice"`
}

// DevDoc is the documentation aimed at developers.
type DevDoc struct {
	Kind           string                     `json:"kind"`
	Version        int                        `json:"version"`
	Title          string                     `json:"title,omitempty"`
	Author         string                     `json:"author,omitempty"`
	Details        string                     `json:"details,omitempty"`
	Custom         map[string]string          `json:"custom,omitempty"`
	Methods        map[string]*MemberDevDoc   `json:"methods"`
	Events         map[string]*MemberDevDoc   `json:"events,omitempty"`
	Errors         map[string][]*MemberDevDoc `json:"errors,omitempty"`
	StateVariables map[string]*MemberDevDoc   `json:"stateVariables,omitempty"`
}

// MemberDevDoc is the developer documentation of a single member.
type MemberDevDoc struct {
	Details string            `json:"details,omitempty"`
	Params  map[string]string `json:"params,omitempty"`
	Returns map[string]string `json:"returns,omitempty"`
}

// UserDoc collects the notices of a contract and its members.
func (g *Generator) UserDoc(cd *ast.ContractDefinition) *UserDoc {
	doc := &UserDoc{Kind: "user", Version: 1, Methods: make(map[string]NoticeDoc)}

	if cd.Docs != nil {
		doc.Notice = cd.Docs.Notice
	}

	for _, fn := range documentedFunctions(cd) {
		if fn.Docs != nil && fn.Docs.Notice != "" {
			doc.Methods[methodKey(fn)] = NoticeDoc{Notice: fn.Docs.Notice}
		}
	}

	for _, ev := range cd.AllEvents() {
		if ev.Docs != nil && ev.Docs.Notice != "" {
			if doc.Events == nil {
				doc.Events = make(map[string]NoticeDoc)
			}

			doc.Events[ev.Signature()] = NoticeDoc{Notice: ev.Docs.Notice}
		}
	}

	for _, e := range cd.AllErrors() {
		if e.Docs != nil && e.Docs.Notice != "" {
			if doc.Errors == nil {
				doc.Errors = make(map[string][]NoticeDoc)
			}

			doc.Errors[e.Signature()] = append(doc.Errors[e.Signature()], NoticeDoc{Notice: e.Docs.Notice})
		}
	}

	return doc
}

// DevDoc collects the developer documentation of a contract and its members.
func (g *Generator) DevDoc(cd *ast.ContractDefinition) *DevDoc {
	doc := &DevDoc{Kind: "dev", Version: 1, Methods: make(map[string]*MemberDevDoc)}

	if ns := cd.Docs; ns != nil {
		doc.Title = ns.Title
		doc.Author = ns.Author
		doc.Details = ns.Dev

		if len(ns.Custom) > 0 {
			doc.Custom = ns.Custom
		}
	}

	for _, fn := range documentedFunctions(cd) {
		if md := memberDevDoc(fn.Docs, fn.Params, fn.Returns); md != nil {
			doc.Methods[methodKey(fn)] = md
		}
	}

	for _, ev := range cd.AllEvents() {
		if md := memberDevDoc(ev.Docs, ev.Params, nil); md != nil {
			if doc.Events == nil {
				doc.Events = make(map[string]*MemberDevDoc)
			}

			doc.Events[ev.Signature()] = md
		}
	}

	for _, e := range cd.AllErrors() {
		if md := memberDevDoc(e.Docs, e.Params, nil); md != nil {
			if doc.Errors == nil {
				doc.Errors = make(map[string][]*MemberDevDoc)
			}

			doc.Errors[e.Signature()] = append(doc.Errors[e.Signature()], md)
		}
	}

	for _, v := range cd.StateVariables {
		if v.Visibility != ast.VisibilityPublic {
			continue
		}

		getter := ast.Getter(v)
		if md := memberDevDoc(v.Docs, nil, getter.Returns); md != nil {
			if doc.StateVariables == nil {
				doc.StateVariables = make(map[string]*MemberDevDoc)
			}

			doc.StateVariables[v.Name] = md
		}
	}

	return doc
}

// documentedFunctions returns the interface functions and the constructor.
func documentedFunctions(cd *ast.ContractDefinition) []*ast.FunctionDefinition {
	fns := cd.InterfaceFunctions()
	if ctor := constructorOf(cd); ctor != nil {
		fns = append(fns, ctor)
	}

	return fns
}

func methodKey(fn *ast.FunctionDefinition) string {
	if fn.Kind == ast.FuncConstructor {
		return "constructor"
	}

	return fn.Signature()
}

// memberDevDoc returns nil if there is nothing to document.
func memberDevDoc(ns *ast.Natspec, params, returns []*ast.Parameter) *MemberDevDoc {
	if ns == nil {
		return nil
	}

	md := &MemberDevDoc{Details: ns.Dev}

	for _, p := range params {
		if text, ok := ns.Params[p.Name]; ok {
			if md.Params == nil {
				md.Params = make(map[string]string)
			}

			md.Params[p.Name] = text
		}
	}

	for i, text := range ns.Returns {
		if md.Returns == nil {
			md.Returns = make(map[string]string)
		}

		name := fmt.Sprintf("_%d", i)
		if i < len(returns) && returns[i].Name != "" {
			// named returns repeat the name in front of the description
			name = returns[i].Name
			text = strings.TrimSpace(strings.TrimPrefix(text, name+" "))
		}

		md.Returns[name] = text
	}

	if md.Details == "" && md.Params == nil && md.Returns == nil {
		return nil
	}

	return md
}
