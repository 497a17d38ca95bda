package ast

import "strings"

// Natspec is the parsed documentation comment of a declaration.
type Natspec struct {
	Title   string
	Author  string
	Notice  string
	Dev     string
	Params  map[string]string
	Returns []string

	// Custom holds `@custom:name` tags by name.
	Custom map[string]string
}

// ParseNatspec parses the text of `///` or `/** */` comments, with the comment
// markers already removed, into tags.  Untagged text is a notice.
func ParseNatspec(text string) *Natspec {
	ns := &Natspec{
		Params: make(map[string]string),
		Custom: make(map[string]string),
	}

	tag, arg := "notice", ""
	var body []string

	flush := func() {
		content := strings.TrimSpace(strings.Join(body, " "))
		body = nil
		if content == "" && tag != "param" {
			return
		}

		switch tag {
		case "title":
			ns.Title = joinDoc(ns.Title, content)
		case "author":
			ns.Author = joinDoc(ns.Author, content)
		case "notice":
			ns.Notice = joinDoc(ns.Notice, content)
		case "dev":
			ns.Dev = joinDoc(ns.Dev, content)
		case "param":
			if arg != "" {
				ns.Params[arg] = content
			}
		case "return":
			ns.Returns = append(ns.Returns, content)
		default:
			if strings.HasPrefix(tag, "custom:") {
				ns.Custom[strings.TrimPrefix(tag, "custom:")] = content
			}
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "*")
		line = strings.TrimSpace(line)

		if strings.HasPrefix(line, "@") {
			flush()

			fields := strings.Fields(line[1:])
			if len(fields) == 0 {
				continue
			}

			tag, arg = fields[0], ""
			rest := fields[1:]
			if tag == "param" && len(rest) > 0 {
				arg, rest = rest[0], rest[1:]
			}

			body = append(body, strings.Join(rest, " "))
		} else if line != "" {
			body = append(body, line)
		}
	}

	flush()
	return ns
}

func joinDoc(prev, next string) string {
	if prev == "" {
		return next
	}

	return prev + "\n" + next
}

// Empty returns whether the comment carries no information.
func (ns *Natspec) Empty() bool {
	return ns == nil || (ns.Title == "" && ns.Author == "" && ns.Notice == "" &&
		ns.Dev == "" && len(ns.Params) == 0 && len(ns.Returns) == 0 && len(ns.Custom) == 0)
}
