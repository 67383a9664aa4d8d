package docnode

import (
	"strings"
)

// TagKind is the closed set of recognized doc-comment tags. Anything else is
// kept as TagUnknown with the raw tag name so nothing is silently dropped.
type TagKind int

const (
	TagUnknown TagKind = iota
	TagParam
	TagReturns
	TagDeprecated
	TagExample
	TagSee
	TagTemplate
	TagDefault
)

func (k TagKind) String() string {
	switch k {
	case TagParam:
		return "param"
	case TagReturns:
		return "returns"
	case TagDeprecated:
		return "deprecated"
	case TagExample:
		return "example"
	case TagSee:
		return "see"
	case TagTemplate:
		return "template"
	case TagDefault:
		return "default"
	default:
		return "unknown"
	}
}

// Tag is one parsed doc-comment tag. Name holds the parameter or type-param
// name for param/template tags, or the original tag name for unknown tags.
type Tag struct {
	Kind TagKind `json:"kind"`
	Name string  `json:"name,omitempty"`
	Doc  string  `json:"doc,omitempty"`
}

// JSDoc is a structured doc comment: the markdown body plus its tags.
type JSDoc struct {
	Doc  string `json:"doc,omitempty"`
	Tags []Tag  `json:"tags,omitempty"`
}

// Empty reports whether the comment carries neither body nor tags.
func (j JSDoc) Empty() bool {
	return j.Doc == "" && len(j.Tags) == 0
}

// Deprecated reports whether an @deprecated tag is present.
func (j JSDoc) Deprecated() bool {
	for _, tag := range j.Tags {
		if tag.Kind == TagDeprecated {
			return true
		}
	}
	return false
}

// Summary returns the leading portion of the body: everything before the
// first blank line or fenced code block.
func (j JSDoc) Summary() string {
	doc := strings.TrimSpace(j.Doc)
	if doc == "" {
		return ""
	}
	cut := len(doc)
	if idx := strings.Index(doc, "\n\n"); idx != -1 && idx < cut {
		cut = idx
	}
	if idx := strings.Index(doc, "```"); idx != -1 && idx < cut {
		cut = idx
	}
	return strings.TrimSpace(doc[:cut])
}

// ParamDoc returns the doc text of the @param tag matching name.
func (j JSDoc) ParamDoc(name string) string {
	for _, tag := range j.Tags {
		if tag.Kind == TagParam && tag.Name == name {
			return tag.Doc
		}
	}
	return ""
}

// ParseJSDoc parses the inside of a /** ... */ comment into a body and tags.
// The raw argument may still carry the comment markers and the per-line "*"
// gutter; both are stripped.
func ParseJSDoc(raw string) JSDoc {
	text := stripCommentMarkers(raw)
	if text == "" {
		return JSDoc{}
	}

	lines := strings.Split(text, "\n")
	var bodyLines []string
	var tags []Tag
	var current *Tag

	flush := func() {
		if current != nil {
			current.Doc = strings.TrimSpace(current.Doc)
			tags = append(tags, *current)
			current = nil
		}
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "@") {
			flush()
			tag := parseTagLine(trimmed)
			current = &tag
			continue
		}
		if current != nil {
			if current.Doc == "" {
				current.Doc = trimmed
			} else {
				current.Doc += "\n" + line
			}
			continue
		}
		bodyLines = append(bodyLines, line)
	}
	flush()

	return JSDoc{
		Doc:  strings.TrimSpace(strings.Join(bodyLines, "\n")),
		Tags: tags,
	}
}

func parseTagLine(line string) Tag {
	name := strings.TrimPrefix(line, "@")
	rest := ""
	if idx := strings.IndexAny(name, " \t"); idx != -1 {
		rest = strings.TrimSpace(name[idx:])
		name = name[:idx]
	}

	switch strings.ToLower(name) {
	case "param", "arg", "argument":
		paramName, doc := splitFirstWord(stripBracedType(rest))
		// Optional parameters are written as [name] or [name=default].
		paramName = strings.TrimPrefix(paramName, "[")
		paramName = strings.TrimSuffix(paramName, "]")
		if idx := strings.Index(paramName, "="); idx != -1 {
			paramName = paramName[:idx]
		}
		doc = strings.TrimPrefix(doc, "- ")
		return Tag{Kind: TagParam, Name: paramName, Doc: doc}
	case "returns", "return":
		return Tag{Kind: TagReturns, Doc: stripBracedType(rest)}
	case "deprecated":
		return Tag{Kind: TagDeprecated, Doc: rest}
	case "example":
		return Tag{Kind: TagExample, Doc: rest}
	case "see":
		return Tag{Kind: TagSee, Doc: rest}
	case "template", "typeparam":
		tpName, doc := splitFirstWord(rest)
		return Tag{Kind: TagTemplate, Name: tpName, Doc: doc}
	case "default":
		return Tag{Kind: TagDefault, Doc: rest}
	default:
		return Tag{Kind: TagUnknown, Name: name, Doc: rest}
	}
}

// stripBracedType drops a leading {Type} annotation from a tag body.
func stripBracedType(value string) string {
	value = strings.TrimSpace(value)
	if !strings.HasPrefix(value, "{") {
		return value
	}
	depth := 0
	for i, ch := range value {
		switch ch {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return strings.TrimSpace(value[i+1:])
			}
		}
	}
	return value
}

func splitFirstWord(value string) (word, rest string) {
	value = strings.TrimSpace(value)
	if idx := strings.IndexAny(value, " \t\n"); idx != -1 {
		return value[:idx], strings.TrimSpace(value[idx:])
	}
	return value, ""
}

func stripCommentMarkers(raw string) string {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "/**")
	text = strings.TrimPrefix(text, "/*")
	text = strings.TrimSuffix(text, "*/")

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "*" {
			out = append(out, "")
			continue
		}
		if strings.HasPrefix(trimmed, "* ") {
			out = append(out, trimmed[2:])
			continue
		}
		if strings.HasPrefix(trimmed, "*") {
			out = append(out, trimmed[1:])
			continue
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
