// Package javadoc parses raw Javadoc comment blocks into structured form.
//
// The parser is line based rather than grammar based: it strips the comment
// frame, splits the free-text description from the @tag section, and folds
// multi-line tag bodies. Inline {@code}, {@link} and {@linkplain} tags are
// reduced to their text; <pre>{@code ...}</pre> blocks are collected as
// examples before HTML stripping.
package javadoc

import (
	"regexp"
	"strings"

	"github.com/javadexlabs/javadex/internal/model"
)

var (
	inlineTagRe = regexp.MustCompile(`\{@(?:code|link|linkplain|literal|value)\s*([^}]*)\}`)
	htmlTagRe   = regexp.MustCompile(`<[^>]+>`)
	exampleRe   = regexp.MustCompile(`(?s)<pre>\s*\{@code(.*?)\}\s*</pre>`)
	wsRe        = regexp.MustCompile(`[ \t]+`)
)

// Parse converts a raw Javadoc comment (with or without the /** */ frame)
// into a structured model.Javadoc. It returns nil when the comment carries
// no content.
func Parse(raw string) *model.Javadoc {
	body := stripFrame(raw)
	if strings.TrimSpace(body) == "" {
		return nil
	}

	doc := &model.Javadoc{}
	for _, m := range exampleRe.FindAllStringSubmatch(body, -1) {
		if code := trimIndent(m[1]); code != "" {
			doc.Examples = append(doc.Examples, code)
		}
	}

	descLines, tags := splitTags(body)

	description := cleanText(strings.Join(descLines, "\n"))
	doc.Description = description
	doc.Summary = firstSentence(description)

	for _, tag := range tags {
		applyTag(doc, tag.name, cleanText(tag.body))
	}

	if doc.IsEmpty() {
		return nil
	}
	return doc
}

// tag is one @name body pair with its continuation lines already folded in.
type tag struct {
	name string
	body string
}

// stripFrame removes the /** */ delimiters and the leading asterisk gutter.
func stripFrame(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "/**")
	s = strings.TrimPrefix(s, "/*")
	s = strings.TrimSuffix(s, "*/")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "*")
		if strings.HasPrefix(line, " ") {
			line = line[1:]
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

// splitTags separates the leading description from the @tag section,
// folding each tag's continuation lines into a single body.
func splitTags(body string) ([]string, []tag) {
	var desc []string
	var tags []tag

	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "@") {
			name, rest := trimmed, ""
			if i := strings.IndexAny(trimmed, " \t"); i >= 0 {
				name, rest = trimmed[:i], strings.TrimSpace(trimmed[i+1:])
			}
			tags = append(tags, tag{name: strings.TrimPrefix(name, "@"), body: rest})
			continue
		}
		if len(tags) > 0 {
			if trimmed != "" {
				last := &tags[len(tags)-1]
				if last.body == "" {
					last.body = trimmed
				} else {
					last.body += " " + trimmed
				}
			}
			continue
		}
		desc = append(desc, line)
	}
	return desc, tags
}

func applyTag(doc *model.Javadoc, name, body string) {
	switch name {
	case "param":
		pname, pdesc := splitFirstWord(body)
		if pname == "" {
			return
		}
		if doc.Params == nil {
			doc.Params = make(map[string]string)
		}
		doc.Params[pname] = pdesc
	case "return", "returns":
		doc.Returns = body
	case "throws", "exception":
		ename, edesc := splitFirstWord(body)
		if ename == "" {
			return
		}
		if doc.Throws == nil {
			doc.Throws = make(map[string]string)
		}
		doc.Throws[ename] = edesc
	case "see":
		if body != "" {
			doc.See = append(doc.See, body)
		}
	case "since":
		doc.Since = body
	case "deprecated":
		if body == "" {
			body = "deprecated"
		}
		doc.Deprecated = body
	case "author":
		if body != "" {
			doc.Authors = append(doc.Authors, body)
		}
	}
}

func splitFirstWord(s string) (string, string) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i], strings.TrimSpace(s[i+1:])
	}
	return s, ""
}

// cleanText reduces inline tags to their text, drops HTML markup and
// collapses runs of spaces. Newlines inside a description collapse too;
// Javadoc treats them as soft wraps.
func cleanText(s string) string {
	s = inlineTagRe.ReplaceAllString(s, "$1")
	s = htmlTagRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "\n", " ")
	s = wsRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// firstSentence returns the text up to and including the first period that
// ends a sentence, or the whole text when none is found.
func firstSentence(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] != '.' {
			continue
		}
		if i+1 == len(s) || s[i+1] == ' ' {
			return s[:i+1]
		}
	}
	return s
}

// trimIndent trims a code example while preserving its internal line breaks.
func trimIndent(s string) string {
	lines := strings.Split(strings.Trim(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
