package wikitext

import (
	"regexp"
	"strings"
)

type TokenKind int

const (
	TokenText TokenKind = iota
	TokenLink
	TokenExtLink
	TokenHeading
	TokenTemplate
	TokenFormat
	TokenTag
	TokenListItem
	TokenComment
)

// Token is one segment of a wikitext document.
type Token struct {
	Kind        TokenKind
	Text        string // raw source of the token
	Target      string // Link target page, or ExtLink URL
	Label       string // Link/ExtLink display text, Template body, Heading title
	Level       int    // Heading level, Format quote count, ListItem depth
	Name        string // Tag name, lowercased
	Closing     bool
	SelfClosing bool
}

// Tokenizer yields a flat, finite sequence of wikitext segments. It never
// fails: markup that does not parse comes back as plain text.
type Tokenizer struct {
	src       string
	pos       int
	lineStart bool
}

func Tokenize(src string) *Tokenizer {
	return &Tokenizer{src: src, lineStart: true}
}

// Reset rewinds the tokenizer to the start of its input.
func (t *Tokenizer) Reset() {
	t.pos = 0
	t.lineStart = true
}

// Next returns the next token, or false at end of input.
func (t *Tokenizer) Next() (Token, bool) {
	if t.pos >= len(t.src) {
		return Token{}, false
	}

	if t.lineStart {
		if tok, ok := t.heading(); ok {
			return tok, true
		}
		if tok, ok := t.listItem(); ok {
			return tok, true
		}
		t.lineStart = false
	}

	rest := t.src[t.pos:]
	switch {
	case strings.HasPrefix(rest, "<!--"):
		return t.comment(), true
	case strings.HasPrefix(rest, "{{"):
		if tok, ok := t.template(); ok {
			return tok, true
		}
	case strings.HasPrefix(rest, "[["):
		if tok, ok := t.wikilink(); ok {
			return tok, true
		}
	case strings.HasPrefix(rest, "["):
		if tok, ok := t.externalLink(); ok {
			return tok, true
		}
	case strings.HasPrefix(rest, "''"):
		return t.quoteRun(), true
	case strings.HasPrefix(rest, "<"):
		if tok, ok := t.tag(); ok {
			return tok, true
		}
	}

	return t.text(), true
}

// currentLine returns the rest of the current line and the index just past
// it, excluding the newline.
func (t *Tokenizer) currentLine() (string, int) {
	if i := strings.IndexByte(t.src[t.pos:], '\n'); i >= 0 {
		return t.src[t.pos : t.pos+i], t.pos + i
	}
	return t.src[t.pos:], len(t.src)
}

func (t *Tokenizer) heading() (Token, bool) {
	line, eol := t.currentLine()
	trimmed := strings.TrimRight(line, " \t")
	if len(trimmed) < 3 || trimmed[0] != '=' || trimmed[len(trimmed)-1] != '=' {
		return Token{}, false
	}

	open := 0
	for open < len(trimmed) && trimmed[open] == '=' {
		open++
	}
	closing := 0
	for closing < len(trimmed) && trimmed[len(trimmed)-1-closing] == '=' {
		closing++
	}
	if open+closing >= len(trimmed) {
		// Nothing but equals signs.
		return Token{}, false
	}
	inner := strings.TrimSpace(trimmed[open : len(trimmed)-closing])
	if inner == "" {
		return Token{}, false
	}

	level := open
	if closing < level {
		level = closing
	}
	if level > 6 {
		level = 6
	}

	// The trailing newline stays in the stream as text.
	t.pos = eol
	t.lineStart = false
	return Token{Kind: TokenHeading, Text: line, Label: inner, Level: level}, true
}

func (t *Tokenizer) listItem() (Token, bool) {
	n := 0
	for t.pos+n < len(t.src) && t.src[t.pos+n] == '*' {
		n++
	}
	if n == 0 {
		return Token{}, false
	}
	start := t.pos
	t.pos += n
	if t.pos < len(t.src) && t.src[t.pos] == ' ' {
		t.pos++
	}
	t.lineStart = false
	return Token{Kind: TokenListItem, Text: t.src[start:t.pos], Level: n}, true
}

func (t *Tokenizer) comment() Token {
	rest := t.src[t.pos:]
	end := strings.Index(rest, "-->")
	if end < 0 {
		// Unterminated comment hides the rest of the document.
		tok := Token{Kind: TokenComment, Text: rest}
		t.pos = len(t.src)
		return tok
	}
	tok := Token{Kind: TokenComment, Text: rest[:end+3]}
	t.pos += end + 3
	return tok
}

func (t *Tokenizer) template() (Token, bool) {
	src := t.src
	depth := 0
	i := t.pos
	for i < len(src) {
		switch {
		case strings.HasPrefix(src[i:], "{{"):
			depth++
			i += 2
		case strings.HasPrefix(src[i:], "}}"):
			depth--
			i += 2
			if depth == 0 {
				full := src[t.pos:i]
				t.pos = i
				return Token{Kind: TokenTemplate, Text: full, Label: full[2 : len(full)-2]}, true
			}
		default:
			i++
		}
	}
	// Unbalanced braces degrade to text.
	return Token{}, false
}

func (t *Tokenizer) wikilink() (Token, bool) {
	src := t.src
	depth := 0
	i := t.pos
	for i < len(src) {
		switch {
		case strings.HasPrefix(src[i:], "[["):
			depth++
			i += 2
		case strings.HasPrefix(src[i:], "]]"):
			depth--
			i += 2
			if depth == 0 {
				full := src[t.pos:i]
				inner := full[2 : len(full)-2]
				target, label := inner, ""
				if p := strings.IndexByte(inner, '|'); p >= 0 {
					target, label = inner[:p], inner[p+1:]
				}
				t.pos = i
				return Token{Kind: TokenLink, Text: full, Target: strings.TrimSpace(target), Label: label}, true
			}
		default:
			i++
		}
	}
	return Token{}, false
}

var extLinkSchemes = []string{"http://", "https://", "ftp://", "//"}

func (t *Tokenizer) externalLink() (Token, bool) {
	rest := t.src[t.pos:]
	inner := rest[1:]
	hasScheme := false
	for _, s := range extLinkSchemes {
		if strings.HasPrefix(inner, s) {
			hasScheme = true
			break
		}
	}
	if !hasScheme {
		return Token{}, false
	}
	end := strings.IndexByte(inner, ']')
	if end < 0 || strings.Contains(inner[:end], "\n") {
		return Token{}, false
	}

	body := inner[:end]
	target, label := body, ""
	if sp := strings.IndexByte(body, ' '); sp >= 0 {
		target, label = body[:sp], strings.TrimSpace(body[sp+1:])
	}
	t.pos += end + 2
	return Token{Kind: TokenExtLink, Text: rest[:end+2], Target: target, Label: label}, true
}

func (t *Tokenizer) quoteRun() Token {
	n := 0
	for t.pos+n < len(t.src) && t.src[t.pos+n] == '\'' {
		n++
	}
	tok := Token{Kind: TokenFormat, Text: t.src[t.pos : t.pos+n], Level: n}
	t.pos += n
	return tok
}

var tagRe = regexp.MustCompile(`^<(/?)([a-zA-Z][a-zA-Z0-9]*)((?:\s[^<>]*?)?)(/?)>`)

func (t *Tokenizer) tag() (Token, bool) {
	m := tagRe.FindStringSubmatch(t.src[t.pos:])
	if m == nil {
		return Token{}, false
	}
	full := m[0]
	name := strings.ToLower(m[2])
	closing := m[1] == "/"
	selfClosing := m[4] == "/"

	// <ref> and <gallery> bodies are invisible in rendered prose.
	if (name == "ref" || name == "gallery") && !closing {
		if selfClosing {
			t.pos += len(full)
			return Token{Kind: TokenComment, Text: full, Name: name}, true
		}
		if end := indexCloseTag(t.src[t.pos:], name); end >= 0 {
			tok := Token{Kind: TokenComment, Text: t.src[t.pos : t.pos+end], Name: name}
			t.pos += end
			return tok, true
		}
		t.pos += len(full)
		return Token{Kind: TokenComment, Text: full, Name: name}, true
	}

	// <nowiki> content is literal text.
	if name == "nowiki" && !closing && !selfClosing {
		rest := t.src[t.pos+len(full):]
		if i := strings.Index(strings.ToLower(rest), "</nowiki>"); i >= 0 {
			tok := Token{Kind: TokenText, Text: rest[:i]}
			t.pos += len(full) + i + len("</nowiki>")
			return tok, true
		}
	}

	t.pos += len(full)
	return Token{Kind: TokenTag, Text: full, Name: name, Closing: closing, SelfClosing: selfClosing}, true
}

func indexCloseTag(s, name string) int {
	end := "</" + name + ">"
	if i := strings.Index(strings.ToLower(s), end); i >= 0 {
		return i + len(end)
	}
	return -1
}

func (t *Tokenizer) text() Token {
	src := t.src
	start := t.pos
	i := t.pos
	for i < len(src) {
		if src[i] == '\n' {
			i++
			t.lineStart = true
			break
		}
		if i > start && t.specialAt(i) {
			break
		}
		i++
	}
	t.pos = i
	return Token{Kind: TokenText, Text: src[start:i]}
}

func (t *Tokenizer) specialAt(i int) bool {
	src := t.src
	switch src[i] {
	case '{':
		return i+1 < len(src) && src[i+1] == '{'
	case '[', '<':
		return true
	case '\'':
		return i+1 < len(src) && src[i+1] == '\''
	}
	return false
}
