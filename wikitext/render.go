package wikitext

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

// Mode selects the output format. It is resolved once at the caller's
// boundary; raw takes precedence over markdown and summary flags.
type Mode int

const (
	ModePlain Mode = iota
	ModeMarkdown
	ModeRaw
)

func (m Mode) String() string {
	switch m {
	case ModeMarkdown:
		return "markdown"
	case ModeRaw:
		return "raw"
	default:
		return "plain"
	}
}

// ResolveMode collapses the CLI's format flags into a single Mode.
func ResolveMode(raw, markdown bool) Mode {
	switch {
	case raw:
		return ModeRaw
	case markdown:
		return ModeMarkdown
	default:
		return ModePlain
	}
}

// Options control one rendering pass.
type Options struct {
	Mode        Mode
	SummaryOnly bool
	// LinkBase is the api.php URL used to build article-view links in
	// markdown mode. Empty drops links and keeps their labels.
	LinkBase string
	// SourceURL is appended as the trailing output line in plain and
	// markdown modes.
	SourceURL string
}

// Output is the rendered article.
type Output struct {
	Body      string
	SourceURL string
}

var (
	// Limit consecutive newlines to 2 in a row; stripped invisible items
	// (templates, categories, refs) leave a lot of empty space otherwise.
	collapseRe  = regexp.MustCompile(`\s+?\n\s+?\n\s+`)
	paraBreakRe = regexp.MustCompile(`\n[ \t]*\n`)
)

// Render converts wikitext to the requested format. It never fails:
// unparseable markup passes through as literal text.
func Render(src string, opts Options) Output {
	if opts.Mode == ModeRaw {
		return Output{Body: src, SourceURL: opts.SourceURL}
	}

	r := renderer{opts: opts}
	tz := Tokenize(src)
	for {
		tok, ok := tz.Next()
		if !ok {
			break
		}
		if opts.SummaryOnly && tok.Kind == TokenHeading {
			break
		}
		r.writeToken(tok)
	}

	body := strings.TrimSpace(collapseRe.ReplaceAllString(r.out.String(), "\n\n"))
	if opts.SummaryOnly {
		if loc := paraBreakRe.FindStringIndex(body); loc != nil {
			body = strings.TrimSpace(body[:loc[0]])
		}
	}
	if opts.SourceURL != "" {
		if body == "" {
			body = opts.SourceURL
		} else {
			body += "\n" + opts.SourceURL
		}
	}
	return Output{Body: body, SourceURL: opts.SourceURL}
}

// ArticleURL builds the article-view URL for a page title from an api.php
// base, using the sibling index.php convention.
func ArticleURL(apiBase, title string) string {
	u, err := url.Parse(apiBase)
	if err != nil {
		return ""
	}
	u.Path = path.Join(path.Dir(u.Path), "index.php")
	u.RawQuery = url.Values{"title": {title}}.Encode()
	u.Fragment = ""
	return u.String()
}

type renderer struct {
	opts Options
	out  strings.Builder
}

func (r *renderer) writeToken(tok Token) {
	switch tok.Kind {
	case TokenText:
		r.out.WriteString(tok.Text)
	case TokenHeading:
		title := strings.TrimSpace(r.fragment(tok.Label))
		if r.opts.Mode == ModeMarkdown {
			r.out.WriteString(strings.Repeat("#", tok.Level) + " " + title)
		} else {
			r.out.WriteString(title)
		}
	case TokenTemplate:
		// Transclusions are not expanded; only a bare inline-text body
		// survives.
		if isPlainInline(tok.Label) {
			r.out.WriteString(tok.Label)
		}
	case TokenLink:
		r.writeLink(tok)
	case TokenExtLink:
		if tok.Label != "" {
			r.out.WriteString(r.fragment(tok.Label))
		} else {
			r.out.WriteString(tok.Target)
		}
	case TokenFormat:
		if r.opts.Mode != ModeMarkdown {
			return
		}
		switch tok.Level {
		case 2:
			r.out.WriteString("*")
		case 3:
			r.out.WriteString("**")
		case 5:
			r.out.WriteString("***")
		default:
			r.out.WriteString(tok.Text)
		}
	case TokenTag:
		r.writeTag(tok)
	case TokenListItem:
		r.out.WriteString(strings.Repeat("  ", tok.Level-1) + "* ")
	case TokenComment:
		// invisible
	}
}

func (r *renderer) writeLink(tok Token) {
	lower := strings.ToLower(tok.Target)
	if strings.HasPrefix(lower, "category:") {
		// Categories are invisible in page content.
		return
	}
	isFile := strings.HasPrefix(lower, "file:") || strings.HasPrefix(lower, "image:")

	label := tok.Label
	if label == "" {
		label = tok.Target
	}

	if r.opts.Mode != ModeMarkdown {
		if isFile {
			return
		}
		r.out.WriteString(r.fragment(label))
		return
	}

	if isFile {
		if r.opts.LinkBase == "" {
			return
		}
		name := strings.TrimSpace(tok.Target[strings.IndexByte(tok.Target, ':')+1:])
		r.out.WriteString("![](" + ArticleURL(r.opts.LinkBase, "Special:Filepath/"+name) + ")")
		return
	}
	if r.opts.LinkBase == "" {
		r.out.WriteString(r.fragment(label))
		return
	}
	r.out.WriteString("[" + r.fragment(label) + "](" + ArticleURL(r.opts.LinkBase, tok.Target) + ")")
}

var tagMarkdown = map[string]string{
	"b":      "**",
	"strong": "**",
	// "_" is also accepted for italics, except inside words, so * is more
	// general.
	"i":      "*",
	"em":     "*",
	"strike": "~~",
	"s":      "~~",
	"del":    "~~",
}

func (r *renderer) writeTag(tok Token) {
	if tok.Name == "ref" || tok.Name == "gallery" {
		return
	}
	if r.opts.Mode != ModeMarkdown {
		// Plain mode keeps tag contents, never the markers.
		return
	}
	if md, ok := tagMarkdown[tok.Name]; ok {
		r.out.WriteString(md)
		return
	}
	// Other HTML tags are kept as-is.
	r.out.WriteString(tok.Text)
}

// fragment renders an inline snippet (a link label or heading title) with
// the same mode but no summary or URL handling.
func (r *renderer) fragment(src string) string {
	sub := renderer{opts: Options{Mode: r.opts.Mode, LinkBase: r.opts.LinkBase}}
	tz := Tokenize(src)
	for {
		tok, ok := tz.Next()
		if !ok {
			break
		}
		sub.writeToken(tok)
	}
	return sub.out.String()
}

// isPlainInline reports whether a template body is a single line of plain
// text with no nested markup.
func isPlainInline(body string) bool {
	if strings.TrimSpace(body) == "" {
		return false
	}
	return !strings.ContainsAny(body, "{[|=<\n")
}
