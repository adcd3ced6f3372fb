// Package wikitext renders MediaWiki wikitext as plain text or Markdown.
//
// Parsing is best-effort: the tokenizer degrades anything it cannot parse to
// literal text, so rendering always produces output for any input.
package wikitext
