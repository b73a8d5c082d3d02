package rss

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	// SnippetLength is the number of characters kept from an entry's text.
	SnippetLength = 200

	// TruncationMarker is appended to every non-empty snippet.
	TruncationMarker = "..."
)

// breakingElements are tags whose boundaries separate words.
var breakingElements = map[atom.Atom]bool{
	atom.Br: true, atom.P: true, atom.Div: true, atom.Li: true, atom.Ul: true, atom.Ol: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Blockquote: true, atom.Section: true, atom.Table: true, atom.Tr: true, atom.Td: true,
}

// PlainText strips markup from an HTML fragment, decodes entities and
// collapses whitespace runs into single spaces.
func PlainText(fragment string) string {
	if fragment == "" {
		return ""
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(fragment))
	skip := 0

	for {
		switch z.Next() {
		case html.ErrorToken:
			return collapseSpace(b.String())
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken, html.EndTagToken:
			tok := z.Token()
			if tok.DataAtom == atom.Script || tok.DataAtom == atom.Style {
				if tok.Type == html.StartTagToken {
					skip++
				} else if tok.Type == html.EndTagToken && skip > 0 {
					skip--
				}
				continue
			}
			if breakingElements[tok.DataAtom] {
				b.WriteByte(' ')
			}
		}
	}
}

// Snippet returns the first SnippetLength characters of text followed by the
// truncation marker, or "" when text is empty.
func Snippet(text string) string {
	if text == "" {
		return ""
	}

	runes := []rune(text)
	if len(runes) > SnippetLength {
		runes = runes[:SnippetLength]
	}
	return string(runes) + TruncationMarker
}

func collapseSpace(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}
