// Package textnorm title-cases human-facing descriptions (route names,
// stop names, calendar summaries) while preserving known acronyms such as
// YMCA or PH that should stay upper-case.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// acronyms lists tokens that should never be title-cased. Matching is
// case-insensitive; the canonical (upper-case) spelling is substituted.
var acronyms = map[string]string{
	"YMCA": "YMCA",
	"PH":   "PH",
	"NHS":  "NHS",
	"BBC":  "BBC",
	"UK":   "UK",
}

var titleCaser = cases.Title(language.BritishEnglish)

// TitleCase title-cases s word by word, leaving any token that matches a
// known acronym (case-insensitively) in its canonical upper-case form.
func TitleCase(s string) string {
	if s == "" {
		return s
	}
	tokens := tokenise(s)
	var b strings.Builder
	for _, tok := range tokens {
		if canonical, ok := acronyms[strings.ToUpper(tok.text)]; ok {
			b.WriteString(canonical)
			continue
		}
		if tok.isWord {
			b.WriteString(titleCaser.String(strings.ToLower(tok.text)))
		} else {
			b.WriteString(tok.text)
		}
	}
	return b.String()
}

type token struct {
	text   string
	isWord bool
}

// tokenise splits s into word and non-word runs, preserving every byte of
// the original string across the concatenation of token.text values.
func tokenise(s string) []token {
	var tokens []token
	var cur strings.Builder
	var curIsWord bool
	first := true

	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, token{text: cur.String(), isWord: curIsWord})
			cur.Reset()
		}
	}

	for _, r := range s {
		isWord := unicode.IsLetter(r) || unicode.IsDigit(r)
		if first {
			curIsWord = isWord
			first = false
		}
		if isWord != curIsWord {
			flush()
			curIsWord = isWord
		}
		cur.WriteRune(r)
	}
	flush()
	return tokens
}
