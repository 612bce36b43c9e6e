package schema

import (
	"strings"
	"unicode"
)

// DefinitionMatcher inspects raw table definition text for facts that structural
// introspection cannot express. Each store dialect supplies its own.
type DefinitionMatcher interface {
	// HasIdentifier reports whether name appears as an identifier in the definition.
	HasIdentifier(definition, name string) bool
	// EnumValues returns the literal value list constraining column, either a
	// CHECK (column IN (...)) clause or an inline enum(...) type. ok is false when
	// no such list exists.
	EnumValues(definition, column string) (values []string, ok bool)
}

// TokenMatcher is a DefinitionMatcher working on a token stream rather than
// substrings, so "teacher" never matches inside "teacher_id" or a string literal.
type TokenMatcher struct {
	// Quotes maps an opening identifier quote to its closing rune.
	Quotes map[rune]rune
}

// NewTokenMatcher returns a matcher that treats the given pairs as identifier quotes.
func NewTokenMatcher(pairs ...[2]rune) *TokenMatcher {
	m := &TokenMatcher{Quotes: make(map[rune]rune, len(pairs))}
	for _, p := range pairs {
		m.Quotes[p[0]] = p[1]
	}
	return m
}

func (m *TokenMatcher) HasIdentifier(definition, name string) bool {
	for _, tok := range m.tokenize(definition) {
		if tok.kind == tokIdent && strings.EqualFold(tok.text, name) {
			return true
		}
	}
	return false
}

func (m *TokenMatcher) EnumValues(definition, column string) ([]string, bool) {
	toks := m.tokenize(definition)
	for i := 0; i < len(toks); i++ {
		if toks[i].kind != tokIdent || !strings.EqualFold(toks[i].text, column) {
			continue
		}
		// Skip wrapping parentheses, e.g. CHECK ((`role` in (...))).
		j := i + 1
		for j < len(toks) && toks[j].is(")") {
			j++
		}
		if j >= len(toks) || toks[j].kind != tokIdent {
			continue
		}
		kw := strings.ToLower(toks[j].text)
		if kw != "in" && kw != "enum" {
			continue
		}
		if values, ok := literalList(toks, j+1); ok {
			return values, true
		}
	}
	return nil, false
}

// literalList parses "( lit , lit ... )" starting at toks[start].
func literalList(toks []token, start int) ([]string, bool) {
	if start >= len(toks) || !toks[start].is("(") {
		return nil, false
	}
	var values []string
	for i := start + 1; i < len(toks); i++ {
		tok := toks[i]
		switch {
		case tok.is(")"):
			return values, len(values) > 0
		case tok.is(","):
		case tok.kind == tokString, tok.kind == tokNumber:
			values = append(values, tok.text)
		case tok.kind == tokIdent && strings.HasPrefix(tok.text, "_") && !tok.quoted:
			// charset introducer such as _utf8mb4'ADMIN'
		default:
			return nil, false
		}
	}
	return nil, false
}

type tokKind int

const (
	tokIdent tokKind = iota
	tokString
	tokNumber
	tokPunct
)

type token struct {
	kind   tokKind
	text   string
	quoted bool
}

func (t token) is(p string) bool {
	return t.kind == tokPunct && t.text == p
}

func (m *TokenMatcher) tokenize(s string) []token {
	var toks []token
	rs := []rune(s)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '-' && i+1 < len(rs) && rs[i+1] == '-':
			for i < len(rs) && rs[i] != '\n' {
				i++
			}
		case r == '\'':
			text, next := readQuoted(rs, i, '\'')
			toks = append(toks, token{kind: tokString, text: text})
			i = next
		case m.Quotes[r] != 0:
			text, next := readQuoted(rs, i, m.Quotes[r])
			toks = append(toks, token{kind: tokIdent, text: text, quoted: true})
			i = next
		case unicode.IsLetter(r) || r == '_':
			j := i
			for j < len(rs) && (unicode.IsLetter(rs[j]) || unicode.IsDigit(rs[j]) || rs[j] == '_' || rs[j] == '$') {
				j++
			}
			toks = append(toks, token{kind: tokIdent, text: string(rs[i:j])})
			i = j
		case unicode.IsDigit(r):
			j := i
			for j < len(rs) && (unicode.IsDigit(rs[j]) || rs[j] == '.') {
				j++
			}
			toks = append(toks, token{kind: tokNumber, text: string(rs[i:j])})
			i = j
		default:
			toks = append(toks, token{kind: tokPunct, text: string(r)})
			i++
		}
	}
	return toks
}

// readQuoted reads a quoted run starting at rs[start], where a doubled closing
// rune is an escaped literal. It returns the unquoted text and the index after it.
func readQuoted(rs []rune, start int, closing rune) (string, int) {
	var b strings.Builder
	i := start + 1
	for i < len(rs) {
		if rs[i] == closing {
			if i+1 < len(rs) && rs[i+1] == closing {
				b.WriteRune(closing)
				i += 2
				continue
			}
			return b.String(), i + 1
		}
		b.WriteRune(rs[i])
		i++
	}
	return b.String(), i
}
