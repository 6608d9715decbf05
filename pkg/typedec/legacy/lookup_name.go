// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package legacy resolves textual type names against overlaid type
// registries, as needed to decode chains whose metadata (dialects v8
// through v13) carries only type names. Names support generic
// parameters ("Vec<T>"), tuples ("(A, B)") and fixed arrays
// ("[u8; 32]"), and may be scoped to the pallet they were named in so
// that per-pallet registry entries can shadow global ones.
package legacy

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrParse is returned when a type name cannot be parsed.
var ErrParse = errors.New("cannot parse type name")

// LookupKind discriminates the syntactic form of a LookupName.
type LookupKind uint8

// Syntactic forms.
const (
	LookupNamed LookupKind = iota
	LookupTuple
	LookupArray
)

// LookupName is a parsed type name: the type identifier of the
// historic resolver.
type LookupName struct {
	Kind LookupKind

	// Base name and generic parameters of a named form. The base may
	// contain "::" separators ("hardcoded::ExtrinsicAddress").
	Name   string
	Params []LookupName

	// Element names of a tuple form.
	Tuple []LookupName

	// Element and length of an array form.
	Elem *LookupName
	Len  uint32

	// Pallet scope the name was mentioned in, if any. Pallet-scoped
	// registry entries shadow global ones during resolution.
	Pallet string
}

// ParseLookupName parses a type name. The whole input must be
// consumed.
func ParseLookupName(s string) (LookupName, error) {
	p := &nameParser{input: sanitizeName(s)}
	n, err := p.parse()
	if err != nil {
		return LookupName{}, fmt.Errorf("%w %q: %s", ErrParse, s, err)
	}
	p.skipSpaces()
	if p.pos != len(p.input) {
		return LookupName{}, fmt.Errorf("%w %q: trailing input at offset %d", ErrParse, s, p.pos)
	}
	return n, nil
}

// MustParseLookupName is ParseLookupName for statically known names.
func MustParseLookupName(s string) LookupName {
	n, err := ParseLookupName(s)
	if err != nil {
		panic(err)
	}
	return n
}

// InPallet returns a copy of the name scoped to the given pallet.
func (n LookupName) InPallet(pallet string) LookupName {
	n.Pallet = pallet
	return n
}

// String renders the canonical form of the name.
func (n LookupName) String() string {
	switch n.Kind {
	case LookupTuple:
		parts := make([]string, len(n.Tuple))
		for i, e := range n.Tuple {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case LookupArray:
		return fmt.Sprintf("[%s; %d]", n.Elem.String(), n.Len)
	default:
		if len(n.Params) == 0 {
			return n.Name
		}
		parts := make([]string, len(n.Params))
		for i, p := range n.Params {
			parts[i] = p.String()
		}
		return n.Name + "<" + strings.Join(parts, ", ") + ">"
	}
}

// Metadata type names occasionally contain newlines and doubled
// spaces left over from macro expansion.
func sanitizeName(s string) string {
	s = strings.ReplaceAll(s, "\n", "")
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	return strings.TrimSpace(s)
}

type nameParser struct {
	input string
	pos   int
}

func (p *nameParser) skipSpaces() {
	for p.pos < len(p.input) && p.input[p.pos] == ' ' {
		p.pos++
	}
}

func (p *nameParser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *nameParser) expect(c byte) error {
	p.skipSpaces()
	if p.peek() != c {
		return fmt.Errorf("expected %q at offset %d", string(c), p.pos)
	}
	p.pos++
	return nil
}

func (p *nameParser) parse() (LookupName, error) {
	p.skipSpaces()
	switch p.peek() {
	case '(':
		return p.parseTuple()
	case '[':
		return p.parseArray()
	default:
		return p.parseNamed()
	}
}

func (p *nameParser) parseTuple() (LookupName, error) {
	p.pos++ // consume '('
	out := LookupName{Kind: LookupTuple}
	p.skipSpaces()
	if p.peek() == ')' {
		p.pos++
		return out, nil
	}
	for {
		elem, err := p.parse()
		if err != nil {
			return LookupName{}, err
		}
		out.Tuple = append(out.Tuple, elem)
		p.skipSpaces()
		switch p.peek() {
		case ',':
			p.pos++
		case ')':
			p.pos++
			return out, nil
		default:
			return LookupName{}, fmt.Errorf("expected ',' or ')' at offset %d", p.pos)
		}
	}
}

func (p *nameParser) parseArray() (LookupName, error) {
	p.pos++ // consume '['
	elem, err := p.parse()
	if err != nil {
		return LookupName{}, err
	}
	if err := p.expect(';'); err != nil {
		return LookupName{}, err
	}
	p.skipSpaces()
	start := p.pos
	for p.pos < len(p.input) && p.input[p.pos] >= '0' && p.input[p.pos] <= '9' {
		p.pos++
	}
	if start == p.pos {
		return LookupName{}, fmt.Errorf("expected array length at offset %d", p.pos)
	}
	length, err := strconv.ParseUint(p.input[start:p.pos], 10, 32)
	if err != nil {
		return LookupName{}, err
	}
	if err := p.expect(']'); err != nil {
		return LookupName{}, err
	}
	return LookupName{Kind: LookupArray, Elem: &elem, Len: uint32(length)}, nil
}

func isIdentByte(c byte) bool {
	return c == '_' || c == ':' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func (p *nameParser) parseNamed() (LookupName, error) {
	start := p.pos
	for p.pos < len(p.input) && isIdentByte(p.input[p.pos]) {
		p.pos++
	}
	if start == p.pos {
		return LookupName{}, fmt.Errorf("expected a type name at offset %d", p.pos)
	}
	out := LookupName{Kind: LookupNamed, Name: p.input[start:p.pos]}
	p.skipSpaces()
	if p.peek() != '<' {
		return out, nil
	}
	p.pos++ // consume '<'
	for {
		param, err := p.parse()
		if err != nil {
			return LookupName{}, err
		}
		out.Params = append(out.Params, param)
		p.skipSpaces()
		switch p.peek() {
		case ',':
			p.pos++
		case '>':
			p.pos++
			return out, nil
		default:
			return LookupName{}, fmt.Errorf("expected ',' or '>' at offset %d", p.pos)
		}
	}
}
