// Package record implements the structured key/value document decoder:
// it turns a parsed document tree into an ordered stream of Entry values
// and, from that stream, materialises strongly typed records delimited
// by StartClass/EndClass sentinels.
package record

import (
	"gopkg.in/yaml.v3"
)

// EntryKind classifies the shape of an Entry's value.
type EntryKind int

const (
	// KindScalar is a single string value, to be coerced per the
	// destination field's declared type.
	KindScalar EntryKind = iota
	// KindSequence is a count-prefixed list of scalars.
	KindSequence
	// KindNested is itself an ordered list of Entry values — used only
	// for a StartClass entry's inline {ClassName, ...} mapping.
	KindNested
)

// Entry is one key/value pair in the ordered document stream.
type Entry struct {
	Key  string
	Kind EntryKind

	// Scalar holds the raw (still-escaped) value for KindScalar.
	Scalar string

	// StatedLen is the sequence's declared count (its first element);
	// Seq holds the actual remaining elements, whose length may differ.
	StatedLen int
	Seq       []string

	// Nested holds the sub-entries for KindNested (a StartClass's own
	// {ClassName: ..., ...} mapping value).
	Nested []Entry
}

// Parse decodes a document's bytes into the ordered Entry stream it
// represents. The document is a YAML *sequence* of single- (or, for
// StartClass, few-) pair mappings rather than a single YAML mapping: the
// source format repeats sentinel keys (StartClass/EndClass) many times
// per document, which would violate ordinary YAML mapping-key
// uniqueness. Decoding through yaml.Node rather than into a Go struct
// is what lets duplicate keys survive intact, in declaration order. A
// document authored as one flat mapping is also accepted.
func Parse(data []byte) ([]Entry, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	if len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.SequenceNode {
		// Tolerate a document authored as one flat mapping too.
		if root.Kind == yaml.MappingNode {
			return parseMapping(root)
		}
		return nil, nil
	}

	entries := make([]Entry, 0, len(root.Content))
	for _, item := range root.Content {
		if item.Kind != yaml.MappingNode {
			continue
		}
		sub, err := parseMapping(item)
		if err != nil {
			return nil, err
		}
		entries = append(entries, sub...)
	}

	return entries, nil
}

// parseMapping walks a MappingNode's Content pairs in order, producing
// one Entry per pair.
func parseMapping(m *yaml.Node) ([]Entry, error) {
	entries := make([]Entry, 0, len(m.Content)/2)
	for i := 0; i+1 < len(m.Content); i += 2 {
		key := m.Content[i].Value
		val := m.Content[i+1]

		e := Entry{Key: key}
		switch val.Kind {
		case yaml.MappingNode:
			nested, err := parseMapping(val)
			if err != nil {
				return nil, err
			}
			e.Kind = KindNested
			e.Nested = nested
		case yaml.SequenceNode:
			e.Kind = KindSequence
			e.StatedLen, e.Seq = parseSequence(val)
		default:
			e.Kind = KindScalar
			e.Scalar = val.Value
		}

		entries = append(entries, e)
	}
	return entries, nil
}

// parseSequence splits a count-prefixed sequence node into its declared
// length and the actual elements following it.
func parseSequence(seq *yaml.Node) (int, []string) {
	if len(seq.Content) == 0 {
		return 0, nil
	}

	stated := atoiLoose(seq.Content[0].Value)
	rest := make([]string, 0, len(seq.Content)-1)
	for _, c := range seq.Content[1:] {
		rest = append(rest, c.Value)
	}
	return stated, rest
}

func atoiLoose(s string) int {
	n := 0
	neg := false
	for i, r := range s {
		if i == 0 && r == '-' {
			neg = true
			continue
		}
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	if neg {
		return -n
	}
	return n
}
