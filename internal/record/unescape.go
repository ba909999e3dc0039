package record

import "strings"

// unescapeTable is the fixed substitution table applied, in order, to
// scalar string fields.
var unescapeTable = []struct{ trigger, replacement string }{
	{"_#9;", "\t"},
	{"_#10;", "\n"},
	{"_#13;", "\r"},
	{"_#34;", "\""},
	{"_#58;", ":"},
	{"_#92;", "\\"},
	{"_#91;", "["},
	{"_#93;", "]"},
	{"_#124;", "|"},
	{"_#60;", "<"},
	{"_#62;", ">"},
	{"_#32;", " "},
}

// Unescape restores special characters encoded with the "_#n;" scheme.
// A literal "__empty" collapses to the empty string. Idempotent on any
// string that does not itself contain one of the trigger substrings.
func Unescape(s string) string {
	if s == "__empty" {
		return ""
	}
	for _, sub := range unescapeTable {
		s = strings.ReplaceAll(s, sub.trigger, sub.replacement)
	}
	return s
}
