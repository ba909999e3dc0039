package record

import (
	"reflect"

	stgpsr "github.com/yuin/stagparser"
)

// FieldTable maps a document attribute key to the index of the struct
// field it fills. Built once per record type at package init: a
// compile-time-ish table instead of per-call reflection probing by
// field name.
type FieldTable map[string]int

// BuildFieldTable inspects every exported field of an instance of T for
// an `sldy:"key=<AttributeName>"` tag, using stagparser for the tag
// parsing. A field without the tag falls back to its own Go name as the
// attribute key.
func BuildFieldTable(instance any) FieldTable {
	table := make(FieldTable)

	t := reflect.TypeOf(instance)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	defs, _ := stgpsr.ParseStruct(instance, "sldy")

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		key := field.Name
		for _, def := range defs[field.Name] {
			if def.Name() == "key" {
				if attr, ok := def.Attribute("key"); ok {
					key = attr
				}
			}
		}

		table[key] = i
	}

	return table
}
