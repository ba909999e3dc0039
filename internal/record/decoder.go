package record

import (
	"fmt"
	"log"
	"math"
	"reflect"
	"strconv"
)

const (
	sentinelStartClass = "StartClass"
	sentinelEndClass   = "EndClass"
	sentinelClassName  = "ClassName"
)

// UnknownFunc receives attribute pairs that do not match any declared
// field of the record type currently being decoded — flattened dotted
// names (mStageOffsetMicrons.mX) and polymorphic vertex arrays land here.
type UnknownFunc func(key string, e Entry) error

// FindNextClass locates the next StartClass entry at or after i without
// consuming it, returning the nested ClassName and its position. Used by
// DecodeChannelRecords to dispatch between the manipulation record types
// that may follow a channel.
func FindNextClass(entries []Entry, i int) (className string, pos int, ok bool) {
	for ; i < len(entries); i++ {
		e := entries[i]
		if e.Key == sentinelEndClass {
			return "", i, false
		}
		if e.Key == sentinelStartClass {
			if len(e.Nested) == 0 || e.Nested[0].Key != sentinelClassName {
				return "", i, false
			}
			return e.Nested[0].Scalar, i, true
		}
	}
	return "", i, false
}

// DecodeClass implements the sentinel-delimited record scan: skip forward to
// the next StartClass (failing if EndClass is hit first), confirm the
// nested ClassName matches className, coerce each subsequent attribute
// pair into target's declared fields via fields, forward anything
// unmatched to unknown, and stop at the matching EndClass.
//
// matched is false, with i unchanged, both when the document runs out
// and when a StartClass is found but names a different class — callers
// dispatching between sibling types rely on this to try the next one.
func DecodeClass(entries []Entry, i int, className string, fields FieldTable, target reflect.Value, unknown UnknownFunc) (next int, matched bool, err error) {
	start := i
	for i < len(entries) {
		e := entries[i]
		if e.Key == sentinelEndClass {
			return start, false, nil
		}
		if e.Key == sentinelStartClass {
			break
		}
		i++
	}
	if i >= len(entries) {
		return start, false, nil
	}

	sc := entries[i]
	if len(sc.Nested) == 0 || sc.Nested[0].Key != sentinelClassName {
		return start, false, fmt.Errorf("%w: StartClass missing ClassName", ErrFormat)
	}
	if sc.Nested[0].Scalar != className {
		return start, false, nil
	}
	i++

	for _, extra := range sc.Nested[1:] {
		if err := applyEntry(extra, fields, target, unknown); err != nil {
			return i, true, err
		}
	}

	for i < len(entries) {
		e := entries[i]
		if e.Key == sentinelEndClass {
			return i + 1, true, nil
		}
		if err := applyEntry(e, fields, target, unknown); err != nil {
			return i, true, err
		}
		i++
	}

	return i, true, fmt.Errorf("%w: %s missing EndClass", ErrClassMissing, className)
}

func applyEntry(e Entry, fields FieldTable, target reflect.Value, unknown UnknownFunc) error {
	idx, ok := fields[e.Key]
	if !ok {
		if unknown != nil {
			return unknown(e.Key, e)
		}
		return nil
	}
	return coerceField(target.Field(idx), e)
}

// coerceField converts e's scalar/sequence value into field per its
// declared Go type. A signed-32-bit overflow never aborts decoding: it
// is logged and the field is left at its zero value, tolerating source
// streams that encode some fields as unsigned 32-bit magnitudes.
func coerceField(field reflect.Value, e Entry) error {
	if field.Kind() == reflect.Slice {
		return coerceVector(field, e)
	}

	switch field.Kind() {
	case reflect.Int32:
		v, ok := parseInt32(e.Scalar)
		if !ok {
			log.Printf("record: field overflows int32, leaving default: %q", e.Scalar)
			return nil
		}
		field.SetInt(int64(v))
	case reflect.Int64:
		v, err := strconv.ParseInt(e.Scalar, 10, 64)
		if err != nil {
			log.Printf("record: coercion failed for int64 field: %q", e.Scalar)
			return nil
		}
		field.SetInt(v)
	case reflect.Float32:
		v, err := strconv.ParseFloat(e.Scalar, 32)
		if err != nil {
			log.Printf("record: coercion failed for float32 field: %q", e.Scalar)
			return nil
		}
		field.SetFloat(v)
	case reflect.Float64:
		v, err := strconv.ParseFloat(e.Scalar, 64)
		if err != nil {
			log.Printf("record: coercion failed for float64 field: %q", e.Scalar)
			return nil
		}
		field.SetFloat(v)
	case reflect.Bool:
		v, err := strconv.ParseBool(e.Scalar)
		if err != nil {
			log.Printf("record: coercion failed for bool field: %q", e.Scalar)
			return nil
		}
		field.SetBool(v)
	case reflect.String:
		field.SetString(Unescape(e.Scalar))
	default:
		log.Printf("record: no coercion rule for field kind %s", field.Kind())
	}
	return nil
}

// parseInt32 reports whether scalar fits the signed 32-bit range. It
// parses as int64 first so an unsigned-32-bit magnitude (which fits
// int64 but not int32) is detected rather than silently wrapping.
func parseInt32(scalar string) (int32, bool) {
	v, err := strconv.ParseInt(scalar, 10, 64)
	if err != nil {
		return 0, false
	}
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, false
	}
	return int32(v), true
}

// coerceVector decodes a count-prefixed sequence leaf into field, a
// slice of int32/int64/float32/float64/bool/string. The returned vector
// always has length len(e.Seq) (the actual element count); a mismatch
// against e.StatedLen is logged, never silently truncated or padded.
func coerceVector(field reflect.Value, e Entry) error {
	if e.Kind != KindSequence {
		log.Printf("record: field %s expects a sequence, got scalar", field.Type())
		return nil
	}

	if e.StatedLen != len(e.Seq) {
		log.Printf("record: vector length mismatch: stated %d, actual %d", e.StatedLen, len(e.Seq))
	}

	elemType := field.Type().Elem()
	out := reflect.MakeSlice(field.Type(), len(e.Seq), len(e.Seq))

	for i, raw := range e.Seq {
		elem := out.Index(i)
		switch elemType.Kind() {
		case reflect.Int32:
			v, ok := parseInt32(raw)
			if !ok {
				log.Printf("record: vector element overflows int32, leaving default: %q", raw)
				continue
			}
			elem.SetInt(int64(v))
		case reflect.Int64:
			v, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				continue
			}
			elem.SetInt(v)
		case reflect.Float32:
			v, err := strconv.ParseFloat(raw, 32)
			if err != nil {
				continue
			}
			elem.SetFloat(v)
		case reflect.Float64:
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				continue
			}
			elem.SetFloat(v)
		case reflect.Bool:
			v, err := strconv.ParseBool(raw)
			if err != nil {
				continue
			}
			elem.SetBool(v)
		case reflect.String:
			elem.SetString(Unescape(raw))
		}
	}

	field.Set(out)
	return nil
}
