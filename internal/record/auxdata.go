package record

import (
	"fmt"
	"reflect"
)

// AuxXMLDescriptor is an opaque descriptor string carried alongside an
// auxiliary data table. Its contents are not interpreted.
type AuxXMLDescriptor struct {
	Descriptor string `sldy:"key=mDescriptor"`
}

var auxXMLDescriptorFields = BuildFieldTable(AuxXMLDescriptor{})

// AuxFloatTable pairs a descriptor with a float32 payload.
type AuxFloatTable struct {
	Descriptor string
	Data       []float32
}

// AuxDoubleTable pairs a descriptor with a float64 payload.
type AuxDoubleTable struct {
	Descriptor string
	Data       []float64
}

// AuxInt32Table pairs a descriptor with an int32 payload.
type AuxInt32Table struct {
	Descriptor string
	Data       []int32
}

// AuxInt64Table pairs a descriptor with an int64 payload.
type AuxInt64Table struct {
	Descriptor string
	Data       []int64
}

// AuxXMLTable pairs a descriptor with a serialized-XML payload. Neither
// field is parsed as XML by this decoder.
type AuxXMLTable struct {
	Descriptor string
	XML        string
}

// AuxData is the five homogeneous auxiliary table lists that may follow
// a capture's metadata, each an arbitrary-length run of (descriptor,
// payload) pairs.
type AuxData struct {
	Float  []AuxFloatTable
	Double []AuxDoubleTable
	Int32  []AuxInt32Table
	Int64  []AuxInt64Table
	XML    []AuxXMLTable
}

// DecodeAuxData decodes the AuxData.yaml document starting at i.
func DecodeAuxData(entries []Entry, i int) (*AuxData, int, error) {
	data := &AuxData{}
	var err error

	data.Float, i, err = decodeAuxFloatTables(entries, i)
	if err != nil {
		return nil, i, err
	}
	data.Double, i, err = decodeAuxDoubleTables(entries, i)
	if err != nil {
		return nil, i, err
	}
	data.Int32, i, err = decodeAuxInt32Tables(entries, i)
	if err != nil {
		return nil, i, err
	}
	data.Int64, i, err = decodeAuxInt64Tables(entries, i)
	if err != nil {
		return nil, i, err
	}
	data.XML, i, err = decodeAuxXMLTables(entries, i)
	if err != nil {
		return nil, i, err
	}

	return data, i, nil
}

func decodeAuxDescriptor(entries []Entry, i int, countKey string) (string, int, int, error) {
	if i >= len(entries) || entries[i].Key != countKey {
		return "", 0, i, fmt.Errorf("%w: expected %s", ErrFormat, countKey)
	}
	count := atoiLoose(entries[i].Scalar)
	i++

	if count == 0 {
		return "", 0, i, nil
	}

	desc := AuxXMLDescriptor{}
	next, matched, err := DecodeClass(entries, i, "AuxXMLDescriptor", auxXMLDescriptorFields, reflect.ValueOf(&desc).Elem(), nil)
	if err != nil {
		return "", 0, next, err
	}
	if matched {
		i = next
	}

	return desc.Descriptor, count, i, nil
}

func decodeAuxFloatTables(entries []Entry, i int) ([]AuxFloatTable, int, error) {
	descriptor, count, i, err := decodeAuxDescriptor(entries, i, "NumAuxFloatTables")
	if err != nil {
		return nil, i, err
	}

	tables := make([]AuxFloatTable, 0, count)
	for n := 0; n < count; n++ {
		if i >= len(entries) || entries[i].Key != "AuxFloatData" {
			return nil, i, fmt.Errorf("%w: expected AuxFloatData entry %d", ErrFormat, n)
		}
		data := make([]float32, len(entries[i].Seq))
		for j, raw := range entries[i].Seq {
			data[j] = float32(parseFloatLoose(raw))
		}
		tables = append(tables, AuxFloatTable{Descriptor: descriptor, Data: data})
		i++
	}

	return tables, i, nil
}

func decodeAuxDoubleTables(entries []Entry, i int) ([]AuxDoubleTable, int, error) {
	descriptor, count, i, err := decodeAuxDescriptor(entries, i, "NumAuxDoubleTables")
	if err != nil {
		return nil, i, err
	}

	tables := make([]AuxDoubleTable, 0, count)
	for n := 0; n < count; n++ {
		if i >= len(entries) || entries[i].Key != "AuxDoubleData" {
			return nil, i, fmt.Errorf("%w: expected AuxDoubleData entry %d", ErrFormat, n)
		}
		data := make([]float64, len(entries[i].Seq))
		for j, raw := range entries[i].Seq {
			data[j] = parseFloatLoose(raw)
		}
		tables = append(tables, AuxDoubleTable{Descriptor: descriptor, Data: data})
		i++
	}

	return tables, i, nil
}

func decodeAuxInt32Tables(entries []Entry, i int) ([]AuxInt32Table, int, error) {
	descriptor, count, i, err := decodeAuxDescriptor(entries, i, "NumAuxInt32Tables")
	if err != nil {
		return nil, i, err
	}

	tables := make([]AuxInt32Table, 0, count)
	for n := 0; n < count; n++ {
		if i >= len(entries) || entries[i].Key != "AuxInt32Data" {
			return nil, i, fmt.Errorf("%w: expected AuxInt32Data entry %d", ErrFormat, n)
		}
		data := make([]int32, len(entries[i].Seq))
		for j, raw := range entries[i].Seq {
			v, _ := parseInt32(raw)
			data[j] = v
		}
		tables = append(tables, AuxInt32Table{Descriptor: descriptor, Data: data})
		i++
	}

	return tables, i, nil
}

func decodeAuxInt64Tables(entries []Entry, i int) ([]AuxInt64Table, int, error) {
	descriptor, count, i, err := decodeAuxDescriptor(entries, i, "NumAuxInt64Tables")
	if err != nil {
		return nil, i, err
	}

	tables := make([]AuxInt64Table, 0, count)
	for n := 0; n < count; n++ {
		if i >= len(entries) || entries[i].Key != "AuxInt64Data" {
			return nil, i, fmt.Errorf("%w: expected AuxInt64Data entry %d", ErrFormat, n)
		}
		tables = append(tables, AuxInt64Table{Descriptor: descriptor, Data: toInt64Seq(entries[i])})
		i++
	}

	return tables, i, nil
}

func decodeAuxXMLTables(entries []Entry, i int) ([]AuxXMLTable, int, error) {
	descriptor, count, i, err := decodeAuxDescriptor(entries, i, "NumAuxXMLTables")
	if err != nil {
		return nil, i, err
	}

	tables := make([]AuxXMLTable, 0, count)
	for n := 0; n < count; n++ {
		if i >= len(entries) || entries[i].Key != "AuxXMLData" {
			return nil, i, fmt.Errorf("%w: expected AuxXMLData entry %d", ErrFormat, n)
		}
		tables = append(tables, AuxXMLTable{Descriptor: descriptor, XML: Unescape(entries[i].Scalar)})
		i++
	}

	return tables, i, nil
}
