package record

import "testing"

func TestDecodeAuxDataAllTables(t *testing.T) {
	entries := parseOrFail(t, `
- NumAuxFloatTables: "1"
- StartClass:
    ClassName: AuxXMLDescriptor
- mDescriptor: "<float-series/>"
- EndClass: "AuxXMLDescriptor"
- AuxFloatData:
    - "2"
    - "1.5"
    - "2.5"
- NumAuxDoubleTables: "0"
- NumAuxInt32Tables: "0"
- NumAuxInt64Tables: "0"
- NumAuxXMLTables: "1"
- StartClass:
    ClassName: AuxXMLDescriptor
- mDescriptor: "<xml-table/>"
- EndClass: "AuxXMLDescriptor"
- AuxXMLData: "<payload>1</payload>"
`)

	data, next, err := DecodeAuxData(entries, 0)
	if err != nil {
		t.Fatalf("DecodeAuxData: %v", err)
	}
	if next != len(entries) {
		t.Fatalf("next = %d, want %d", next, len(entries))
	}
	if len(data.Float) != 1 || data.Float[0].Descriptor != "<float-series/>" {
		t.Fatalf("Float = %+v", data.Float)
	}
	if len(data.Float[0].Data) != 2 || data.Float[0].Data[0] != 1.5 {
		t.Fatalf("Float[0].Data = %v", data.Float[0].Data)
	}
	if len(data.Double) != 0 || len(data.Int32) != 0 || len(data.Int64) != 0 {
		t.Fatalf("expected empty double/int32/int64 tables, got %+v", data)
	}
	if len(data.XML) != 1 || data.XML[0].XML != "<payload>1</payload>" {
		t.Fatalf("XML = %+v", data.XML)
	}
}

func TestDecodeAuxDataAllEmpty(t *testing.T) {
	entries := parseOrFail(t, `
- NumAuxFloatTables: "0"
- NumAuxDoubleTables: "0"
- NumAuxInt32Tables: "0"
- NumAuxInt64Tables: "0"
- NumAuxXMLTables: "0"
`)

	data, next, err := DecodeAuxData(entries, 0)
	if err != nil {
		t.Fatalf("DecodeAuxData: %v", err)
	}
	if next != len(entries) {
		t.Fatalf("next = %d, want %d", next, len(entries))
	}
	if len(data.Float)+len(data.Double)+len(data.Int32)+len(data.Int64)+len(data.XML) != 0 {
		t.Fatalf("expected all-empty AuxData, got %+v", data)
	}
}
