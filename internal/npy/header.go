// Package npy parses the NumPy array file header and, for the extended
// compressed variant this format repurposes the minor version byte for,
// the fixed-width block dictionary that follows it.
package npy

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/nicolapapp/bioformats/internal/stream"
)

var (
	ErrNoNewline  = errors.New("npy: header is missing terminating newline")
	ErrBadDtype   = errors.New("npy: unrecognised dtype descriptor")
	ErrBadShape   = errors.New("npy: unparsable shape tuple")
	ErrBlockTable = errors.New("npy: block dictionary truncated")
)

// Algorithm is the compression tag occupying the NPY minor-version byte.
type Algorithm byte

const (
	AlgoNone   Algorithm = 0
	AlgoZstd   Algorithm = 1
	AlgoZlib   Algorithm = 2
	AlgoLZ4    Algorithm = 3
	AlgoJetRaw Algorithm = 4
	AlgoRLE    Algorithm = 5
)

// Header describes a parsed NPY array header.
type Header struct {
	Major          byte
	Minor          byte
	HeaderLen      uint16
	LittleEndian   bool
	Signed         bool
	BytesPerPixel  int
	FortranOrder   bool
	Shape          []int
	DataStart      int64 // byte offset where pixel/block data begins
	Algorithm      Algorithm
	BlockDict      []BlockEntry // nil unless Algorithm != AlgoNone
}

// BlockEntry locates one compressed block inside the file.
type BlockEntry struct {
	Offset int64
	Length int64
}

var dtypeRe = regexp.MustCompile(`'descr'\s*:\s*'([<>])(u|i)([0-9]+)'`)
var fortranRe = regexp.MustCompile(`'fortran_order'\s*:\s*(True|False)`)
var shapeRe = regexp.MustCompile(`'shape'\s*:\s*\(([^)]*)\)`)

// ParseHeader reads the 10-byte prefix and textual header starting at the
// current stream position (expected to be offset 0), then, if the minor
// version encodes a compression algorithm, the block dictionary that
// immediately follows.
func ParseHeader(s stream.Stream) (*Header, error) {
	prefix := make([]byte, 10)
	if err := binary.Read(s, binary.BigEndian, &prefix); err != nil {
		return nil, fmt.Errorf("npy: reading prefix: %w", err)
	}

	major := prefix[6]
	minor := prefix[7]
	headerLen := binary.LittleEndian.Uint16(prefix[8:10])

	text := make([]byte, headerLen)
	if err := binary.Read(s, binary.BigEndian, &text); err != nil {
		return nil, fmt.Errorf("npy: reading header text: %w", err)
	}
	if !bytes.ContainsRune(text, '\n') {
		return nil, ErrNoNewline
	}

	h := &Header{Major: major, Minor: minor, HeaderLen: headerLen}

	m := dtypeRe.FindSubmatch(text)
	if m == nil {
		return nil, ErrBadDtype
	}
	h.LittleEndian = string(m[1]) == "<"
	h.Signed = string(m[2]) == "i"
	width, err := strconv.Atoi(string(m[3]))
	if err != nil {
		return nil, ErrBadDtype
	}
	h.BytesPerPixel = width

	fm := fortranRe.FindSubmatch(text)
	h.FortranOrder = fm != nil && string(fm[1]) == "True"

	sm := shapeRe.FindSubmatch(text)
	if sm == nil {
		return nil, ErrBadShape
	}
	shape, err := parseShape(string(sm[1]))
	if err != nil {
		return nil, err
	}
	h.Shape = shape

	headerEnd := int64(10) + int64(headerLen)
	h.DataStart = headerEnd

	if minor >= 1 {
		h.Algorithm = Algorithm(minor)

		nBlocks := 1
		if len(shape) == 3 {
			nBlocks = shape[0]
		}

		dict, err := parseBlockDict(s, nBlocks)
		if err != nil {
			return nil, err
		}
		h.BlockDict = dict
		h.DataStart = headerEnd + int64(nBlocks)*16
	}

	return h, nil
}

func parseShape(body string) ([]int, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrBadShape
	}
	parts := strings.Split(body, ",")
	shape := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil || n <= 0 {
			return nil, ErrBadShape
		}
		shape = append(shape, n)
	}
	if len(shape) == 0 {
		return nil, ErrBadShape
	}
	return shape, nil
}

// parseBlockDict reads an n*16-byte table of (offset:u64, length:u64)
// little-endian pairs immediately following the textual header.
func parseBlockDict(s stream.Stream, n int) ([]BlockEntry, error) {
	raw := make([]byte, n*16)
	if err := binary.Read(s, binary.BigEndian, &raw); err != nil {
		return nil, errors.Join(ErrBlockTable, err)
	}

	entries := make([]BlockEntry, n)
	for i := 0; i < n; i++ {
		off := binary.LittleEndian.Uint64(raw[i*16 : i*16+8])
		length := binary.LittleEndian.Uint64(raw[i*16+8 : i*16+16])
		entries[i] = BlockEntry{Offset: int64(off), Length: int64(length)}
	}
	return entries, nil
}

// BlockDataPos returns the absolute file offset of block k's compressed
// payload: the end of the dictionary for k==0, or offset[k-1]+length[k-1]
// for k>=1.
func (h *Header) BlockDataPos(k int) int64 {
	if k == 0 {
		return h.DataStart
	}
	prev := h.BlockDict[k-1]
	return prev.Offset + prev.Length
}

// PlaneSize is width * height * bytesPerPixel for one 2-D plane.
func (h *Header) PlaneSize(width, height int) int64 {
	return int64(width) * int64(height) * int64(h.BytesPerPixel)
}
