package bioformats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"testing"

	"github.com/nicolapapp/bioformats/internal/stream"
)

// fakeFS is an in-memory filesystem double rooted at a fixed directory
// tree, the same shape internal/capture's own tests use.
type fakeFS struct {
	docs  map[string][]byte
	dirs  map[string][]string
	files map[string][]string
	closed bool
}

func newFakeFS() *fakeFS {
	return &fakeFS{
		docs:  make(map[string][]byte),
		dirs:  make(map[string][]string),
		files: make(map[string][]string),
	}
}

func (f *fakeFS) List(uri string) ([]string, []string, error) {
	return f.dirs[uri], f.files[uri], nil
}

func (f *fakeFS) ReadAll(path string) (*bytes.Reader, error) {
	data, ok := f.docs[path]
	if !ok {
		return nil, fmt.Errorf("fakeFS: no document at %s", path)
	}
	return bytes.NewReader(data), nil
}

func (f *fakeFS) OpenRead(path string) (stream.Stream, error) {
	data, ok := f.docs[path]
	if !ok {
		return nil, fmt.Errorf("fakeFS: no file at %s", path)
	}
	return &memStream{r: bytes.NewReader(data)}, nil
}

func (f *fakeFS) Close() { f.closed = true }

type memStream struct{ r *bytes.Reader }

func (m *memStream) Read(p []byte) (int, error)                  { return m.r.Read(p) }
func (m *memStream) Seek(offset int64, whence int) (int64, error) { return m.r.Seek(offset, whence) }
func (m *memStream) Close() error                                 { return nil }

func buildNpyHeader(width, height, bytesPerPixel int) []byte {
	descr := fmt.Sprintf("<u%d", bytesPerPixel)
	body := fmt.Sprintf("{'descr': '%s', 'fortran_order': False, 'shape': (%d, %d), }", descr, height, width)
	for (10+len(body)+1)%16 != 0 {
		body += " "
	}
	body += "\n"

	buf := new(bytes.Buffer)
	buf.Write([]byte{0x93, 'N', 'U', 'M', 'P', 'Y'})
	buf.WriteByte(1)
	buf.WriteByte(0)
	hlen := make([]byte, 2)
	binary.LittleEndian.PutUint16(hlen, uint16(len(body)))
	buf.Write(hlen)
	buf.WriteString(body)
	return buf.Bytes()
}

const oneChannelOneTimepointImageRecord = `
- StartClass:
    ClassName: ImageRecord
- mWidth: "2"
- mHeight: "2"
- mNumPlanes: "1"
- mNumChannels: "1"
- mNumTimepoints: "1"
- EndClass: "ImageRecord"
`

const oneChannelRecord = `
- StartClass:
    ClassName: ExposureRecord
- mExposureTime: "10"
- mInterplaneSpacing: "1"
- mXFactor: "1"
- mYFactor: "1"
- EndClass: "ExposureRecord"
- StartClass:
    ClassName: ChannelDef
- mName: "Ch0"
- mCamera: "cam0"
- mFluor: "__empty"
- EndClass: "ChannelDef"
`

const noMasksOneTimepoint = `
- NumMasks: "0"
- BlockSizes:
    - "0"
- Offsets:
    - "0"
`

const noAnnotationsOneTimepoint = `
- NumCube: "0"
- NumBase: "0"
- NumFrap: "0"
- NumUnknown: "0"
`

const oneElapsedTime = `
- ElapsedTimesMs:
    - "1"
    - "0"
`

const oneSAPosition = `
- SAPositions:
    - "1"
    - "0"
`

const oneStagePosition = `
- StageX:
    - "1"
    - "0.0"
- StageY:
    - "1"
    - "0.0"
- StageZ:
    - "1"
    - "0.0"
`

const emptyAuxData = `
- NumAuxFloatTables: "0"
- NumAuxDoubleTables: "0"
- NumAuxInt32Tables: "0"
- NumAuxInt64Tables: "0"
- NumAuxXMLTables: "0"
`

// buildSingleGroupSlide builds a fake VFS rooted at root representing a
// slide with one image group, one channel, one timepoint, one 2x2 u2
// uncompressed plane.
func buildSingleGroupSlide(pixels []byte) *fakeFS {
	const root = "demo.dir"
	const group = root + "/cap.imgdir"
	const planePath = group + "/ImageData_Ch0_TP0000000.npy"

	fs := newFakeFS()
	fs.dirs[root] = []string{group}
	fs.files[group] = []string{group + "/ImageRecord.yaml", planePath}
	fs.docs[group+"/ImageRecord.yaml"] = []byte(oneChannelOneTimepointImageRecord)
	fs.docs[group+"/ChannelRecord.yaml"] = []byte(oneChannelRecord)
	fs.docs[group+"/MaskRecord.yaml"] = []byte(noMasksOneTimepoint)
	fs.docs[group+"/AnnotationRecord.yaml"] = []byte(noAnnotationsOneTimepoint)
	fs.docs[group+"/ElapsedTimes.yaml"] = []byte(oneElapsedTime)
	fs.docs[group+"/SAPositionData.yaml"] = []byte(oneSAPosition)
	fs.docs[group+"/StagePositionData.yaml"] = []byte(oneStagePosition)
	fs.docs[group+"/AuxData.yaml"] = []byte(emptyAuxData)
	fs.docs[planePath] = append(buildNpyHeader(2, 2, 2), pixels...)

	return fs
}

func TestOpenLoadsCaptureAndReadsPlane(t *testing.T) {
	pixels := []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07}
	fs := buildSingleGroupSlide(pixels)

	r, err := open(fs, "demo.sldy")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer r.Close()

	if r.NumCaptures() != 1 {
		t.Fatalf("NumCaptures() = %d, want 1", r.NumCaptures())
	}

	title, err := r.Title(0)
	if err != nil || title != "cap" {
		t.Fatalf("Title(0) = %q, %v", title, err)
	}

	dims, err := r.Dimensions(0)
	if err != nil {
		t.Fatalf("Dimensions: %v", err)
	}
	if dims.Width != 2 || dims.Height != 2 || dims.NumChannels != 1 || dims.NumTimepoints != 1 {
		t.Fatalf("dims = %+v", dims)
	}

	out := make([]byte, 8)
	if err := r.ReadPlane(0, 0, 0, 0, 0, out); err != nil {
		t.Fatalf("ReadPlane: %v", err)
	}
	if !bytes.Equal(out, pixels) {
		t.Fatalf("out = %v, want %v", out, pixels)
	}
}

func TestOpenRejectsBadSuffix(t *testing.T) {
	_, err := open(newFakeFS(), "demo.tiff")
	if !errors.Is(err, ErrPathSyntax) {
		t.Fatalf("expected ErrPathSyntax for a non-.sldy path, got %v", err)
	}
}

func TestOpenEmptyContainer(t *testing.T) {
	fs := newFakeFS()
	fs.dirs["demo.dir"] = nil

	_, err := open(fs, "demo.sldy")
	if err != ErrEmptyContainer {
		t.Fatalf("err = %v, want ErrEmptyContainer", err)
	}
}

func TestReaderGroupOutOfRange(t *testing.T) {
	fs := buildSingleGroupSlide([]byte{0, 1, 2, 3, 4, 5, 6, 7})
	r, err := open(fs, "demo.sldy")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer r.Close()

	if _, err := r.Dimensions(1); err == nil {
		t.Fatalf("expected error for out-of-range series")
	}
}

func TestCloseClosesUnderlyingFilesystem(t *testing.T) {
	fs := buildSingleGroupSlide([]byte{0, 1, 2, 3, 4, 5, 6, 7})
	r, err := open(fs, "demo.sldy")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !fs.closed {
		t.Fatalf("expected underlying filesystem to be closed")
	}
}

func TestUsedFilesExcludesLocksAndCopies(t *testing.T) {
	fs := buildSingleGroupSlide([]byte{0, 1, 2, 3, 4, 5, 6, 7})
	const group = "demo.dir/cap.imgdir"
	fs.files[group] = append(fs.files[group], group+"/ImageRecord.yaml.lck", group+"/ImageRecord.yaml.copy")

	r, err := open(fs, "demo.sldy")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer r.Close()

	files, err := r.UsedFiles(false)
	if err != nil {
		t.Fatalf("UsedFiles: %v", err)
	}
	for _, f := range files {
		if bytes.HasSuffix([]byte(f), []byte(".lck")) || bytes.HasSuffix([]byte(f), []byte(".copy")) {
			t.Fatalf("UsedFiles leaked excluded file: %s", f)
		}
	}
}
