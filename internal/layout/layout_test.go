package layout

import (
	"errors"
	"testing"
)

type fakeLister struct {
	dirs  map[string][]string
	files map[string][]string
}

func (f *fakeLister) Dirs(uri string) ([]string, error)  { return f.dirs[uri], nil }
func (f *fakeLister) Files(uri string) ([]string, error) { return f.files[uri], nil }

func TestRootAndCompressed(t *testing.T) {
	root, err := Root("/data/demo.sldy")
	if err != nil || root != "/data/demo.dir" {
		t.Fatalf("Root: %q, %v", root, err)
	}

	root, err = Root("/data/demo.sldyz")
	if err != nil || root != "/data/demo.dir" {
		t.Fatalf("Root (sldyz): %q, %v", root, err)
	}

	if _, err := Root("/data/demo.txt"); !errors.Is(err, ErrPathSyntax) {
		t.Fatalf("expected ErrPathSyntax, got %v", err)
	}

	compressed, err := Compressed("/data/demo.sldyz")
	if err != nil || !compressed {
		t.Fatalf("expected compressed=true, got %v, %v", compressed, err)
	}
}

func TestListImageGroups(t *testing.T) {
	l := &fakeLister{
		dirs: map[string][]string{
			"/root": {"/root/cap.imgdir", "/root/empty.imgdir", "/root/notes"},
		},
		files: map[string][]string{
			"/root/cap.imgdir":   {"/root/cap.imgdir/ImageRecord.yaml", "/root/cap.imgdir/ImageData_Ch0_TP0000000.npy"},
			"/root/empty.imgdir": {"/root/empty.imgdir/ImageRecord.yaml"}, // no pixel file -> invalid
		},
	}

	groups, err := ListImageGroups(l, "/root")
	if err != nil {
		t.Fatalf("ListImageGroups: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("expected 1 valid group, got %d", len(groups))
	}
	if groups[0].Title != "cap" {
		t.Fatalf("expected title 'cap', got %q", groups[0].Title)
	}
}

func TestListImageGroupsEmptyContainer(t *testing.T) {
	l := &fakeLister{
		dirs:  map[string][]string{"/root": {"/root/empty.imgdir"}},
		files: map[string][]string{"/root/empty.imgdir": {"/root/empty.imgdir/ImageRecord.yaml"}},
	}
	if _, err := ListImageGroups(l, "/root"); err != ErrEmptyContainer {
		t.Fatalf("expected ErrEmptyContainer, got %v", err)
	}
}

func TestPathBuilders(t *testing.T) {
	p := ImageDataPath("/root/cap.imgdir", 1, 42, false)
	if p != "/root/cap.imgdir/ImageData_Ch1_TP0000042.npy" {
		t.Fatalf("unexpected path: %s", p)
	}

	ch, err := ChannelOf(p)
	if err != nil || ch != 1 {
		t.Fatalf("ChannelOf: %d, %v", ch, err)
	}

	tp, err := TimepointOf(p)
	if err != nil || tp != 42 {
		t.Fatalf("TimepointOf: %d, %v", tp, err)
	}

	rewritten := RenameToTP0(p)
	if rewritten != "/root/cap.imgdir/ImageData_Ch1_TP0000000.npy" {
		t.Fatalf("RenameToTP0: %s", rewritten)
	}
}

func TestCompressedPathsUseNpyzExt(t *testing.T) {
	p := ImageDataPath("/root/cap.imgdir", 0, 0, true)
	if p != "/root/cap.imgdir/ImageData_Ch0_TP0000000.npyz" {
		t.Fatalf("unexpected compressed path: %s", p)
	}
	p = MaskDataPath("/root/cap.imgdir", 3, true)
	if p != "/root/cap.imgdir/MaskData_TP0000003.npyz" {
		t.Fatalf("unexpected mask path: %s", p)
	}
	p = HistogramSummaryPath("/root/cap.imgdir", 2, false)
	if p != "/root/cap.imgdir/HistogramSummary_Ch2.npy" {
		t.Fatalf("unexpected histogram summary path: %s", p)
	}
}
