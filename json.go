package bioformats

import (
	"encoding/json"

	tiledb "github.com/TileDB-Inc/TileDB-Go"

	"github.com/nicolapapp/bioformats/internal/stream"
)

// WriteJSON serialises data as indented JSON to fileURI, local or object-
// store backed via the TileDB VFS identified by configURI (empty for a
// generic local-filesystem config).
func WriteJSON(fileURI, configURI string, data any) (int, error) {
	vfs, err := stream.Open(configURI)
	if err != nil {
		return 0, err
	}
	defer vfs.Close()

	handle, err := vfs.Fs.Open(fileURI, tiledb.TILEDB_VFS_WRITE)
	if err != nil {
		return 0, err
	}
	defer handle.Close()

	jsn, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return 0, err
	}

	n, err := handle.Write(jsn)
	if err != nil {
		return 0, err
	}

	return n, nil
}

// JSONDumps marshals data to a compact JSON string.
func JSONDumps(data any) (string, error) {
	jsn, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return string(jsn), nil
}

// JSONIndentDumps marshals data to a JSON string indented four spaces.
func JSONIndentDumps(data any) (string, error) {
	jsn, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return "", err
	}
	return string(jsn), nil
}
