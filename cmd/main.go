package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"

	"github.com/alitto/pond"
	"github.com/urfave/cli/v2"

	"github.com/nicolapapp/bioformats"
	"github.com/nicolapapp/bioformats/internal/emit"
	"github.com/nicolapapp/bioformats/search"
)

// captureMetadata is the per-capture summary written to a slide's
// metadata JSON file by info.
type captureMetadata struct {
	Series int               `json:"series"`
	Title  string            `json:"title"`
	Facts  emit.CaptureFacts `json:"facts"`
}

// info opens a single slide, collates per-capture metadata and writes it
// to outdirURI/<name>-metadata.json, the same one-artifact-per-call
// convention the GSF metadata/index files follow.
func info(slideURI, configURI, outdirURI string) error {
	log.Println("Opening slide:", slideURI)
	rdr, err := bioformats.Open(slideURI, configURI)
	if err != nil {
		return err
	}
	defer rdr.Close()

	dir, file := filepath.Split(slideURI)
	if outdirURI == "" {
		outdirURI = dir
	}

	n := rdr.NumCaptures()
	log.Println("Number of captures:", n)

	captures := make([]captureMetadata, 0, n)
	for i := 0; i < n; i++ {
		title, err := rdr.Title(i)
		if err != nil {
			return err
		}
		facts, err := rdr.Facts(i)
		if err != nil {
			return err
		}
		log.Printf(
			"capture %d %q: %dx%d, C=%d Z=%d T=%d positions=%d",
			i, title, facts.Dimensions.Width, facts.Dimensions.Height,
			facts.Dimensions.NumChannels, facts.Dimensions.NumZ,
			facts.Dimensions.NumTimepoints, facts.Dimensions.NumPositions,
		)
		captures = append(captures, captureMetadata{Series: i, Title: title, Facts: facts})
	}

	log.Println("Writing metadata")
	outURI := filepath.Join(outdirURI, file+"-metadata.json")
	if _, err := bioformats.WriteJSON(outURI, configURI, captures); err != nil {
		return err
	}

	files, err := rdr.UsedFiles(false)
	if err != nil {
		return err
	}
	log.Println("Writing index")
	indexURI := filepath.Join(outdirURI, file+"-index.json")
	if _, err := bioformats.WriteJSON(indexURI, configURI, files); err != nil {
		return err
	}

	return nil
}

// extractPlane reads one 2-D pixel plane and writes its raw bytes to
// outdirURI.
func extractPlane(slideURI, configURI, outdirURI string, series, position, t, z, c int) error {
	rdr, err := bioformats.Open(slideURI, configURI)
	if err != nil {
		return err
	}
	defer rdr.Close()

	facts, err := rdr.Facts(series)
	if err != nil {
		return err
	}

	dims := facts.Dimensions
	storedBytes := pixelBytes(facts.PixelType)
	if facts.RGB {
		// PixelType names the per-channel width after RGB splitting
		// (§4.7); the stored plane is still packed 3 channels per pixel,
		// so the read buffer must be sized off the undivided width.
		storedBytes *= 3
	}
	planeSize := dims.Width * dims.Height * storedBytes
	buf := make([]byte, planeSize)
	if err := rdr.ReadPlane(series, position, t, z, c, buf); err != nil {
		return err
	}

	if outdirURI == "" {
		outdirURI, _ = filepath.Split(slideURI)
	}
	_, base := filepath.Split(slideURI)
	out := filepath.Join(outdirURI, fmt.Sprintf("%s-s%d-t%d-z%d-c%d.plane", base, series, t, z, c))

	return os.WriteFile(out, buf, 0o644)
}

func pixelBytes(pixelType string) int {
	switch pixelType {
	case "uint8", "int8":
		return 1
	case "uint16", "int16":
		return 2
	case "uint32", "int32":
		return 4
	default:
		return 2
	}
}

// scan searches uri for every slide sentinel file and runs info against
// each one, spreading the work across a fixed worker pool.
func scan(uri, configURI, outdirURI string) error {
	log.Println("Searching uri:", uri)
	items, err := search.FindSlides(uri, configURI)
	if err != nil {
		return err
	}
	log.Println("Number of slides to inspect:", len(items))

	n := runtime.NumCPU() * 2
	pool := pond.New(n, 0, pond.MinWorkers(n))
	defer pool.StopAndWait()

	for _, name := range items {
		slideURI := name
		pool.Submit(func() {
			if err := info(slideURI, configURI, outdirURI); err != nil {
				log.Printf("info %s: %v", slideURI, err)
			}
		})
	}

	return nil
}

func main() {
	app := &cli.App{
		Name:  "sldy",
		Usage: "inspect SlideBook 7 (.sldy / .sldyz) microscopy containers",
		Commands: []*cli.Command{
			{
				Name: "info",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "slide-uri", Usage: "URI or pathname to a .sldy/.sldyz slide."},
					&cli.StringFlag{Name: "config-uri", Usage: "URI or pathname to a TileDB VFS config file."},
					&cli.StringFlag{Name: "outdir-uri", Usage: "URI or pathname to an output directory."},
				},
				Action: func(cCtx *cli.Context) error {
					return info(cCtx.String("slide-uri"), cCtx.String("config-uri"), cCtx.String("outdir-uri"))
				},
			},
			{
				Name: "scan",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "uri", Usage: "URI or pathname to a directory containing slides."},
					&cli.StringFlag{Name: "config-uri", Usage: "URI or pathname to a TileDB VFS config file."},
					&cli.StringFlag{Name: "outdir-uri", Usage: "URI or pathname to an output directory."},
				},
				Action: func(cCtx *cli.Context) error {
					return scan(cCtx.String("uri"), cCtx.String("config-uri"), cCtx.String("outdir-uri"))
				},
			},
			{
				Name: "extract-plane",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "slide-uri", Usage: "URI or pathname to a .sldy/.sldyz slide."},
					&cli.StringFlag{Name: "config-uri", Usage: "URI or pathname to a TileDB VFS config file."},
					&cli.StringFlag{Name: "outdir-uri", Usage: "URI or pathname to an output directory."},
					&cli.IntFlag{Name: "series", Usage: "Capture (image group) index."},
					&cli.IntFlag{Name: "position", Usage: "Stage position index."},
					&cli.IntFlag{Name: "t", Usage: "Timepoint index."},
					&cli.IntFlag{Name: "z", Usage: "Focal plane index."},
					&cli.IntFlag{Name: "c", Usage: "Channel index."},
				},
				Action: func(cCtx *cli.Context) error {
					return extractPlane(
						cCtx.String("slide-uri"), cCtx.String("config-uri"), cCtx.String("outdir-uri"),
						cCtx.Int("series"), cCtx.Int("position"), cCtx.Int("t"), cCtx.Int("z"), cCtx.Int("c"),
					)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
