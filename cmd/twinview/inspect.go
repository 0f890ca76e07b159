package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"twinview/internal/decode"
	"twinview/internal/logger"
	"twinview/internal/raster"
)

var (
	inspectX int
	inspectY int
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Decode an image without opening a window and describe it",
	Long: `Decodes one file through the same path the viewer uses and prints the
decoded shape, sample kind, display layout and pixel digest. With --x and --y
the normalized value of that pixel is printed as well.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().IntVar(&inspectX, "x", -1, "pixel column to print")
	inspectCmd.Flags().IntVar(&inspectY, "y", -1, "pixel row to print")
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogFormat, cfg.Level())

	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	buf, err := newDecoder(cfg, log).Decode(cmd.Context(), path)
	if err != nil {
		return err
	}
	img, err := raster.NewNormalizer(cfg.Workers).Normalize(buf)
	if err != nil {
		return &decode.Error{Kind: decode.UnsupportedShape, Path: path, Err: err}
	}

	return describe(cmd.OutOrStdout(), path, buf, img, inspectX, inspectY)
}

func describe(w io.Writer, path string, buf *raster.RawSampleBuffer, img *raster.CanonicalImage, x, y int) error {
	fmt.Fprintf(w, "file:     %s\n", path)
	fmt.Fprintf(w, "format:   %s\n", decode.FormatForPath(path))
	fmt.Fprintf(w, "size:     %dx%d\n", buf.Width, buf.Height)
	fmt.Fprintf(w, "samples:  %d x %s\n", buf.Channels, buf.Kind)
	fmt.Fprintf(w, "layout:   %s\n", img.Layout)
	fmt.Fprintf(w, "digest:   %016x\n", img.Digest())

	if x < 0 && y < 0 {
		return nil
	}
	px, ok := img.Pixel(x, y)
	if !ok {
		return fmt.Errorf("pixel (%d, %d) outside %dx%d image", x, y, img.Width, img.Height)
	}
	fmt.Fprintf(w, "pixel:    (%d, %d) %v\n", x, y, px)
	return nil
}
