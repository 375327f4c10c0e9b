// Command gcif encodes and decodes GCIF images from the command line.
//
// Usage:
//
//	gcif -c [-L level] <in.png> <out.gci>   PNG → GCIF
//	gcif -d <in.gci> <out.png>              GCIF → PNG
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/opengcif/gcif"
	"github.com/opengcif/gcif/internal/gcifimage"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "gcif: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("gcif", flag.ContinueOnError)
	encode := fs.Bool("c", false, "encode a PNG to GCIF")
	decode := fs.Bool("d", false, "decode a GCIF to PNG")
	level := fs.Int("L", gcif.LevelDefault, "encode effort level 0-3 (only with -c)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *encode == *decode {
		printUsage()
		return fmt.Errorf("specify exactly one of -c or -d")
	}
	if fs.NArg() != 2 {
		printUsage()
		return fmt.Errorf("expected exactly two file arguments")
	}
	in, out := fs.Arg(0), fs.Arg(1)

	if *encode {
		return runEncode(in, out, *level)
	}
	return runDecode(in, out)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage:
  gcif -c [-L level] <in.png> <out.gci>
  gcif -d <in.gci> <out.png>
`)
}

func runEncode(inPath, outPath string, level int) error {
	if level < 0 || level > 3 {
		return fmt.Errorf("level %d out of range [0,3]", level)
	}

	f, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", inPath, err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("decode %s: %w", inPath, err)
	}
	img := fromImage(src)

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outPath, err)
	}
	defer out.Close()

	if err := gcif.Encode(img, out, level); err != nil {
		return fmt.Errorf("encode %s: %w", inPath, err)
	}
	return nil
}

func runDecode(inPath, outPath string) error {
	img, err := gcif.DecodeFile(inPath)
	if err != nil {
		return fmt.Errorf("decode %s: %w", inPath, err)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outPath, err)
	}
	defer out.Close()

	if err := png.Encode(out, toImage(img)); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	return nil
}

// fromImage converts any stdlib image.Image into the codec's packed RGBA
// raster. GCIF stores raw, non-alpha-premultiplied channel bytes, so the
// source is converted through color.NRGBA rather than the premultiplied
// RGBA() accessor.
func fromImage(src image.Image) *gcifimage.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	img := gcifimage.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			img.Set(x, y, c.R, c.G, c.B, c.A)
		}
	}
	return img
}

// toImage wraps a decoded raster as a stdlib image.Image for png.Encode.
func toImage(img *gcifimage.Image) image.Image {
	nrgba := image.NewNRGBA(image.Rect(0, 0, img.Width, img.Height))
	copy(nrgba.Pix, img.Pix)
	return nrgba
}
