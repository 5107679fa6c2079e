// Command bigtile renders a view of a tiled image or a cube panorama
// without a window.
//
// Planar images are composed into a PNG:
//
//	bigtile -params image.yaml -descriptor -output view.png
//
// Panoramas are rendered with the recording renderer and summarized:
//
//	bigtile -params pano.yaml -pano -yaw 90 -fov 60
package main

import (
	"context"
	"flag"
	"image"
	"image/png"
	"log"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/gogpu/bigtile"
	"github.com/gogpu/bigtile/eventloop"
	"github.com/gogpu/bigtile/loader"
	"github.com/gogpu/bigtile/lod"
	"github.com/gogpu/bigtile/pano"
	"github.com/gogpu/bigtile/planar"
	"github.com/gogpu/bigtile/texture"
	"github.com/gogpu/bigtile/tile"
)

func main() {
	var (
		paramsPath = flag.String("params", "", "YAML parameter file")
		descriptor = flag.Bool("descriptor", false, "read the image geometry from <base_path>/descriptor (per face with -pano)")
		dzi        = flag.String("dzi", "", "Deep Zoom pyramid base path (reads <path>.xml)")
		panorama   = flag.Bool("pano", false, "treat the pyramid as a cube panorama")
		width      = flag.Int("width", 800, "viewport width")
		height     = flag.Int("height", 600, "viewport height")
		x          = flag.Float64("x", -1, "planar: image x at the viewport center (-1 for the middle)")
		y          = flag.Float64("y", -1, "planar: image y at the viewport center (-1 for the middle)")
		zoom       = flag.Float64("zoom", 0, "planar: zoom level")
		fit        = flag.Bool("fit", false, "planar: zoom to fit the viewport")
		yaw        = flag.Float64("yaw", 0, "panorama: yaw in degrees")
		pitch      = flag.Float64("pitch", 0, "panorama: pitch in degrees")
		fov        = flag.Float64("fov", 45, "panorama: vertical field of view in degrees")
		settle     = flag.Duration("settle", 3*time.Second, "time allowed for tiles to load")
		output     = flag.String("output", "view.png", "planar: output file")
		verbose    = flag.Bool("v", false, "log debug output to stderr")
	)
	flag.Parse()

	if *verbose {
		bigtile.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	p := bigtile.DefaultParameters()
	if *paramsPath != "" {
		var err error
		if p, err = bigtile.LoadParameters(*paramsPath); err != nil {
			log.Fatalf("Failed to load parameters: %v", err)
		}
	}

	loop := eventloop.New()
	ld := loader.New(loop, loader.Options{})
	defer ld.Close()

	var src tile.Source = tile.NewFolderSource(p)
	switch {
	case *dzi != "":
		raw, err := ld.Fetch(context.Background(), tile.DeepZoomSource{BasePath: *dzi}.DescriptorURL())
		if err != nil {
			log.Fatalf("Failed to read Deep Zoom descriptor: %v", err)
		}
		dz, d, err := tile.ParseDeepZoom(*dzi, raw)
		if err != nil {
			log.Fatalf("Failed to parse Deep Zoom descriptor: %v", err)
		}
		d.Apply(&p)
		src = dz
	case *descriptor && *panorama:
		// Each face has its own descriptor; the front face seeds the
		// panorama-wide geometry.
		fp, err := pano.DescriptorParameters(fetcher(ld))("f", p)
		if err != nil {
			log.Fatalf("Failed to read face descriptor: %v", err)
		}
		p = fp
	case *descriptor:
		raw, err := ld.Fetch(context.Background(), tile.NewFolderSource(p).DescriptorURL())
		if err != nil {
			log.Fatalf("Failed to read descriptor: %v", err)
		}
		d, err := tile.ParseDescriptor(raw)
		if err != nil {
			log.Fatalf("Failed to parse descriptor: %v", err)
		}
		d.Apply(&p)
		src = tile.NewFolderSource(p)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *settle)
	defer cancel()

	if *panorama {
		runPanorama(ctx, loop, ld, p, *descriptor, *width, *height, *yaw, *pitch, *fov)
		return
	}
	runPlanar(ctx, loop, ld, p, src, *width, *height, *x, *y, *zoom, *fit, *output)
}

func runPlanar(ctx context.Context, loop *eventloop.Loop, ld tile.Loader, p bigtile.Parameters, src tile.Source,
	w, h int, x, y, zoom float64, fit bool, output string) {
	v, err := planar.NewViewer(p, loop, w, h)
	if err != nil {
		log.Fatalf("Failed to create viewer: %v", err)
	}
	c, err := tile.NewImageCache(p, src, ld, loop, v.Layout)
	if err != nil {
		log.Fatalf("Failed to create tile cache: %v", err)
	}
	v.AddLayer(planar.NewTileLayer(c, p))

	if x < 0 {
		x = float64(p.Width) / 2
	}
	if y < 0 {
		y = float64(p.Height) / 2
	}
	v.MoveTo(x, y, zoom)
	if fit {
		v.ZoomToFit()
	}
	v.Layout()

	_ = loop.Run(ctx)

	v.Layout()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	v.Compose(dst)

	f, err := os.Create(output)
	if err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, dst); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}

	s := c.Stats()
	log.Printf("View saved to %s (%dx%d, zoom %.2f); %d tiles loaded, %d failed, %d in flight\n",
		output, w, h, v.Zoom(), s.Loads, s.Failures, s.InFlight)
}

// fetcher adapts the loader's blocking fetch for descriptor reads.
func fetcher(ld *loader.HTTPLoader) func(string) ([]byte, error) {
	return func(url string) ([]byte, error) {
		return ld.Fetch(context.Background(), url)
	}
}

func runPanorama(ctx context.Context, loop *eventloop.Loop, ld *loader.HTTPLoader, p bigtile.Parameters, descriptors bool,
	w, h int, yaw, pitch, fov float64) {
	opts := pano.Options{
		Scheduler:      loop,
		Loader:         ld,
		Uploader:       texture.NewMemoryUploader(),
		ViewportWidth:  w,
		ViewportHeight: h,
		OnLoad:         func() { log.Printf("All posters loaded") },
	}
	if descriptors {
		opts.FaceParameters = pano.DescriptorParameters(fetcher(ld))
	}
	pan, err := pano.NewPanorama(p, opts)
	if err != nil {
		log.Fatalf("Failed to create panorama: %v", err)
	}
	defer pan.Close()

	m, err := lod.NewMonitor(p.LOD, pan, loop)
	if err != nil {
		log.Fatalf("Failed to create LOD monitor: %v", err)
	}
	defer m.Close()
	pan.OnRender(m.Listener)

	pan.SetYaw(yaw)
	pan.SetPitch(pitch)
	pan.SetFov(fov)
	pan.RenderAsap()

	_ = loop.Run(ctx)

	pan.Render(pano.CauseNone)
	rec, ok := pan.Renderer().(*pano.RecordingRenderer)
	if !ok {
		log.Printf("Rendered with %T", pan.Renderer())
		return
	}
	frame, _ := rec.Last()

	kinds := make(map[string]map[tile.Kind]int)
	for _, q := range frame.Quads {
		if kinds[q.Face] == nil {
			kinds[q.Face] = make(map[tile.Kind]int)
		}
		kinds[q.Face][q.Texture.Kind]++
	}
	faces := make([]string, 0, len(kinds))
	for f := range kinds {
		faces = append(faces, f)
	}
	sort.Strings(faces)

	log.Printf("Frame %d at yaw %.1f, pitch %.1f, fov %.1f: %d quads, magnification %.2f\n",
		len(rec.Frames()), pan.Yaw(), pan.Pitch(), pan.Fov(), len(frame.Quads), pan.MaxTextureMagnification())
	stats := pan.Stats()
	for _, f := range faces {
		k := kinds[f]
		log.Printf("  face %s: %d exact, %d partial, %d placeholder; %d textures held\n",
			f, k[tile.Exact], k[tile.Partial], k[tile.Placeholder], stats[f].Textures)
	}
}
