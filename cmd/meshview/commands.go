package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Faultbox/meshview/internal/config"
	"github.com/Faultbox/meshview/internal/engine/camera"
	"github.com/Faultbox/meshview/internal/engine/picking"
	"github.com/Faultbox/meshview/internal/engine/preview"
	"github.com/Faultbox/meshview/internal/loader"
	"github.com/Faultbox/meshview/pkg/geom"
	"github.com/Faultbox/meshview/pkg/mesh"
)

type app struct {
	cfg *config.Config
	out io.Writer
}

func (a *app) loaderOptions() loader.Options {
	return loader.OptionsFromConfig(a.cfg.Loader)
}

func (a *app) cmdInfo(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: meshview info <file>...")
	}

	failed := 0
	for _, res := range loader.LoadAll(ctx, args, a.loaderOptions()) {
		if res.Err != nil {
			failed++
			fmt.Fprintf(a.out, "%s: %v\n\n", res.Path, res.Err)
			continue
		}
		fmt.Fprintf(a.out, "%s (%s, %s)\n", res.Path, res.Format, res.Elapsed.Round(time.Microsecond))
		printModel(a.out, res.Model)
		fmt.Fprintln(a.out)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to load", failed, len(args))
	}
	return nil
}

func printModel(w io.Writer, mm *mesh.MultiMesh) {
	fmt.Fprintf(w, "  Groups:    %d\n", mm.Len())
	fmt.Fprintf(w, "  Vertices:  %d\n", mm.NumVerts())
	fmt.Fprintf(w, "  Triangles: %d\n", mm.NumTris())
	fmt.Fprintf(w, "  Bounds:    %s\n", formatBBox(mm.BBox()))
	if mm.Len() < 2 {
		return
	}
	for _, g := range mm.Groups() {
		var attrs []string
		for _, at := range []mesh.Attribute{mesh.AttrColor, mesh.AttrNormal, mesh.AttrTexCoord} {
			if g.Mesh.Attribute(at) != nil {
				attrs = append(attrs, at.String())
			}
		}
		fmt.Fprintf(w, "    %-20s %7d verts %7d tris  %s\n", g.Name, g.Mesh.NumVerts(), g.Mesh.NumTris(), strings.Join(attrs, ","))
	}
}

func formatBBox(b geom.BBox) string {
	lo, hi := b.Min(), b.Max()
	return fmt.Sprintf("[%.4g %.4g %.4g] - [%.4g %.4g %.4g]", lo[0], lo[1], lo[2], hi[0], hi[1], hi[2])
}

// parseVec3 parses "x,y,z".
func parseVec3(s string) ([3]float32, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return [3]float32{}, fmt.Errorf("expected x,y,z, got %q", s)
	}
	var v [3]float32
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return v, fmt.Errorf("invalid component %q: %w", p, err)
		}
		v[i] = float32(f)
	}
	return v, nil
}

// parsePixel parses "px,py".
func parsePixel(s string) (int, int, error) {
	x, y, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("expected px,py, got %q", s)
	}
	px, err := strconv.Atoi(strings.TrimSpace(x))
	if err != nil {
		return 0, 0, err
	}
	py, err := strconv.Atoi(strings.TrimSpace(y))
	if err != nil {
		return 0, 0, err
	}
	return px, py, nil
}

// pixelList collects repeated -mark flags.
type pixelList []string

func (p *pixelList) String() string     { return strings.Join(*p, " ") }
func (p *pixelList) Set(v string) error { *p = append(*p, v); return nil }

func (a *app) newCamera(mm *mesh.MultiMesh) *camera.OrbitCamera {
	cam := camera.FromConfig(a.cfg.Camera)
	cam.FitToBounds(mm.BBox())
	return cam
}

func (a *app) cmdPick(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("pick", flag.ExitOnError)
	px := fs.Int("px", -1, "Pixel column (default: center)")
	py := fs.Int("py", -1, "Pixel row (default: center)")
	origin := fs.String("origin", "", "Explicit ray origin x,y,z")
	dir := fs.String("dir", "", "Explicit ray direction x,y,z")
	label := fs.String("label", "", "Annotation label for the hit")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return errors.New("usage: meshview pick [options] <file>")
	}
	mm, err := loader.LoadFile(fs.Arg(0), a.loaderOptions())
	if err != nil {
		return err
	}
	p := picking.NewPicker(mm, a.cfg.Picking)

	var (
		r mesh.Ray
		h mesh.Hit
	)
	if *origin != "" || *dir != "" {
		o, err := parseVec3(*origin)
		if err != nil {
			return fmt.Errorf("-origin: %w", err)
		}
		d, err := parseVec3(*dir)
		if err != nil {
			return fmt.Errorf("-dir: %w", err)
		}
		r = mesh.NewRay(o, d)
		if h, err = p.Pick(ctx, r); err != nil {
			return err
		}
	} else {
		w, ht := a.cfg.Preview.Width, a.cfg.Preview.Height
		if *px < 0 {
			*px = w / 2
		}
		if *py < 0 {
			*py = ht / 2
		}
		if r, h, err = p.PickPixel(ctx, a.newCamera(mm), *px, *py, w, ht); err != nil {
			return err
		}
	}

	if !h.OK {
		fmt.Fprintln(a.out, "miss")
	} else {
		var notes picking.Annotator
		ann, err := notes.Add(*label, r, h)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "hit %s\n", ann)
		fmt.Fprintf(a.out, "  group %q, distance %.6g\n", p.Target().Group(h.Mesh).Name, h.T)
	}

	st := p.Stats()
	fmt.Fprintf(a.out, "  tests %d, degenerate %d, box rejects %d, duals %t\n",
		st.Tested, st.Degenerate, st.BoxRejects, a.cfg.Picking.UseDuals)
	return nil
}

func (a *app) cmdRender(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	out := fs.String("o", "preview.png", "Output PNG path")
	var marks pixelList
	fs.Var(&marks, "mark", "Pick pixel px,py and mark the hit (repeatable)")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return errors.New("usage: meshview render [options] <file>")
	}
	mm, err := loader.LoadFile(fs.Arg(0), a.loaderOptions())
	if err != nil {
		return err
	}
	return a.render(ctx, mm, *out, marks)
}

func (a *app) render(ctx context.Context, mm *mesh.MultiMesh, out string, marks []string) error {
	opts, err := preview.OptionsFromConfig(a.cfg.Preview)
	if err != nil {
		return err
	}
	cam := a.newCamera(mm)
	p := picking.NewPicker(mm, a.cfg.Picking)

	var notes picking.Annotator
	for _, m := range marks {
		px, py, err := parsePixel(m)
		if err != nil {
			return fmt.Errorf("-mark: %w", err)
		}
		r, h, err := p.PickPixel(ctx, cam, px, py, opts.Width, opts.Height)
		if err != nil {
			return err
		}
		if ann, err := notes.Add("", r, h); err == nil {
			fmt.Fprintf(a.out, "mark %s\n", ann)
		} else {
			fmt.Fprintf(a.out, "mark %s: miss\n", m)
		}
	}
	for _, ann := range notes.List() {
		opts.Markers = append(opts.Markers, preview.Marker{Label: ann.Label, Point: ann.Point})
	}

	frame, err := preview.Render(ctx, mm, cam, opts)
	if err != nil {
		return err
	}
	if err := frame.SavePNG(out); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	fmt.Fprintf(a.out, "wrote %s (%dx%d, %s, %d pixels hit)\n", out, opts.Width, opts.Height, opts.Shading, frame.Hits)
	return nil
}

func (a *app) cmdGen(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("gen", flag.ExitOnError)
	shape := fs.String("shape", "sphere", "Surface: sphere, cylinder or cone")
	ns := fs.Int("ns", 32, "Grid divisions around")
	nt := fs.Int("nt", 16, "Grid divisions along")
	out := fs.String("o", "", "Render the surface to this PNG")
	fs.Parse(args)

	var gen func(ns, nt int) (*mesh.Mesh, error)
	switch *shape {
	case "sphere":
		gen = mesh.Sphere
	case "cylinder":
		gen = mesh.Cylinder
	case "cone":
		gen = mesh.Cone
	default:
		return fmt.Errorf("unknown shape %q", *shape)
	}

	m, err := gen(*ns, *nt)
	if err != nil {
		return err
	}
	mm := mesh.Single(*shape, m)
	fmt.Fprintf(a.out, "%s %dx%d\n", *shape, *ns, *nt)
	printModel(a.out, mm)

	if *out == "" {
		return nil
	}
	return a.render(ctx, mm, *out, nil)
}

func (a *app) cmdWatch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	out := fs.String("o", "", "Re-render to this PNG after every reload")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return errors.New("usage: meshview watch [options] <file>")
	}
	path := fs.Arg(0)

	report := func(res loader.Result) {
		if res.Err != nil {
			fmt.Fprintf(a.out, "%s: %v\n", res.Path, res.Err)
			return
		}
		fmt.Fprintf(a.out, "%s reloaded\n", res.Path)
		printModel(a.out, res.Model)
		if *out != "" {
			if err := a.render(ctx, res.Model, *out, nil); err != nil {
				fmt.Fprintf(a.out, "render: %v\n", err)
			}
		}
	}

	report(loader.LoadAll(ctx, []string{path}, a.loaderOptions())[0])
	return loader.Watch(ctx, path, a.cfg.Loader.WatchDebounce, a.loaderOptions(), report)
}
