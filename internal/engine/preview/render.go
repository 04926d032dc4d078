package preview

import (
	"context"
	"errors"
	"fmt"
	"image"
	"runtime"
	"sync"
	"time"

	"github.com/fogleman/gg"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/meshview/internal/config"
	"github.com/Faultbox/meshview/internal/engine/camera"
	"github.com/Faultbox/meshview/internal/engine/picking"
	"github.com/Faultbox/meshview/internal/logger"
	"github.com/Faultbox/meshview/pkg/mesh"
)

// Marker is a labeled world-space point drawn over the image.
type Marker struct {
	Label string
	Point [3]float32
}

// Options controls one render.
type Options struct {
	Width, Height int
	Shading       Shading
	Background    string // hex color
	BBoxOverlay   bool
	Markers       []Marker
	Workers       int // rows rendered concurrently, 0 means GOMAXPROCS
}

// OptionsFromConfig converts the preview section of the configuration.
func OptionsFromConfig(cfg config.PreviewConfig) (Options, error) {
	s, err := ParseShading(cfg.Shading)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Width:       cfg.Width,
		Height:      cfg.Height,
		Shading:     s,
		Background:  cfg.Background,
		BBoxOverlay: cfg.BBoxOverlay,
	}, nil
}

// Frame is a finished render.
type Frame struct {
	dc    *gg.Context
	Hits  int // pixels that hit the model
	Stats mesh.Stats
}

// Image returns the rendered image.
func (f *Frame) Image() image.Image {
	return f.dc.Image()
}

// SavePNG writes the image to path.
func (f *Frame) SavePNG(path string) error {
	return f.dc.SavePNG(path)
}

// Render ray casts model as seen by cam. Each pixel takes the nearest hit over
// all sub-meshes; rows are shaded concurrently.
func Render(ctx context.Context, model *mesh.MultiMesh, cam *camera.OrbitCamera, opts Options) (*Frame, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid preview size %dx%d", opts.Width, opts.Height)
	}
	if model.Len() == 0 {
		return nil, mesh.ErrEmptyMesh
	}
	start := time.Now()

	dc := gg.NewContext(opts.Width, opts.Height)
	dc.SetHexColor(opts.Background)
	dc.Clear()
	img, ok := dc.Image().(*image.RGBA)
	if !ok {
		return nil, errors.New("preview context is not backed by RGBA")
	}

	view := cam.ViewMatrix()
	proj := cam.ProjectionMatrix(float32(opts.Width) / float32(opts.Height))
	lo, hi := depthRange(model, cam)

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	frame := &Frame{dc: dc}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for py := 0; py < opts.Height; py++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var st mesh.Stats
			hits := 0
			for px := 0; px < opts.Width; px++ {
				r, err := picking.PixelRay(px, py, opts.Width, opts.Height, view, proj)
				if err != nil {
					return err
				}
				h, err := model.IntersectRayStats(r, &st)
				if err != nil {
					return err
				}
				if !h.OK {
					continue
				}
				hits++
				img.SetRGBA(px, py, shade(opts.Shading, hitContext{
					ray:   r,
					hit:   h,
					mesh:  model.Group(h.Mesh).Mesh,
					depth: (h.T - lo) / (hi - lo),
				}))
			}
			mu.Lock()
			frame.Hits += hits
			frame.Stats.Add(st)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	vp := cam.ViewProjection(opts.Width, opts.Height)
	if opts.BBoxOverlay {
		drawWireframe(dc, vp, model.BBox().WireframeVertices())
	}
	drawMarkers(dc, vp, opts.Markers)

	logger.Named("preview").Debug("rendered",
		zap.Int("width", opts.Width),
		zap.Int("height", opts.Height),
		zap.Stringer("shading", opts.Shading),
		zap.Int("hits", frame.Hits),
		zap.Int("triangle_tests", frame.Stats.Tested),
		zap.Duration("elapsed", time.Since(start)))
	return frame, nil
}

// depthRange bounds the hit distances from the camera to the model's bounding sphere.
func depthRange(model *mesh.MultiMesh, cam *camera.OrbitCamera) (lo, hi float64) {
	b := model.BBox()
	c, e := b.Center(), b.Extent()
	center := mgl32.Vec3{c[0], c[1], c[2]}
	radius := float64(mgl32.Vec3{e[0], e[1], e[2]}.Len()) / 2
	dist := float64(cam.Position().Sub(center).Len())

	lo = max(0, dist-radius)
	hi = dist + radius
	if hi-lo < 1e-9 {
		hi = lo + 1
	}
	return lo, hi
}

// project maps a world point to pixel coordinates. Points behind the camera are rejected.
func project(vp mgl32.Mat4, w, h int, p [3]float32) (x, y float64, ok bool) {
	clip := vp.Mul4x1(mgl32.Vec4{p[0], p[1], p[2], 1})
	if clip.W() <= 0 {
		return 0, 0, false
	}
	ndc := clip.Vec3().Mul(1 / clip.W())
	x = float64(ndc.X()+1) / 2 * float64(w)
	y = float64(1-ndc.Y()) / 2 * float64(h)
	return x, y, true
}

func drawWireframe(dc *gg.Context, vp mgl32.Mat4, verts []float32) {
	w, h := dc.Width(), dc.Height()
	for i := 0; i+6 <= len(verts); i += 6 {
		x0, y0, ok0 := project(vp, w, h, [3]float32(verts[i:i+3]))
		x1, y1, ok1 := project(vp, w, h, [3]float32(verts[i+3:i+6]))
		if ok0 && ok1 {
			dc.DrawLine(x0, y0, x1, y1)
		}
	}
	dc.SetHexColor("#f0c040")
	dc.SetLineWidth(1)
	dc.Stroke()
}

func drawMarkers(dc *gg.Context, vp mgl32.Mat4, markers []Marker) {
	w, h := dc.Width(), dc.Height()
	for _, m := range markers {
		x, y, ok := project(vp, w, h, m.Point)
		if !ok {
			continue
		}
		dc.SetHexColor("#e04040")
		dc.DrawCircle(x, y, 3)
		dc.Fill()
		if m.Label != "" {
			dc.SetHexColor("#ffffff")
			dc.DrawString(m.Label, x+5, y-5)
		}
	}
}
