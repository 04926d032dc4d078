package picking

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/meshview/internal/config"
	"github.com/Faultbox/meshview/internal/engine/camera"
	"github.com/Faultbox/meshview/internal/logger"
	"github.com/Faultbox/meshview/pkg/mesh"
)

// Picker intersects rays with a loaded model using the configured strategy.
// It is safe for concurrent use.
type Picker struct {
	target *mesh.MultiMesh
	cfg    config.PickingConfig
	log    *zap.Logger

	mu    sync.Mutex
	stats mesh.Stats
}

// NewPicker prepares target for picking. With UseDuals set the triangle duals
// are computed up front and every later pick uses them.
func NewPicker(target *mesh.MultiMesh, cfg config.PickingConfig) *Picker {
	if cfg.UseDuals {
		target.ComputeTriangleDuals()
	}
	return &Picker{
		target: target,
		cfg:    cfg,
		log:    logger.Named("picking"),
	}
}

// Target returns the model being picked.
func (p *Picker) Target() *mesh.MultiMesh {
	return p.target
}

// Pick returns the nearest hit of r.
func (p *Picker) Pick(ctx context.Context, r mesh.Ray) (mesh.Hit, error) {
	var (
		h     mesh.Hit
		err   error
		local mesh.Stats
	)
	if p.cfg.Parallel {
		h, err = p.target.IntersectRayParallelStats(ctx, r, &local)
	} else {
		h, err = p.target.IntersectRayStats(r, &local)
	}
	if err != nil {
		return mesh.NoHit(), err
	}

	p.mu.Lock()
	p.stats.Add(local)
	p.mu.Unlock()

	if h.OK {
		p.log.Debug("pick hit",
			zap.Int("mesh", h.Mesh),
			zap.Int("triangle", h.Triangle),
			zap.Float64("t", h.T))
	}
	return h, nil
}

// PickPixel casts the ray through pixel (px, py) of a width x height view of cam.
func (p *Picker) PickPixel(ctx context.Context, cam *camera.OrbitCamera, px, py, width, height int) (mesh.Ray, mesh.Hit, error) {
	aspect := float32(width) / float32(height)
	r, err := PixelRay(px, py, width, height, cam.ViewMatrix(), cam.ProjectionMatrix(aspect))
	if err != nil {
		return mesh.Ray{}, mesh.NoHit(), err
	}
	h, err := p.Pick(ctx, r)
	return r, h, err
}

// Stats returns the accumulated intersection counters.
func (p *Picker) Stats() mesh.Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}
