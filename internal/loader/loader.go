// Package loader reads mesh files into pick-ready models and keeps them fresh.
package loader

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/meshview/internal/config"
	"github.com/Faultbox/meshview/internal/logger"
	"github.com/Faultbox/meshview/pkg/formats"
	"github.com/Faultbox/meshview/pkg/mesh"
)

// ErrUnsupportedFormat is returned for file extensions no parser handles.
var ErrUnsupportedFormat = errors.New("unsupported mesh format")

// Format identifies a mesh file format.
type Format int

// Supported formats.
const (
	FormatPLY Format = iota + 1
	FormatOBJ
	Format3MF
)

func (f Format) String() string {
	switch f {
	case FormatPLY:
		return "ply"
	case FormatOBJ:
		return "obj"
	case Format3MF:
		return "3mf"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// DetectFormat picks the format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ply":
		return FormatPLY, nil
	case ".obj":
		return FormatOBJ, nil
	case ".3mf":
		return Format3MF, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Options controls post-processing after a file is parsed.
type Options struct {
	ComputeNormals bool
}

// OptionsFromConfig converts the loader section of the configuration.
func OptionsFromConfig(cfg config.LoaderConfig) Options {
	return Options{ComputeNormals: cfg.ComputeNormals}
}

// Result is the outcome of loading one file.
type Result struct {
	Path    string
	Format  Format
	Model   *mesh.MultiMesh
	Err     error
	Elapsed time.Duration
}

// LoadFile parses path into a model. Single-mesh formats become a one-group
// model named after the file.
func LoadFile(path string, opts Options) (*mesh.MultiMesh, error) {
	res := load(path, opts)
	return res.Model, res.Err
}

func load(path string, opts Options) Result {
	start := time.Now()
	log := logger.Named("loader").With(zap.String("file", path))

	res := Result{Path: path}
	res.Format, res.Err = DetectFormat(path)
	if res.Err == nil {
		res.Model, res.Err = parse(path, res.Format)
	}
	res.Elapsed = time.Since(start)

	if res.Err != nil {
		var pe *formats.ParseError
		if errors.As(res.Err, &pe) {
			log.Warn("parse failed",
				zap.Int("line", pe.LineNo),
				zap.String("text", pe.Line),
				zap.String("error", pe.Msg))
		} else {
			log.Warn("load failed", zap.Error(res.Err))
		}
		res.Model = nil
		return res
	}

	if opts.ComputeNormals {
		res.Model.ComputeVertexNormals()
	}
	log.Info("loaded",
		zap.Stringer("format", res.Format),
		zap.Int("groups", res.Model.Len()),
		zap.Int("vertices", res.Model.NumVerts()),
		zap.Int("triangles", res.Model.NumTris()),
		zap.Duration("elapsed", res.Elapsed))
	return res
}

func parse(path string, f Format) (*mesh.MultiMesh, error) {
	switch f {
	case FormatPLY:
		raw, err := formats.ParsePLYFile(path)
		if err != nil {
			return nil, err
		}
		m, err := raw.Mesh()
		if err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		return mesh.Single(name, m), nil

	case FormatOBJ:
		model, err := formats.ParseOBJFile(path)
		if err != nil {
			return nil, err
		}
		return model.MultiMesh()

	case Format3MF:
		model, err := formats.Parse3MFFile(path)
		if err != nil {
			return nil, err
		}
		return model.MultiMesh()
	}
	return nil, ErrUnsupportedFormat
}

// LoadAll loads paths one after another. A failing file is reported in its
// Result and the queue moves on. Cancelling ctx stops before the next file.
func LoadAll(ctx context.Context, paths []string, opts Options) []Result {
	results := make([]Result, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			results = append(results, Result{Path: p, Err: err})
			continue
		}
		results = append(results, load(p, opts))
	}
	return results
}
