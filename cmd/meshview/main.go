// meshview is a command-line viewer for PLY, OBJ and 3MF meshes: it prints
// model information, picks surface points with rays and renders previews.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/meshview/internal/config"
	"github.com/Faultbox/meshview/internal/logger"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	err = logger.InitWithOptions(logger.Options{
		Level:   cfg.Logging.Level,
		JSON:    cfg.Logging.JSON,
		Console: os.Stderr,
		File: logger.FileConfig{
			Path:       cfg.Logging.LogFile,
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAgeDays: cfg.Logging.MaxAgeDays,
			Compress:   cfg.Logging.Compress,
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger.Sugar.Debugf("config: %+v", cfg)

	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{cfg: cfg, out: os.Stdout}
	command, rest := args[0], args[1:]

	switch command {
	case "info":
		err = a.cmdInfo(ctx, rest)
	case "pick":
		err = a.cmdPick(ctx, rest)
	case "render":
		err = a.cmdRender(ctx, rest)
	case "gen":
		err = a.cmdGen(ctx, rest)
	case "watch":
		err = a.cmdWatch(ctx, rest)
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logger.Sync()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`meshview - triangle mesh viewer and picker

Usage:
  meshview [global flags] <command> [options]

Commands:
  info <file>...                       Show groups, counts and bounds
  pick [-px N -py N | -origin x,y,z -dir x,y,z] <file>
                                       Intersect a ray with the model
  render [-o out.png] [-mark px,py] <file>
                                       Ray cast a preview image
  gen [-shape sphere|cylinder|cone] [-ns N] [-nt N] [-o out.png]
                                       Generate a parametric surface
  watch [-o out.png] <file>            Reload (and re-render) on change

Global flags:
  -config path   -debug   -log-file path   -width N   -height N
  -shading flat|normal|depth|checker   -brute   -parallel

Examples:
  meshview info bunny.ply scene.obj
  meshview pick -px 320 -py 240 bunny.ply
  meshview -shading depth render -o bunny.png bunny.ply
  meshview gen -shape cone -ns 32 -nt 8 -o cone.png`)
}
