package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"

	"github.com/loomui/loom/common"
	"github.com/loomui/loom/internal/config"
	loomd "github.com/loomui/loom/internal/daemon"
	"github.com/loomui/loom/pkg/logger"
)

var (
	configPath string

	daemonFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "config, c",
			Usage:       "path to loom.yaml (default: user config dir)",
			Destination: &configPath,
		},
	}
)

func daemon(ctx *cli.Context) error {
	l := log.Default()
	lg := logger.NewStandardLogger(l)
	defer lg.Close()
	if configPath != "" {
		os.Setenv(common.ConfigPathEnv, configPath)
	}
	cfg, err := config.Resolve()
	if err != nil {
		lg.Error("failed to resolve config: %s", err.Error())
		printRuntimeErr(ctx, "daemon", "resolve_config", err)
		return nil
	}
	r, err := loomd.New(l, cfg, ctx.App.Version)
	if err != nil {
		lg.Error("failed to assemble daemon: %s", err.Error())
		printRuntimeErr(ctx, "daemon", "new_runner", err)
		return nil
	}
	sctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	lg.Info("loom daemon %s starting, tick interval %s", ctx.App.Version, cfg.TickInterval)
	if err := r.Start(sctx); err != nil {
		lg.Error("daemon exited: %s", err.Error())
		return err
	}
	lg.Info("daemon stopped")
	return nil
}
