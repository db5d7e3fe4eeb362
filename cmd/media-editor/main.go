// Command media-editor opens an editing session on one asset of a running
// media API, applies the requested adjustments and runs one save action.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/media-editor/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zlog.Init()

	fs := pflag.NewFlagSet("media-editor", pflag.ExitOnError)
	opts := registerFlags(fs)
	configPath := fs.String("config", "", "path to the config file (default ./config/config.yml when present)")
	_ = fs.Parse(os.Args[1:])

	v := viper.New()
	for key, flag := range map[string]string{
		"editor.gateway_url": "gateway",
		"editor.timeout":     "timeout",
		"log.level":          "log-level",
	} {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			zlog.Logger.Fatal().Err(err).Str("flag", flag).Msg("failed to bind flag")
		}
	}

	cfg, err := config.Load(v, *configPath)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to load config")
	}

	if level, err := zerolog.ParseLevel(cfg.Log.Level); err == nil && level != zerolog.NoLevel {
		zerolog.SetGlobalLevel(level)
	}

	if err := opts.resolve(fs); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		os.Exit(2)
	}

	result, err := run(ctx, cfg, opts)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("editor failed")
	}

	if result != nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to print result")
		}
	}
}
