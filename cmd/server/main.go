package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"wang-painter/internal/api"
	"wang-painter/internal/canvas"
	"wang-painter/internal/config"
	"wang-painter/internal/logger"
	"wang-painter/internal/maps"
	"wang-painter/internal/server"
	"wang-painter/internal/tileset"
)

func main() {
	cfg := config.DefaultConfig()

	configFile := flag.String("config", "", "JSON config file")
	flag.StringVar(&cfg.SSHAddr, "ssh", cfg.SSHAddr, "SSH listen address")
	flag.StringVar(&cfg.HTTPAddr, "http", cfg.HTTPAddr, "HTTP API listen address (empty disables)")
	flag.StringVar(&cfg.HostKey, "host-key", cfg.HostKey, "SSH host key file, created if missing")
	flag.StringVar(&cfg.TileSetDir, "tilesets", cfg.TileSetDir, "directory of tile set files")
	flag.StringVar(&cfg.TileSet, "tileset", cfg.TileSet, "tile set to paint with")
	flag.StringVar(&cfg.MapFile, "map", cfg.MapFile, "map file to open instead of generating one")
	flag.IntVar(&cfg.Width, "width", cfg.Width, "generated map width")
	flag.IntVar(&cfg.Height, "height", cfg.Height, "generated map height")
	flag.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "generation seed")
	flag.StringVar((*string)(&cfg.Layout.Orientation), "orientation", string(cfg.Layout.Orientation), "map layout: orthogonal or staggered")
	flag.BoolVar(&cfg.Debug, "debug", cfg.Debug, "debug logging")
	flag.Parse()

	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
	if *configFile != "" {
		fromFile, err := config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		config.Merge(cfg, fromFile, explicit)
	}
	config.ApplyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	l, err := logger.New(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: logger: %v\n", err)
		os.Exit(1)
	}
	defer l.Sync()
	zap.ReplaceGlobals(l)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx = logger.NewContext(ctx, l)

	if err := run(ctx, cfg); err != nil {
		l.Fatal("server", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	l := logger.L(ctx)

	// Generate host key if it doesn't exist
	if err := ensureHostKey(ctx, cfg.HostKey); err != nil {
		return fmt.Errorf("host key: %w", err)
	}

	sets := loadTileSets(ctx, cfg.TileSetDir)
	name := cfg.TileSet
	if name == "" {
		name = tileset.Default().Name
	}
	set, ok := sets[name]
	if !ok {
		return fmt.Errorf("unknown tile set %q", name)
	}

	board, err := openBoard(ctx, cfg, set)
	if err != nil {
		return err
	}

	loop := canvas.NewLoop(ctx, board)
	go loop.Run(ctx)
	defer loop.Stop()

	errCh := make(chan error, 2)

	var httpServer *http.Server
	if cfg.HTTPAddr != "" {
		httpServer = &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           api.SetupRoutes(l.Named("http"), sets),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			l.Info("HTTP API listening", zap.String("addr", cfg.HTTPAddr))
			if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("http: %w", err)
			}
		}()
	}

	sshServer := server.NewSSHServer(ctx, cfg.SSHAddr, cfg.HostKey, loop)
	go func() {
		if err := sshServer.Start(); err != nil {
			errCh <- fmt.Errorf("ssh: %w", err)
		}
	}()
	l.Info("connect with: ssh -t -p <port> YourName@localhost",
		zap.String("ssh", cfg.SSHAddr),
		zap.String("tileset", set.Name),
		zap.String("map", board.Map.Name),
	)

	select {
	case <-ctx.Done():
	case err = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if httpServer != nil {
		httpServer.Shutdown(shutdownCtx)
	}
	sshServer.Shutdown(shutdownCtx)
	l.Info("stopped")
	return err
}

// loadTileSets reads every tile set in dir. The built-in set is always
// available, also when dir cannot be read.
func loadTileSets(ctx context.Context, dir string) map[string]*tileset.TileSet {
	l := logger.L(ctx)
	sets, err := tileset.LoadDir(dir)
	if err != nil {
		l.Warn("could not load tile sets, using the built-in set", zap.String("dir", dir), zap.Error(err))
		sets = make(map[string]*tileset.TileSet)
	}
	def := tileset.Default()
	if _, exists := sets[def.Name]; !exists {
		sets[def.Name] = def
	}
	for name, s := range sets {
		l.Info("tile set loaded", zap.String("name", name), zap.Int("tiles", len(s.Tiles)), zap.Bool("complete", s.IsComplete()))
	}
	return sets
}

// openBoard loads the configured map, or generates one.
func openBoard(ctx context.Context, cfg *config.Config, set *tileset.TileSet) (*canvas.Board, error) {
	var m *maps.Map
	if cfg.MapFile != "" {
		var err error
		if m, err = maps.LoadMap(cfg.MapFile); err != nil {
			return nil, err
		}
	} else {
		m = maps.New("Canvas", cfg.Width, cfg.Height, set.Name, cfg.Layout)
	}

	board, err := canvas.NewBoard(m, set)
	if err != nil {
		return nil, err
	}
	if cfg.MapFile == "" {
		if _, err := board.Regenerate(ctx, cfg.Seed); err != nil {
			return nil, err
		}
	}
	return board, nil
}

func ensureHostKey(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil // key already exists
	}

	logger.L(ctx).Info("generating new host key", zap.String("path", path))
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return err
	}

	keyBytes, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return err
	}

	pemBlock := &pem.Block{
		Type:  "PRIVATE KEY",
		Bytes: keyBytes,
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	return pem.Encode(f, pemBlock)
}
