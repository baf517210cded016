package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/nbclient/memcring/internal/client"
	"github.com/nbclient/memcring/internal/config"
	"github.com/nbclient/memcring/internal/hoststats"
	"github.com/nbclient/memcring/internal/janitor"
	"github.com/nbclient/memcring/internal/logging"
	"github.com/nbclient/memcring/internal/valuecodec"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to a YAML config file (overrides -i/-p/-r)")
	hostIP := flag.String("i", "127.0.0.1", "backend host (single-backend mode)")
	hostPort := flag.String("p", "11211", "backend port (single-backend mode)")
	replicas := flag.Int("r", 1, "replication factor R (single-backend mode)")
	key := flag.String("k", "", "key")
	value := flag.String("m", "", "value (for -s)")
	doGet := flag.Bool("g", false, "GET the key")
	doSet := flag.Bool("s", false, "SET the key to the value")
	doDelete := flag.Bool("d", false, "DELETE the key")
	doQuit := flag.Bool("q", false, "QUIT the connection")
	daemon := flag.Bool("daemon", false, "start the janitor and host-stats reporter and block")
	help := flag.Bool("h", false, "show usage")
	flag.Parse()

	if *help {
		flag.Usage()
		return 0
	}

	var cfg *config.Config
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
			return int(client.KindAllocation)
		}
		cfg = loaded
	} else {
		backends := []config.BackendConfig{{Host: *hostIP, Port: *hostPort}}
		// Trailing positional ip:port arguments, when given, form the ring in
		// place of the single -i/-p backend, mirroring the source's parsing of
		// one-or-more trailing ip:port argv entries into the backend list.
		if extra := flag.Args(); len(extra) > 0 {
			ringBackends, err := parseBackendArgs(extra)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error parsing backend arguments: %v\n", err)
				return int(client.KindAllocation)
			}
			backends = ringBackends
		}
		cfg = &config.Config{
			Replicas: *replicas,
			Backends: backends,
			Logging:  config.LoggingConfig{Level: "info", Format: "json"},
			Janitor:  config.JanitorConfig{Schedule: "@every 1m"},
		}
	}

	logger, logCloser := logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format, "")
	defer logCloser.Close()

	backends := make([]client.Backend, len(cfg.Backends))
	for i, b := range cfg.Backends {
		backends[i] = client.Backend{Host: b.Host, Port: b.Port}
	}

	c, err := client.New(client.Options{
		Backends:               backends,
		Replicas:               cfg.Replicas,
		Codec:                  valuecodec.New(cfg.Compression.Enabled, int(cfg.Compression.MinSizeRaw), cfg.Compression.Parallel),
		ReconnectRatePerSecond: cfg.Reconnect.RatePerSecond,
		ReconnectBurst:         cfg.Reconnect.Burst,
		Logger:                 logger,
	})
	if err != nil {
		logger.Error("client initialization failed", "error", err)
		return exitCodeFor(err)
	}
	defer c.Close()

	if *daemon {
		return runDaemon(c, cfg, logger)
	}

	return runOneShot(c, *doGet, *doSet, *doDelete, *doQuit, *key, *value, logger)
}

// parseBackendArgs parses trailing positional "ip:port" arguments into ring
// backend entries, in argument order.
func parseBackendArgs(args []string) ([]config.BackendConfig, error) {
	backends := make([]config.BackendConfig, 0, len(args))
	for _, arg := range args {
		host, port, err := net.SplitHostPort(arg)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", arg, err)
		}
		backends = append(backends, config.BackendConfig{Host: host, Port: port})
	}
	return backends, nil
}

func runOneShot(c *client.Client, doGet, doSet, doDelete, doQuit bool, key, value string, logger *slog.Logger) int {
	switch {
	case doGet:
		res, err := c.Get([]byte(key))
		if err != nil {
			logger.Error("get failed", "key", key, "error", err)
			return exitCodeFor(err)
		}
		fmt.Println(string(res.Value))
		return 0
	case doSet:
		if err := c.Set(client.SetParams{Key: []byte(key), Value: []byte(value)}); err != nil {
			logger.Error("set failed", "key", key, "error", err)
			return exitCodeFor(err)
		}
		return 0
	case doDelete:
		if err := c.Delete([]byte(key)); err != nil {
			logger.Error("delete failed", "key", key, "error", err)
			return exitCodeFor(err)
		}
		return 0
	case doQuit:
		if err := c.Quit(); err != nil {
			logger.Error("quit failed", "error", err)
			return exitCodeFor(err)
		}
		return 0
	default:
		flag.Usage()
		return 0
	}
}

func runDaemon(c *client.Client, cfg *config.Config, logger *slog.Logger) int {
	j, err := janitor.New(cfg.Janitor.Schedule, c, logger)
	if err != nil {
		logger.Error("janitor setup failed", "error", err)
		return int(client.KindAllocation)
	}
	j.Start()
	defer j.Stop(context.Background())

	stats := hoststats.New(logger, 0)
	stats.Start()
	defer stats.Stop()

	logger.Info("memcring daemon started", "replicas", c.Replicas(), "backends", c.Backends())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	<-sigCh
	logger.Info("memcring daemon stopping")
	return 0
}

// exitCodeFor maps an operation error to a process exit code: the closed
// ErrorKind enum, or 1 for an error this client didn't originate.
func exitCodeFor(err error) int {
	if oe, ok := err.(*client.OpError); ok {
		return int(oe.Kind)
	}
	return 1
}
