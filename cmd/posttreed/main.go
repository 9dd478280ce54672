package main

import (
	"flag"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"posttree/config"
	"posttree/native/post"
	"posttree/observability/logging"
	"posttree/rpc"
	"posttree/storage"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("POSTTREE_ENV"))
	logger := logging.Setup("posttreed", env)

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DataDir)
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	engine := post.NewEngine(db)
	if err := bootstrap(engine, cfg, logger); err != nil {
		logger.Error("failed to bootstrap post", slog.Any("error", err))
		os.Exit(1)
	}

	go serveMetrics(cfg.MetricsAddress, logger)

	server := rpc.NewServer(engine, logger)
	if err := server.Start(cfg.RPCAddress); err != nil {
		logger.Error("rpc server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

// bootstrap instantiates the post on first boot; later boots are no-ops.
func bootstrap(engine *post.Engine, cfg *config.Config, logger *slog.Logger) error {
	instantiated, err := engine.Instantiated()
	if err != nil {
		return err
	}
	if instantiated {
		return nil
	}
	operator := post.Address(strings.TrimSpace(cfg.Post.Operator))
	if operator == "" {
		operator = "operator"
	}
	err = engine.Instantiate(operator, post.InstantiateMsg{
		Config:   cfg.EngineConfig(),
		Operator: operator,
		Root: post.NodeInitArgs{
			Title: cfg.Post.RootTitle,
			Body:  cfg.Post.RootBody,
			Tags:  cfg.Post.RootTags,
		},
	})
	if err != nil && !post.IsAlreadyInstantiated(err) {
		return err
	}
	logger.Info("post instantiated", slog.String("operator", string(operator)))
	return nil
}

func serveMetrics(addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	logger.Info("starting metrics server", slog.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics server stopped", slog.Any("error", err))
	}
}
