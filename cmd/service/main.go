package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/blogsave/internal"
	"github.com/2beens/blogsave/internal/config"
	"github.com/2beens/blogsave/internal/logging"
	"github.com/2beens/blogsave/pkg"
)

func main() {
	fmt.Println("starting ...")

	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	flag.Parse()

	log.Warnf("---->> running in [%s] environment", *env)

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		panic(err)
	}

	sentryDSN := os.Getenv("SENTRY_DSN")
	logging.Setup(logging.LoggerSetupParams{
		ServiceName:   "blogsave",
		Environment:   cfg.Environment,
		LogFileName:   cfg.LogsPath,
		LogToStdout:   cfg.LogToStdout,
		LogLevel:      cfg.LogLevel,
		LogFormatJSON: false,
		SentryEnabled: cfg.SentryEnabled,
		SentryDSN:     sentryDSN,
		Tags: map[string]string{
			"store_backend":      cfg.StoreBackend,
			"generation_backend": cfg.GenerationBackend,
		},
	})

	log.Debugf("using port: %d", cfg.Port)
	log.Debugf("using server logs path: [%s]", cfg.LogsPath)
	log.Debugf("using store backend: [%s], generation backend: [%s]", cfg.StoreBackend, cfg.GenerationBackend)

	versionInfo, err := tryGetLastCommitHash()
	if err != nil {
		log.Tracef("failed to get last commit hash / version info: %s", err)
	} else {
		log.Tracef("running version: %s", versionInfo)
	}

	redisPassword := os.Getenv("BLOGSAVE_REDIS_PASS")
	if cfg.StoreBackend == config.StoreBackendRedis && redisPassword == "" {
		log.Errorf("redis password not set. use BLOGSAVE_REDIS_PASS")
	}

	tgiToken := os.Getenv("BLOGSAVE_TGI_TOKEN")
	if cfg.GenerationBackend == config.GenerationBackendTGI && tgiToken == "" {
		log.Debugln("tgi token not set, requests to the tgi server are not authenticated")
	}

	genAIAPIKey := os.Getenv("GEMINI_API_KEY")
	if cfg.GenerationBackend == config.GenerationBackendGenAI && genAIAPIKey == "" {
		log.Errorf("genai API key not set, use GEMINI_API_KEY env var to set it")
	}

	if otelServiceName := os.Getenv("OTEL_SERVICE_NAME"); otelServiceName == "" {
		log.Warnln("OTEL_SERVICE_NAME env var not set")
	}

	honeycombEnabled := os.Getenv("HONEYCOMB_ENABLED") == "true"
	if honeycombEnabled {
		if honeycombApiKey := os.Getenv("HONEYCOMB_API_KEY"); honeycombApiKey == "" {
			log.Warnln("HONEYCOMB_API_KEY env var not set")
		}
	} else {
		log.Debugln("honeycomb tracing disabled")
	}

	if cfg.StoreBackend == config.StoreBackendFirebase && cfg.FirebaseCredentialsFile != "" {
		exists, err := pkg.PathExists(cfg.FirebaseCredentialsFile, false)
		if err != nil || !exists {
			log.Fatalf("firebase credentials file [%s] not found: %v", cfg.FirebaseCredentialsFile, err)
		}
	}

	chOsInterrupt := make(chan os.Signal, 1)
	signal.Notify(chOsInterrupt, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())

	server, err := internal.NewServer(
		ctx,
		internal.NewServerParams{
			Config:                  cfg,
			RedisPassword:           redisPassword,
			TGIToken:                tgiToken,
			GenAIAPIKey:             genAIAPIKey,
			HoneycombTracingEnabled: honeycombEnabled,
			VersionInfo:             versionInfo,
		},
	)
	if err != nil {
		log.Fatalf("new server: %s", err)
	}

	server.Serve(cfg.Host, cfg.Port)

	receivedSig := <-chOsInterrupt
	log.Warnf("signal [%s] received, killing everything ...", receivedSig)
	cancel()

	// go to sleep 🥱
	server.GracefulShutdown()
}

// tryGetLastCommitHash will try to get the last commit hash
// assumes that the built main executable is in project root
func tryGetLastCommitHash() (string, error) {
	cmd := exec.Command("/usr/bin/git", "rev-parse", "HEAD")
	stdout, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(pkg.BytesToString(stdout)), nil
}
