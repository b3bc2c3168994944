package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"netops_helper/internal/admin"
	"netops_helper/internal/bus"
	"netops_helper/internal/config"
	"netops_helper/internal/handler"
	"netops_helper/internal/logger"
	"netops_helper/internal/socketmode"
	"netops_helper/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath string
		logLevel   string
		storeToken bool
	)
	flagSet := pflag.NewFlagSet("netops-bot", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to a YAML config file")
	flagSet.StringVar(&logLevel, "log-level", "", "log level, overrides log_level")
	flagSet.BoolVar(&storeToken, "store-token", false, "read an app-level token from stdin, save it to the token store and exit")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := logger.Init(cfg.LogLevel, logger.FileOptions{
		Path:       cfg.LogFile,
		MaxSizeMB:  100,
		MaxBackups: 5,
		MaxAgeDays: 28,
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := tokenStore(ctx, cfg)
	if err != nil {
		return err
	}
	if storeToken {
		return saveToken(ctx, store, cfg.TokenName)
	}

	token := cfg.SlackAppToken
	if token == "" {
		if token, err = store.GetToken(ctx, cfg.TokenName); err != nil {
			return fmt.Errorf("failed to load slack token: %w", err)
		}
	}

	httpClient := &http.Client{Timeout: cfg.CallbackTimeout}
	handshaker, err := socketmode.NewHandshaker(token, cfg.SlackAPIURL, &http.Client{Timeout: cfg.HandshakeTimeout})
	if err != nil {
		return err
	}

	slackHandler, err := handler.NewSlackHandler(bus.NewLogPublisher(), handler.Options{
		ProvisionSubject: cfg.ProvisionSubject,
		ApprovalSubject:  cfg.ApprovalSubject,
		Segments:         cfg.Segments,
	})
	if err != nil {
		return err
	}

	session := socketmode.NewSession(socketmode.SessionConfig{
		HandshakeTimeout: cfg.HandshakeTimeout,
		ReadTimeout:      cfg.ReadTimeout,
		WriteTimeout:     cfg.WriteTimeout,
	})
	responder := socketmode.NewResponder(session, httpClient)
	dispatcher, err := socketmode.NewDispatcher(handler.Commands, slackHandler, slackHandler, responder)
	if err != nil {
		return err
	}
	client := socketmode.NewClient(handshaker, session, dispatcher)

	if cfg.AdminAddr != "" {
		adminServer := admin.NewServer(cfg.AdminAddr, client)
		adminServer.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = adminServer.Shutdown(shutdownCtx)
		}()
	}

	backoff := socketmode.DefaultBackoff()
	backoff.InitialDelay = cfg.ReconnectInitialDelay
	backoff.MaxDelay = cfg.ReconnectMaxDelay
	return runLoop(ctx, client, cfg.Reconnect, backoff)
}

// runLoop runs the client once, or keeps re-handshaking when reconnect is set
func runLoop(ctx context.Context, client *socketmode.Client, reconnect bool, backoff socketmode.Backoff) error {
	log := logger.GetLogger()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	attempt := 0
	for {
		started := time.Now()
		err := client.Run(ctx)
		if ctx.Err() != nil {
			log.Info("shutting down")
			return nil
		}
		log.Error("socket session ended", zap.Error(err))

		if !reconnect || !socketmode.ShouldReconnect(err) {
			return err
		}

		attempt = backoff.Attempt(attempt, time.Since(started))
		delay := backoff.Next(attempt, rng)
		log.Info("reconnecting", zap.Int("attempt", attempt), zap.Duration("delay", delay))
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
	}
}

func tokenStore(ctx context.Context, cfg *config.Config) (storage.TokenStore, error) {
	if cfg.TokenBucketName == "" {
		return storage.NewFileTokenStore(cfg.TokenDir), nil
	}
	key, err := cfg.EncryptKey()
	if err != nil {
		return nil, fmt.Errorf("failed to decode token encryption key: %w", err)
	}
	return storage.LoadS3TokenStore(ctx, cfg.TokenBucketName, key)
}

func saveToken(ctx context.Context, store storage.TokenStore, name string) error {
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("failed to read token: %w", err)
		}
		return storage.ErrEmptyToken
	}
	if err := store.SetToken(ctx, name, scanner.Text()); err != nil {
		return err
	}
	logger.GetLogger().Info("token stored", zap.String("name", name))
	return nil
}
