package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/nhle/daily-checkin/internal/app"
	"github.com/nhle/daily-checkin/internal/credential"
	"github.com/nhle/daily-checkin/internal/logging"
	"github.com/nhle/daily-checkin/internal/model"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "checkin:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	// A missing .env is the normal case.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	fset := flag.NewFlagSet("checkin", flag.ContinueOnError)
	configPath := fset.String("config", model.DefaultConfigPath(), "path to the YAML config file")
	view := fset.String("view", "checkin", "screen to open: checkin or dashboard")
	apiURL := fset.String("api", "", "override api.base_url")
	logLevel := fset.String("log-level", "", "override log.level (debug, info, warn, error)")
	if err := fset.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	initialView, err := app.ParseViewState(*view)
	if err != nil {
		return err
	}

	cfg, err := model.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	if *apiURL != "" {
		if err := model.ValidateBaseURL(*apiURL); err != nil {
			return err
		}
		cfg.API.BaseURL = *apiURL
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	token := os.Getenv("CHECKIN_API_TOKEN")
	if token == "" {
		token, err = credential.Token()
		if err != nil {
			// The token is optional; run unauthenticated.
			logger.Warn("API token unavailable", zap.Error(err))
			token = ""
		}
	}

	logger.Info("starting",
		zap.String("config", *configPath),
		zap.String("base_url", cfg.API.BaseURL),
		zap.String("view", *view),
		zap.Bool("token", token != ""),
	)

	root := app.New(app.Options{
		Config:      cfg,
		ConfigPath:  *configPath,
		Token:       token,
		Logger:      logger,
		InitialView: initialView,
	})

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.Display.Mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}

	if _, err := tea.NewProgram(root, opts...).Run(); err != nil {
		logger.Error("program exited with error", zap.Error(err))
		return err
	}

	logger.Info("stopped")
	return nil
}
