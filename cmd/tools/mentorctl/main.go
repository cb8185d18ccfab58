package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zhouzirui/startup-mentor/backend/internal/config"
	"github.com/zhouzirui/startup-mentor/backend/internal/logging"
	"github.com/zhouzirui/startup-mentor/backend/internal/model/mentor"
	"github.com/zhouzirui/startup-mentor/backend/internal/service/ai"
)

var (
	backendFlag string
	catalogFlag string
	verboseFlag bool
)

// app holds what every subcommand needs once the root pre-run has finished.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	mentors   mentor.Store
	transport ai.Transport
}

var current app

var rootCmd = &cobra.Command{
	Use:   "mentorctl",
	Short: "Talk to startup mentors from the terminal",
	Long: `mentorctl drives the mentor conversation controller without the HTTP server.

Available subcommands:
  mentors - List or search the mentor directory
  chat    - Open an interactive streaming chat with one mentor
  dossier - Generate the one-shot structured mentorship dossier`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "completion backend override (ark, gemini, openai, anthropic, scripted)")
	rootCmd.PersistentFlags().StringVar(&catalogFlag, "catalog", "", "mentor catalog YAML file (defaults to MENTOR_CATALOG or the built-in list)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(mentorsCmd, chatCmd, dossierCmd)
}

func setup(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()

	if backendFlag != "" {
		os.Setenv("MENTOR_BACKEND", backendFlag)
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if catalogFlag != "" {
		cfg.Catalog.Path = catalogFlag
	}

	logCfg := config.LogConfig{Level: "warn", Format: "console"}
	if verboseFlag {
		logCfg.Level = "debug"
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(logger)

	mentors, err := mentor.LoadCatalog(cfg.Catalog.Path)
	if err != nil {
		return err
	}

	// mentors 子命令不需要补全后端
	var transport ai.Transport
	if cmd.Name() != mentorsCmd.Name() {
		transport, err = ai.NewTransport(cmd.Context(), cfg.AI, logger)
		if err != nil {
			return err
		}
	}

	current = app{
		cfg:       cfg,
		logger:    logger,
		mentors:   mentor.NewMemoryStore(mentors),
		transport: transport,
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}
}
