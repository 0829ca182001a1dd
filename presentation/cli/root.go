package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"web_locator/application/keywords"
	"web_locator/domain/interfaces"
	"web_locator/infrastructure/browser"
	"web_locator/infrastructure/config"
)

var (
	flagConfig   string
	flagBackend  string
	flagHeadless bool
	flagTimeout  int
	flagURL      string
)

// session is what a browser-touching command needs from a backend.
type session interface {
	interfaces.Querier
	interfaces.Interactor
	Navigate(ctx context.Context, url string) error
	Close() error
}

func newLogger(cfg config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	return logger
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return config.Config{}, err
	}
	if cmd.Flags().Changed("backend") {
		cfg.Backend = flagBackend
	}
	if cmd.Flags().Changed("headless") {
		cfg.Headless = flagHeadless
	}
	if cmd.Flags().Changed("timeout") {
		cfg.TimeoutMs = flagTimeout
	}
	if flagURL != "" {
		cfg.BaseURL = flagURL
	}
	return cfg, nil
}

func openSession(cfg config.Config, logger *logrus.Logger) (session, error) {
	switch cfg.Backend {
	case config.BackendSelenium:
		return browser.NewSeleniumBrowser(cfg, logger)
	default:
		return browser.NewPlaywrightBrowser(cfg, logger)
	}
}

// withSession runs fn against a freshly opened, navigated session.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, kw *keywords.Keywords) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.BaseURL == "" {
		return fmt.Errorf("no page URL given: pass --url or set base_url in the config")
	}
	logger := newLogger(cfg)

	sess, err := openSession(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize browser: %w", err)
	}
	defer sess.Close()

	ctx := cmd.Context()
	if err := sess.Navigate(ctx, cfg.BaseURL); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", cfg.BaseURL, err)
	}
	return fn(ctx, keywords.New(sess, sess, logger))
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "web_locator",
		Short:        "Parse and resolve element locators against live pages",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "path to YAML config file")
	root.PersistentFlags().StringVar(&flagBackend, "backend", config.BackendPlaywright, "browser backend: playwright or selenium")
	root.PersistentFlags().BoolVar(&flagHeadless, "headless", true, "run the browser headless")
	root.PersistentFlags().IntVar(&flagTimeout, "timeout", 5000, "default wait timeout in milliseconds")
	root.PersistentFlags().StringVar(&flagURL, "url", "", "page URL to run the query against")

	root.AddCommand(newParseCmd(), newCountCmd(), newTextCmd(), newClickCmd())
	return root
}

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse LOCATOR",
		Short: "Parse a locator string and print the query plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(cfg)
			kw := keywords.New(nil, nil, logger)
			plan := kw.Engine().Parse(args[0])

			out, err := json.MarshalIndent(plan, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}

func newCountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count LOCATOR",
		Short: "Count elements matching a locator on a live page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, kw *keywords.Keywords) error {
				n, err := kw.Count(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), n)
				return nil
			})
		},
	}
}

func newTextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "text LOCATOR",
		Short: "Print the text content of the element a locator resolves to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, kw *keywords.Keywords) error {
				text, err := kw.TextOf(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			})
		},
	}
}

func newClickCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "click LOCATOR",
		Short: "Resolve a locator and click the element",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, kw *keywords.Keywords) error {
				return kw.Click(ctx, args[0])
			})
		},
	}
}

// Execute - runs the CLI.
func Execute() error {
	return newRootCmd().ExecuteContext(context.Background())
}

// Main - entry point helper keeping main.go thin.
func Main() {
	if err := Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
