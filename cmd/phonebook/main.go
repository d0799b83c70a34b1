package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/davidleathers/contact-directory/internal/assistant"
	"github.com/davidleathers/contact-directory/internal/domain/contact"
	"github.com/davidleathers/contact-directory/internal/infrastructure/config"
	"github.com/davidleathers/contact-directory/internal/infrastructure/telemetry"
	"github.com/davidleathers/contact-directory/internal/metrics"
	"github.com/davidleathers/contact-directory/internal/service/directory"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// CLI is the top-level command structure for phonebook.
type CLI struct {
	Version kong.VersionFlag `help:"Show version." short:"V"`
	Demo    DemoCmd          `cmd:"" help:"Run the example address book script."`
	Shell   ShellCmd         `cmd:"" default:"1" help:"Start the interactive assistant."`
}

// DemoCmd walks through the example address book session.
type DemoCmd struct{}

// Run executes the demo command.
func (d *DemoCmd) Run() error {
	return d.run(os.Stdout)
}

func (d *DemoCmd) run(w io.Writer) error {
	book := contact.NewDirectory()

	john := contact.NewRecord("John")
	if err := john.AddPhone("1234567890"); err != nil {
		return fmt.Errorf("demo: %w", err)
	}
	if err := john.AddPhone("5555555555"); err != nil {
		return fmt.Errorf("demo: %w", err)
	}
	if err := book.AddRecord(john); err != nil {
		return fmt.Errorf("demo: %w", err)
	}

	jane := contact.NewRecord("Jane")
	if err := jane.AddPhone("9876543210"); err != nil {
		return fmt.Errorf("demo: %w", err)
	}
	if err := book.AddRecord(jane); err != nil {
		return fmt.Errorf("demo: %w", err)
	}

	for _, record := range book.All() {
		_, _ = fmt.Fprintln(w, record)
	}

	found, err := book.Find("John")
	if err != nil {
		return fmt.Errorf("demo: %w", err)
	}
	if err := found.EditPhone("1234567890", "1112223333"); err != nil {
		return fmt.Errorf("demo: %w", err)
	}
	_, _ = fmt.Fprintln(w, found)

	if phone, ok := found.FindPhone("5555555555"); ok {
		_, _ = fmt.Fprintf(w, "%s: %s\n", found.Name(), phone)
	}

	if err := book.Delete("Jane"); err != nil {
		return fmt.Errorf("demo: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Contacts after deleting Jane: %d\n", book.Len())
	for _, record := range book.All() {
		_, _ = fmt.Fprintln(w, record)
	}
	return nil
}

// ShellCmd runs the interactive assistant on stdin and stdout.
type ShellCmd struct {
	Config string `help:"Path to a YAML config file." type:"path" default:"phonebook.yaml"`
}

// Run executes the shell command.
func (s *ShellCmd) Run() error {
	cfg, err := config.Load(s.Config)
	if err != nil {
		return &setupError{err: err}
	}
	if err := cfg.Validate(); err != nil {
		return &setupError{err: err}
	}

	logger, err := telemetry.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return &setupError{err: err}
	}
	defer func() { _ = logger.Sync() }()

	release := serviceVersion(version, cfg.Version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracing, err := telemetry.InitTracing(ctx, telemetry.Config{
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: release,
		Endpoint:       cfg.Telemetry.Endpoint,
		Enabled:        cfg.Telemetry.Enabled,
		SamplingRate:   cfg.Telemetry.SamplingRate,
		ExportTimeout:  cfg.Telemetry.ExportTimeout,
		BatchTimeout:   cfg.Telemetry.BatchTimeout,
	})
	if err != nil {
		return &setupError{err: err}
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Failed to shut down tracing", zap.Error(err))
		}
	}()

	svc, err := directory.NewService(logger, metrics.NewRegistry())
	if err != nil {
		return &setupError{err: err}
	}

	logger.Info("Starting assistant", zap.String("version", release))
	bot := assistant.New(svc,
		assistant.WithLogger(logger),
		assistant.WithPrompt(cfg.Assistant.Prompt),
		assistant.WithGreeting(cfg.Assistant.Greeting),
	)
	err = bot.Run(ctx, os.Stdin, os.Stdout)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// serviceVersion prefers the version stamped at build time and falls back to
// the configured one for untagged builds.
func serviceVersion(build, configured string) string {
	if build != "dev" || configured == "" {
		return build
	}
	return configured
}

// setupError marks failures that happen before the assistant starts.
type setupError struct {
	err error
}

func (e *setupError) Error() string { return e.err.Error() }
func (e *setupError) Unwrap() error { return e.err }

const (
	exitSuccess = 0
	exitRuntime = 1
	exitSetup   = 2
)

// exitCode maps an error to the appropriate exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var se *setupError
	if errors.As(err, &se) {
		return exitSetup
	}
	return exitRuntime
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("phonebook"),
		kong.Description("In-memory contact directory."),
		kong.Vars{"version": version + " " + commit + " " + date},
	)
	err := ctx.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(exitCode(err))
	}
}
