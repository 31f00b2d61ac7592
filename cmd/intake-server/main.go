package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ehr/intake/internal/config"
	"github.com/ehr/intake/internal/domain/intake"
	"github.com/ehr/intake/internal/platform/docstore"
	"github.com/ehr/intake/internal/platform/export"
	"github.com/ehr/intake/internal/platform/middleware"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "intake-server",
		Short:        "Patient intake form server",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(saveCmd())
	rootCmd.AddCommand(filenameCmd())
	rootCmd.AddCommand(exportCmd())
	return rootCmd
}

func newLogger(cfg *config.Config, out io.Writer) zerolog.Logger {
	logger := zerolog.New(out).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: out}).With().Timestamp().Logger()
	}
	if lvl, err := cfg.Level(); err == nil {
		logger = logger.Level(lvl)
	}
	return logger
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the intake form API on the loopback interface",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runServer(cfg, newLogger(cfg, os.Stdout))
		},
	}
}

func newServer(cfg *config.Config, logger zerolog.Logger) *echo.Echo {
	store := docstore.NewFileStore(logger.With().Str("component", "docstore").Logger())
	svc := intake.NewService(store, logger.With().Str("component", "intake").Logger())
	session := intake.NewSession()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	if !cfg.AllowRemote {
		e.Use(middleware.LoopbackOnly())
	}
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit(cfg.BodyLimit))

	apiV1 := e.Group("/api/v1/intake")
	intake.NewHandler(svc, session, cfg.OutputDir).RegisterRoutes(apiV1)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	logger.Info().
		Str("session_id", session.ID.String()).
		Time("started_at", session.StartedAt).
		Str("output_dir", cfg.OutputDir).
		Msg("intake session started")
	return e
}

func runServer(cfg *config.Config, logger zerolog.Logger) error {
	e := newServer(cfg, logger)

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		addr := cfg.Addr()
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
		return err
	}

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

func saveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Replay a scripted intake and save the record",
		RunE: func(cmd *cobra.Command, args []string) error {
			input, _ := cmd.Flags().GetString("input")
			out, _ := cmd.Flags().GetString("out")
			dir, _ := cmd.Flags().GetString("dir")
			overwrite, _ := cmd.Flags().GetBool("overwrite")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg, cmd.ErrOrStderr())
			if dir == "" {
				dir = cfg.OutputDir
			}

			store := docstore.NewFileStore(logger)
			svc := intake.NewService(store, logger)
			return runSave(cmd.Context(), svc, input, out, dir, overwrite, cmd.OutOrStdout())
		},
	}
	cmd.Flags().String("input", "", "JSON document with fields and tests")
	cmd.Flags().String("out", "", "destination file (default: <dir>/<Name>_<timestamp>.json)")
	cmd.Flags().String("dir", "", "output directory when --out is not given (default: OUTPUT_DIR)")
	cmd.Flags().Bool("overwrite", false, "replace the destination file if it already exists")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func runSave(ctx context.Context, svc *intake.Service, input, out, dir string, overwrite bool, w io.Writer) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	in, err := intake.ParseFormInput(data)
	if err != nil {
		return err
	}

	form, outcomes, err := in.Replay(intake.NewFormState())
	if err != nil {
		return err
	}
	for _, o := range outcomes {
		if !o.Valid {
			fmt.Fprintf(w, "warning: %s: %s\n", o.Field, o.Message)
		}
	}

	choose := intake.DirectoryDestination(dir)
	switch {
	case out != "" && overwrite:
		choose = intake.ReplaceDestination(out)
	case out != "":
		choose = intake.FixedDestination(out)
	}
	res, _, err := svc.Save(ctx, form, choose)
	var missing *intake.MissingRequiredFieldsError
	if errors.As(err, &missing) {
		return fmt.Errorf("please fill in: %s", strings.Join(missing.Fields, ", "))
	}
	if errors.Is(err, docstore.ErrDocumentExists) {
		return fmt.Errorf("%w (use --overwrite to replace it)", err)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "saved %s (%d bytes, sha256 %s)\n", res.Path, res.Size, res.Hash)
	return nil
}

func filenameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filename",
		Short: "Print the default record file name for a patient",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			fmt.Fprintln(cmd.OutOrStdout(), intake.DefaultFilename(strings.TrimSpace(name), time.Now()))
			return nil
		},
	}
	cmd.Flags().String("name", "", "patient full name")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render a saved record as an .xlsx workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			record, _ := cmd.Flags().GetString("record")
			out, _ := cmd.Flags().GetString("out")
			if out == "" {
				out = strings.TrimSuffix(record, filepath.Ext(record)) + ".xlsx"
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg, cmd.ErrOrStderr())
			return runExport(cmd.Context(), docstore.NewFileStore(logger), record, out, cmd.OutOrStdout())
		},
	}
	cmd.Flags().String("record", "", "saved record JSON file")
	cmd.Flags().String("out", "", "destination workbook (default: record path with .xlsx)")
	_ = cmd.MarkFlagRequired("record")
	return cmd
}

func runExport(ctx context.Context, store docstore.DocumentStore, record, out string, w io.Writer) error {
	data, _, err := store.Get(ctx, record)
	if err != nil {
		return fmt.Errorf("read record %s: %w", record, err)
	}
	rec, err := intake.DecodeRecord(data)
	if err != nil {
		return err
	}
	book, err := export.RecordWorkbook(rec)
	if err != nil {
		return err
	}
	meta, err := store.Put(ctx, out, book)
	if err != nil {
		return fmt.Errorf("write workbook %s: %w", out, err)
	}
	fmt.Fprintf(w, "exported %s (%d bytes)\n", meta.Path, meta.Size)
	return nil
}
