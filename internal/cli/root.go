package cli

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/whatupfoo/h2-dev-plus/internal/app"
	"github.com/whatupfoo/h2-dev-plus/internal/config"
)

func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// backendAnnotation fija el backend de un subcomando (migrate y seed sólo
// tienen sentido contra postgres).
const backendAnnotation = "backend"

// env es lo que comparten los subcomandos una vez cargada la config.
type env struct {
	cfg      *config.Config
	logLevel string
	backend  string
}

func newRootCmd() *cobra.Command {
	e := &env{}

	cmd := &cobra.Command{
		Use:          "storefront",
		Short:        "Product detail pages over a Storefront GraphQL or postgres catalog",
		SilenceUsage: true,
		PersistentPreRunE: func(c *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if e.logLevel != "" {
				cfg.LogLevel = strings.ToLower(e.logLevel)
			}
			if b := c.Annotations[backendAnnotation]; b != "" {
				cfg.Backend = b
			}
			if e.backend != "" {
				cfg.Backend = strings.ToLower(e.backend)
			}
			setupLogger(cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			e.cfg = cfg
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&e.logLevel, "log-level", "", "override LOG_LEVEL (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&e.backend, "backend", "", "override CATALOG_BACKEND (storefront|postgres)")

	cmd.AddCommand(
		serveCmd(e),
		productCmd(e),
		exportVariantsCmd(e),
		migrateCmd(e),
		seedCmd(e),
		deleteCmd(e),
	)
	return cmd
}

// setupLogger: consola legible en desarrollo, JSON en producción.
func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = time.RFC3339
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.IsProduction() {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}

func (e *env) app() (*app.App, error) {
	return app.NewApp(e.cfg)
}
