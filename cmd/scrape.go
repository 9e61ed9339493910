package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"ScraperExtranet/internal/browser"
	"ScraperExtranet/internal/config"
	"ScraperExtranet/internal/logger"
	"ScraperExtranet/internal/pipeline"
	"ScraperExtranet/internal/roster"
)

// scrapeFlags maps flag names to config keys.
var scrapeFlags = map[string]string{
	"base-url":     "base_url",
	"variant":      "variant",
	"roster":       "roster.path",
	"sheet":        "roster.sheet",
	"column":       "roster.column",
	"output":       "output.path",
	"batch-size":   "output.batch_size",
	"dump-dir":     "output.dump_dir",
	"start":        "start_index",
	"limit":        "limit",
	"resume":       "resume",
	"timeout":      "wait.timeout",
	"poll":         "wait.poll_interval",
	"load-pause":   "wait.load_pause",
	"headless":     "browser.headless",
	"chrome-path":  "browser.exec_path",
	"download-dir": "browser.download_dir",
	"pace":         "pacing.interval",
}

func newScrapeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Procesa la planilla y escribe el CSV de resultados",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(viper.GetViper(), cmd.Flags(), scrapeFlags)
		},
		RunE: runScrape,
	}

	f := cmd.Flags()
	f.String("base-url", config.DefaultBaseURL, "URL del buscador de CVs")
	f.String("variant", string(config.VariantLabeled), "variante de extracción: labeled o tables")
	f.String("roster", config.DefaultRosterPath, "planilla .xlsx con los nombres")
	f.String("sheet", "", "hoja de la planilla (por defecto la primera)")
	f.String("column", config.DefaultRosterColumn, "columna con el nombre completo")
	f.StringP("output", "o", config.DefaultOutputPath, "CSV de salida")
	f.Int("batch-size", 0, "filas por volcado (0 = según variante)")
	f.String("dump-dir", "", "guarda el HTML de los registros fallidos en este directorio")
	f.Int("start", 0, "omite los primeros N registros de la planilla")
	f.Int("limit", 0, "procesa como máximo N registros (0 = todos)")
	f.Bool("resume", false, "continúa desde la cantidad de filas ya presentes en el CSV")
	f.Duration("timeout", config.DefaultTimeout, "espera máxima por cada carga de página")
	f.Duration("poll", config.DefaultPollInterval, "intervalo de sondeo de la página")
	f.Duration("load-pause", -1, "pausa tras Load() antes de esperar (negativo = según variante)")
	f.Bool("headless", true, "ejecuta Chrome sin ventana")
	f.String("chrome-path", "", "ruta del ejecutable de Chrome (o CHROME_PATH)")
	f.String("download-dir", "", "directorio de descargas del navegador")
	f.Duration("pace", 0, "intervalo mínimo entre búsquedas")

	return cmd
}

// bindFlags binds only the flags set on the command line, so config file and
// environment values are not shadowed by flag defaults.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet, keys map[string]string) error {
	var errs []error
	fs.Visit(func(f *pflag.Flag) {
		key, ok := keys[f.Name]
		if !ok {
			return
		}
		if err := v.BindPFlag(key, f); err != nil {
			errs = append(errs, fmt.Errorf("no se pudo enlazar el flag %s: %w", f.Name, err))
		}
	})
	return errors.Join(errs...)
}

func runScrape(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	entries, err := roster.Load(cfg.Roster.Path, roster.Options{Sheet: cfg.Roster.Sheet, Column: cfg.Roster.Column})
	if err != nil {
		return err
	}
	log.Info("Planilla cargada",
		logger.String("path", cfg.Roster.Path),
		logger.Int("entries", len(entries)),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chrome, err := browser.NewChrome(ctx, browser.ChromeOptions{
		Headless:    cfg.Browser.Headless,
		ExecPath:    cfg.Browser.ExecPath,
		UserAgent:   cfg.Browser.UserAgent,
		DownloadDir: cfg.Browser.DownloadDir,
	})
	if err != nil {
		return fmt.Errorf("iniciando Chrome: %w", err)
	}
	defer chrome.Close()

	sum, runErr := pipeline.New(cfg, chrome, log).Run(ctx, entries)
	renderSummary(cmd.OutOrStdout(), cfg.Output.Path, sum)
	return runErr
}
