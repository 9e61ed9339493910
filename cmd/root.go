// Package cmd implements the command-line interface of the extranet CV
// scraper.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ScraperExtranet/internal/config"
	"ScraperExtranet/internal/logger"
)

// Version is overridden at build time with -ldflags "-X ScraperExtranet/cmd.Version=...".
var Version = "dev"

const envPrefix = "EXTRANET"

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string
	// debug forces debug level and development output.
	debug bool

	rootCmd = &cobra.Command{
		Use:   "scraper-extranet",
		Short: "Extrae CVs de investigadores desde la extranet UFRO",
		Long: `Busca cada investigador de una planilla Excel en el buscador de CVs de la
extranet, carga su perfil y guarda los campos en un CSV con checkpoints.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	cobra.OnInitialize(func() {
		if err := initConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "archivo de configuración (por defecto ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "activa logs de depuración")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Muestra la versión",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "scraper-extranet %s\n", Version)
		},
	})
	rootCmd.AddCommand(newScrapeCommand())
	rootCmd.AddCommand(newInspectCommand())
}

// initConfig reads the config file and environment into the global viper.
func initConfig() error {
	// .env is optional; existing variables win.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	config.SetDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || cfgFile != "" {
			return fmt.Errorf("leyendo configuración: %w", err)
		}
	}

	if err := viper.BindEnv("browser.exec_path", envPrefix+"_BROWSER_EXEC_PATH", "CHROME_PATH"); err != nil {
		return fmt.Errorf("no se pudo enlazar CHROME_PATH: %w", err)
	}
	if err := viper.BindEnv("wait.strict", envPrefix+"_WAIT_STRICT"); err != nil {
		return fmt.Errorf("no se pudo enlazar %s_WAIT_STRICT: %w", envPrefix, err)
	}
	return nil
}

// loadConfig decodes and validates the merged settings.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	if debug {
		cfg.Log.Level = "debug"
		cfg.Log.Development = true
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (logger.Logger, error) {
	return logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		Encoding:    cfg.Log.Encoding,
	})
}
