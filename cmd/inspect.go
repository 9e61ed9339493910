package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ScraperExtranet/internal/checkpoint"
	"ScraperExtranet/internal/config"
	"ScraperExtranet/internal/record"
)

func newInspectCommand() *cobra.Command {
	var (
		rows    int
		columns []string
	)

	cmd := &cobra.Command{
		Use:   "inspect [csv|directorio]",
		Short: "Resume un CSV de resultados por estado",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := viper.GetString("output.path")
			if path == "" {
				path = config.DefaultOutputPath
			}
			if len(args) == 1 {
				path = args[0]
			}

			if st, err := os.Stat(path); err == nil && st.IsDir() {
				latest := checkpoint.Latest(path)
				if latest == "" {
					return fmt.Errorf("no hay archivos CSV en %s", path)
				}
				path = latest
			}

			tbl, err := checkpoint.ReadAll(path, 0)
			if err != nil {
				return err
			}
			if len(columns) == 0 {
				columns = defaultPreviewColumns(tbl)
			}
			renderInspect(cmd.OutOrStdout(), path, tbl, rows, columns)
			return nil
		},
	}

	cmd.Flags().IntVarP(&rows, "rows", "n", 10, "filas de vista previa (0 = ninguna)")
	cmd.Flags().StringSliceVar(&columns, "columns", nil, "columnas de la vista previa")
	return cmd
}

// defaultPreviewColumns picks the identifying columns of whichever schema
// wrote tbl.
func defaultPreviewColumns(tbl checkpoint.Table) []string {
	if tbl.Column(record.ColQuery) >= 0 {
		return []string{record.ColID, record.ColQuery, record.ColEmail, record.ColStatus}
	}
	return []string{record.ColResearcher, record.ColEmail, record.ColStatus}
}
