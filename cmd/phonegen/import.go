package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/telforge/phonegen/internal/config"
	"github.com/telforge/phonegen/internal/index"
	logpkg "github.com/telforge/phonegen/internal/logger"
	"github.com/telforge/phonegen/internal/repository/records"
)

var (
	importCSVPath string
	importForce   bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load the carrier allocation table from a CSV file",
	Long: `Reads an allocation CSV (prefix, middle segment, province, city,
operator code), validates each row and stores the table. An already
populated table is kept unless --force is given.`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importCSVPath, "csv", "", "Path to the allocation CSV (required)")
	importCmd.Flags().BoolVar(&importForce, "force", false, "Replace existing records")
	_ = importCmd.MarkFlagRequired("csv")
}

func runImport(cmd *cobra.Command, args []string) error {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	store, err := records.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open record store: %w", err)
	}
	defer func() { _ = store.Close() }()

	ctx := cmd.Context()

	importer := records.NewImporter(store, logger)
	res, err := importer.ImportCSV(ctx, importCSVPath, importForce)
	if err != nil {
		return fmt.Errorf("import csv: %w", err)
	}

	// The serve command refuses a table with duplicate blocks, so catch
	// that here where the operator can still fix the CSV.
	recs, err := store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("reload records: %w", err)
	}
	if _, err := index.New(recs); err != nil {
		return fmt.Errorf("verify imported table: %w", err)
	}

	fmt.Printf("Imported %d records (%d rows skipped), table now holds %d\n",
		res.Imported, res.Skipped, len(recs))
	return nil
}
