package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/telforge/phonegen/internal/config"
	"github.com/telforge/phonegen/internal/index"
	"github.com/telforge/phonegen/internal/repository/records"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Inspect the allocation table and lookup index",
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := records.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open record store: %w", err)
	}
	defer func() { _ = store.Close() }()

	ctx := cmd.Context()

	recs, err := store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}

	ix, err := index.New(recs)
	if err != nil {
		return fmt.Errorf("build lookup index: %w", err)
	}

	fmt.Printf("Database:  %s", store.Path())
	if fi, err := os.Stat(store.Path()); err == nil {
		fmt.Printf(" (%s)", humanize.IBytes(uint64(fi.Size())))
	}
	fmt.Println()
	fmt.Printf("Records:   %d\n", ix.Size())
	fmt.Printf("Provinces: %d\n", len(ix.Provinces()))
	for _, province := range ix.Provinces() {
		fmt.Printf("  %s: %d cities\n", province, len(ix.Cities(province)))
	}

	if len(recs) > 0 {
		first := recs[0]
		blocks := ix.Lookup(first.Province(), first.City(), nil)
		fmt.Printf("Sample lookup %s/%s: %d blocks\n", first.Province(), first.City(), len(blocks))
	}
	return nil
}
