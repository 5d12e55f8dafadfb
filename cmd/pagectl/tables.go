package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/pagekit-db/pagekit/store/schema"
	"github.com/pagekit-db/pagekit/store/table"
)

func init() {
	rootCmd.AddCommand(newTablesCmd())
}

func newTablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tables <store>",
		Short: "List registered tables and their ledger state",
		Long: `The tables command lists every table registered in the store's
schema registry, with its ledger root pages, owned page count, remaining free
bytes, and reclaimable free segments.

Example:
  pagectl tables data.pk
  pagectl tables data.pk --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTables(args[0])
		},
	}
}

type tableInfo struct {
	Fingerprint      string `json:"fingerprint"`
	PageLedgerPage   uint32 `json:"page_ledger_page"`
	FreeSegmentsPage uint32 `json:"free_segments_page"`
	OwnedPages       int    `json:"owned_pages"`
	FreeBytes        uint64 `json:"free_bytes"`
	FreeSegments     int    `json:"free_segments"`
}

func runTables(path string) error {
	p, mgr, err := openStore(path)
	if err != nil {
		return err
	}
	defer p.Close()

	registry, err := schema.Load(mgr)
	if err != nil {
		return fmt.Errorf("failed to load schema registry: %w", err)
	}

	entries := registry.Tables()
	fingerprints := make([]schema.Fingerprint, 0, len(entries))
	for fp := range entries {
		fingerprints = append(fingerprints, fp)
	}
	slices.Sort(fingerprints)

	infos := make([]tableInfo, 0, len(fingerprints))
	for _, fp := range fingerprints {
		roots := entries[fp]
		tbl, err := table.Load(mgr, roots)
		if err != nil {
			return fmt.Errorf("failed to load table %016x: %w", uint64(fp), err)
		}
		var free uint64
		pages := tbl.PageLedger().Entries()
		for _, e := range pages {
			free += e.Free
		}
		infos = append(infos, tableInfo{
			Fingerprint:      fmt.Sprintf("%016x", uint64(fp)),
			PageLedgerPage:   uint32(roots.PageLedgerPage),
			FreeSegmentsPage: uint32(roots.FreeSegmentsPage),
			OwnedPages:       len(pages),
			FreeBytes:        free,
			FreeSegments:     len(tbl.FreeSegments().Segments()),
		})
	}

	if jsonOut {
		return printJSON(infos)
	}

	if len(infos) == 0 {
		printInfo("No tables registered.\n")
		return nil
	}
	printInfo("%-18s %8s %8s %8s %12s %10s\n",
		"FINGERPRINT", "LEDGER", "FREESEG", "PAGES", "FREE BYTES", "SEGMENTS")
	for _, info := range infos {
		printInfo("%-18s %8d %8d %8d %12d %10d\n",
			info.Fingerprint, info.PageLedgerPage, info.FreeSegmentsPage,
			info.OwnedPages, info.FreeBytes, info.FreeSegments)
	}
	return nil
}
