package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pagekit-db/pagekit/store"
	"github.com/pagekit-db/pagekit/store/acl"
	"github.com/pagekit-db/pagekit/store/schema"
)

func init() {
	rootCmd.AddCommand(newInfoCmd())
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <store>",
		Short: "Report a store file's page layout and registry summary",
		Long: `The info command opens a pagekit store file and displays its page
layout, the number of registered tables, and the access control list size.

Example:
  pagectl info data.pk
  pagectl info data.pk --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(args[0])
		},
	}
}

type storeInfo struct {
	File       string `json:"file"`
	SizeBytes  uint64 `json:"size_bytes"`
	Pages      uint64 `json:"pages"`
	PageSize   int    `json:"page_size"`
	Tables     int    `json:"tables"`
	Principals int    `json:"principals"`
}

func runInfo(path string) error {
	p, mgr, err := openStore(path)
	if err != nil {
		return err
	}
	defer p.Close()

	registry, err := schema.Load(mgr)
	if err != nil {
		return fmt.Errorf("failed to load schema registry: %w", err)
	}
	list, err := acl.Load(mgr)
	if err != nil {
		return fmt.Errorf("failed to load access list: %w", err)
	}

	info := storeInfo{
		File:       path,
		SizeBytes:  p.Size(),
		Pages:      p.Pages(),
		PageSize:   store.PageSize,
		Tables:     len(registry.Tables()),
		Principals: len(list.Principals()),
	}

	if jsonOut {
		return printJSON(info)
	}

	printInfo("\nStore Information:\n")
	printInfo("  File: %s\n", info.File)
	if info.SizeBytes < 1024*1024 {
		printInfo("  Size: %.1f KB (%d pages)\n", float64(info.SizeBytes)/1024, info.Pages)
	} else {
		printInfo("  Size: %.1f MB (%d pages)\n", float64(info.SizeBytes)/(1024*1024), info.Pages)
	}
	printInfo("  Page size: %d bytes\n", info.PageSize)
	printInfo("  Tables: %d\n", info.Tables)
	printInfo("  Principals: %d\n", info.Principals)
	return nil
}
