package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the stored draft without regenerating",
	Long:  `Renders the draft most recently produced by run or through the server and writes it as DOCX or PDF.`,
	RunE:  runExport,
}

var (
	exportConfigPath string
	exportOutDir     string
	exportFormat     string
	exportDates      []string
)

func init() {
	exportCmd.Flags().StringVar(&exportConfigPath, "config", "", "Path to config.json file (values can be overridden by env and flags)")
	exportCmd.Flags().StringVarP(&exportOutDir, "out-dir", "o", ".", "Directory to write exported files into")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "docx", "Export format: docx, pdf or both")
	exportCmd.Flags().StringSliceVar(&exportDates, "date", nil, "Override date values in document order, e.g. --date \"2020 - 2024\"")
	rootCmd.AddCommand(exportCmd)
}

func runExport(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig(exportConfigPath)
	if err != nil {
		return err
	}

	st, closeStore, err := openStore(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("failed to open state store: %w", err)
	}
	defer closeStore()

	return exportDocument(st, exportOutDir, exportFormat, exportDates)
}
