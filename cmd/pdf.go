package cmd

import (
	"fmt"
	"os"

	"github.com/khrees2412/cvbuilder/internal/export"
	"github.com/spf13/cobra"
)

var pdfCmd = &cobra.Command{
	Use:   "pdf",
	Short: "Export the working CV to PDF with headless Chrome",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFromCmd(cmd)
		if err != nil {
			return err
		}
		doc := application.Document.Snapshot()

		if err := export.ValidateForExport(doc); err != nil {
			return err
		}
		html, err := export.Render(doc)
		if err != nil {
			return err
		}

		if dir, _ := cmd.Flags().GetString("out-dir"); dir != "" {
			application.Exporter.OutDir = dir
		}

		cmd.Println("Rendering PDF...")
		path, err := application.Exporter.Export(cmd.Context(), html, export.PreviewElementID, export.FileName(doc))
		if err != nil {
			return fmt.Errorf("export pdf: %w", err)
		}

		fmt.Printf("✓ PDF written to %s\n", path)
		return nil
	},
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render the working CV to HTML",
	Example: `  cvbuilder preview > cv.html
  cvbuilder preview --out cv.html`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFromCmd(cmd)
		if err != nil {
			return err
		}

		html, err := export.Render(application.Document.Snapshot())
		if err != nil {
			return err
		}

		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			_, err = os.Stdout.Write(html)
			return err
		}
		if err := os.WriteFile(out, html, 0644); err != nil {
			return fmt.Errorf("write preview: %w", err)
		}
		fmt.Printf("✓ Preview written to %s\n", out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pdfCmd)
	rootCmd.AddCommand(previewCmd)

	pdfCmd.Flags().String("out-dir", "", "Directory for the PDF (defaults to export_dir)")
	previewCmd.Flags().String("out", "", "Write HTML to this file instead of stdout")
}
