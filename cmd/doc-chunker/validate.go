package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/randalmurphy/doc-chunker/internal/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file...]",
	Short: "Validate chunking and documentation detection for files",
	Long: `Runs the consistency checks on every unit found in each file and
cross-checks declarations against the tree-sitter grammars. Exits non-zero
when any file has validation errors.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

var (
	validateLanguage string
	validateJSON     bool
	validateAll      bool
)

func init() {
	validateCmd.Flags().StringVar(&validateLanguage, "language", "", "Language identifier (inferred from the extension when empty)")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Output as JSON")
	validateCmd.Flags().BoolVar(&validateAll, "all", false, "List units without findings too")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	engine, err := newEngine()
	if err != nil {
		return err
	}
	m := openMetrics()
	defer m.Close()

	v := validate.New(engine, logger)
	ctx := context.Background()

	var reports []*validate.FileReport
	failed := 0
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		report, err := v.ValidateFile(ctx, string(data), validateLanguage, path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		m.LogValidation(path, report.Chunks, report.Failures, report.AvgQuality)
		if !report.Passed() {
			failed++
		}
		reports = append(reports, report)
	}

	health := v.Health()
	if validateJSON {
		out, _ := json.MarshalIndent(struct {
			Files  []*validate.FileReport `json:"files"`
			Health validate.Health        `json:"health"`
		}{reports, health}, "", "  ")
		fmt.Println(string(out))
	} else {
		for _, r := range reports {
			printFileReport(r)
		}
		fmt.Println("Health:")
		fmt.Printf("  Units processed: %d\n", health.Processed)
		fmt.Printf("  Failures:        %d (%.1f%%)\n", health.Failures, health.FailureRate*100)
		fmt.Printf("  Edge cases:      %d\n", health.EdgeCases)
		fmt.Printf("  Avg quality:     %.2f\n", health.AvgQuality)
		fmt.Printf("  Status:          %s\n", health.Status)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed validation", failed, len(args))
	}
	return nil
}

func printFileReport(r *validate.FileReport) {
	status := "PASS"
	if !r.Passed() {
		status = "FAIL"
	}
	fmt.Printf("%s %s (%s): %d units, %d chunks, quality %.2f\n",
		status, r.FilePath, r.Language, len(r.Units), r.Chunks, r.AvgQuality)

	for _, e := range r.Errors {
		fmt.Printf("    error: %s\n", e)
	}
	for _, w := range r.Warnings {
		fmt.Printf("    warning: %s\n", w)
	}
	for _, u := range r.Units {
		if !validateAll && len(u.Errors) == 0 && len(u.Warnings) == 0 {
			continue
		}
		fmt.Printf("  %s %s (line %d) quality %.2f\n", u.Type, u.Name, u.Line, u.Quality)
		for _, e := range u.Errors {
			fmt.Printf("    error: %s\n", e)
		}
		for _, w := range u.Warnings {
			fmt.Printf("    warning: %s\n", w)
		}
	}
	fmt.Println()
}
