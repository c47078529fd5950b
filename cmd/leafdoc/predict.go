package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Brownie44l1/leafdoc/internal/i18n"
	"github.com/Brownie44l1/leafdoc/internal/logger"
	"github.com/Brownie44l1/leafdoc/internal/report"
)

var (
	predictLang string
	predictJSON bool
)

var predictCmd = &cobra.Command{
	Use:   "predict IMAGE",
	Short: "Classify one leaf image and print the report",
	Args:  cobra.ExactArgs(1),
	RunE:  runPredict,
}

func init() {
	predictCmd.Flags().StringVarP(&predictLang, "lang", "l", "en", "report language (en, hi)")
	predictCmd.Flags().BoolVar(&predictJSON, "json", false, "print the report as JSON")
	rootCmd.AddCommand(predictCmd)
}

func runPredict(cmd *cobra.Command, args []string) error {
	lang, ok := i18n.Parse(predictLang)
	if !ok {
		return fmt.Errorf("unsupported language %q (want one of en, hi)", predictLang)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := logger.NewZapLogger("warn", "console")
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}
	ctx := logger.WithComponent(cmd.Context(), "cli")
	defer a.close(ctx)

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	rep, err := a.analyzer.Analyze(ctx, f, lang)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	out := cmd.OutOrStdout()
	if predictJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	printReport(out, rep, lang)
	return nil
}

func printReport(w io.Writer, rep report.Report, lang i18n.Language) {
	t := lang.Strings()

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendRow(table.Row{t.DetectedCondition, rep.Condition})
	tw.AppendRow(table.Row{t.Confidence, rep.Confidence})
	tw.Render()

	if rep.Disease == nil {
		fmt.Fprintln(w, t.NoRecord)
		return
	}
	d := rep.Disease

	fmt.Fprintf(w, "\n%s\n%s\n", d.Name, d.Description)
	fmt.Fprintf(w, "\n%s\n", t.SymptomsHeader)
	for _, s := range d.Symptoms {
		fmt.Fprintf(w, "  • %s\n", s)
	}
	fmt.Fprintf(w, "\n%s\n", t.TreatmentHeader)
	for i, s := range d.Treatment {
		fmt.Fprintf(w, "  %d. %s\n", i+1, s)
	}
}
