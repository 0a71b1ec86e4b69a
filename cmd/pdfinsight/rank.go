package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/pdfinsight/internal/query"
)

var rankCmd = &cobra.Command{
	Use:   "rank --persona TEXT --job TEXT file.pdf...",
	Short: "Rank document sections for a persona and their job",
	Long: `Rank the sections of the given PDFs by similarity to a persona and the job
they need done. Persona and job can be given inline or read from text or
Markdown files with --persona-file and --job-file.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRank,
}

func init() {
	f := rankCmd.Flags()
	f.String("persona", "", "persona description")
	f.String("job", "", "job to be done")
	f.String("persona-file", "", "read the persona from a text or Markdown file")
	f.String("job-file", "", "read the job from a text or Markdown file")
	f.Bool("pretty", false, "render for the terminal instead of JSON")
	rankCmd.MarkFlagsMutuallyExclusive("persona", "persona-file")
	rankCmd.MarkFlagsMutuallyExclusive("job", "job-file")
}

// textFlag returns the inline flag value, or the text of the file flag.
func textFlag(cmd *cobra.Command, inline, file string) (string, error) {
	s, _ := cmd.Flags().GetString(inline)
	path, _ := cmd.Flags().GetString(file)
	if path == "" {
		return s, nil
	}
	text, err := query.LoadText(path)
	if err != nil {
		return "", fmt.Errorf("--%s: %w", file, err)
	}
	return text, nil
}

func runRank(cmd *cobra.Command, args []string) error {
	persona, err := textFlag(cmd, "persona", "persona-file")
	if err != nil {
		return err
	}
	job, err := textFlag(cmd, "job", "job-file")
	if err != nil {
		return err
	}
	pretty, _ := cmd.Flags().GetBool("pretty")

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	srcs, err := readSources(args)
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.svc.RankSectionsForPersona(cmd.Context(), persona, job, srcs)
	if err != nil {
		return err
	}
	if pretty {
		renderSections(cmd.OutOrStdout(), res)
		return nil
	}
	return printJSON(cmd.OutOrStdout(), res)
}
