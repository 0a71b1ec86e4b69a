package main

import (
	"errors"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search --query TEXT file.pdf...",
	Short: "Find the sentence windows most similar to a query",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().String("query", "", "query text")
	searchCmd.Flags().Bool("pretty", false, "render for the terminal instead of JSON")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query, _ := cmd.Flags().GetString("query")
	pretty, _ := cmd.Flags().GetBool("pretty")
	if query == "" {
		return errors.New("--query is required")
	}

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

	res, err := a.svc.FindSimilarSnippets(cmd.Context(), query, srcs)
	if err != nil {
		return err
	}
	if pretty {
		renderSnippets(cmd.OutOrStdout(), query, res)
		return nil
	}
	return printJSON(cmd.OutOrStdout(), res)
}
