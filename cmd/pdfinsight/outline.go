package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/pdfinsight/internal/parser"
)

var outlineCmd = &cobra.Command{
	Use:   "outline [file.pdf]",
	Short: "Extract the title and H1-H3 outline of a PDF",
	Long: `Extract the title and heading outline of one PDF and print it as JSON, or
process every PDF in --dir and write <name>.json files into --out.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runOutline,
}

func init() {
	f := outlineCmd.Flags()
	f.String("dir", "", "directory of PDFs to process")
	f.String("out", "output", "output directory for --dir mode")
	f.Int("jobs", 4, "concurrent files in --dir mode")
	f.Bool("pretty", false, "render for the terminal instead of JSON")
}

func runOutline(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	dir, _ := cmd.Flags().GetString("dir")
	pretty, _ := cmd.Flags().GetBool("pretty")

	if (dir == "") == (len(args) == 0) {
		return errors.New("give either one PDF path or --dir")
	}

	a, err := newApp(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	if dir == "" {
		srcs, err := readSources(args)
		if err != nil {
			return err
		}
		res, err := a.svc.ExtractOutline(cmd.Context(), srcs[0])
		if err != nil {
			return err
		}
		if pretty {
			renderOutline(cmd.OutOrStdout(), srcs[0].Name, res)
			return nil
		}
		return printJSON(cmd.OutOrStdout(), res)
	}

	outDir, _ := cmd.Flags().GetString("out")
	jobs, _ := cmd.Flags().GetInt("jobs")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	paths, err := listPDFs(dir)
	if err != nil {
		return err
	}
	log.Info("processing directory", "dir", dir, "files", len(paths), "out", outDir)

	var (
		failed atomic.Int64
		outMu  sync.Mutex
	)
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(max(jobs, 1))
	for _, p := range paths {
		g.Go(func() error {
			name := filepath.Base(p)
			data, err := os.ReadFile(p)
			if err != nil {
				return err
			}
			res, err := a.svc.ExtractOutline(ctx, parser.Source{Name: name, Data: data})
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				failed.Add(1)
				log.Warn("outline failed, skipping", "file", name, "error", err)
				if pretty {
					outMu.Lock()
					renderFailure(cmd.ErrOrStderr(), name, err)
					outMu.Unlock()
				}
				return nil
			}

			f, err := os.Create(filepath.Join(outDir, strings.TrimSuffix(name, filepath.Ext(name))+".json"))
			if err != nil {
				return err
			}
			if err := printJSON(f, res); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			if pretty {
				outMu.Lock()
				renderOutline(cmd.OutOrStdout(), name, res)
				outMu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("directory done", "files", len(paths), "failed", failed.Load())
	if n := failed.Load(); n > 0 && n == int64(len(paths)) {
		return fmt.Errorf("all %d files failed", n)
	}
	return nil
}

// listPDFs returns the PDF files directly inside dir, sorted by name.
func listPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !parser.IsSupportedExtension(e.Name()) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}
