package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ferretir/ferret"
	"github.com/ferretir/ferret/internal/corpus"
)

// exit codes, matching spec.md §6 exactly.
const (
	exitOK             = 0
	exitMalformedQuery = 2
	exitIOFailure      = 3
	exitNoIndex        = 4
)

func indexPath(name string) string {
	return filepath.Join(cfg.WorkingDirectory, name+".idx")
}

func newCreateIndexCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "create-index <collection-path>",
		Short: "Build an index from a document collection and persist it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			collectionPath := args[0]
			if name == "" {
				base := filepath.Base(collectionPath)
				name = strings.TrimSuffix(base, filepath.Ext(base))
			}

			idx := buildEmptyIndex()
			src := &corpus.NDJSONFile{Path: collectionPath}

			ctx := context.Background()
			if err := idx.Build(ctx, src, 0, nil); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(exitIOFailure)
			}

			if err := os.MkdirAll(cfg.WorkingDirectory, 0o755); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(exitIOFailure)
			}
			if err := persistIndex(idx, indexPath(name)); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(exitIOFailure)
			}

			slog.Info("index created", slog.String("name", name), slog.Int("documents", idx.TotalDocuments()))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "index name (default: collection file name)")
	return cmd
}

func newQueryCmd() *cobra.Command {
	var (
		indexName string
		spelling  bool
		spellingK int
		phonetic  bool
		auto      bool
	)
	cmd := &cobra.Command{
		Use:   "query <string>",
		Short: "Run a single query against a loaded index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := loadIndexByName(indexName)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(exitNoIndex)
			}

			node, err := ferret.ParseQuery(args[0])
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(exitMalformedQuery)
			}

			eval := ferret.NewEvaluator(idx, ferret.EvalOptions{
				Rank:     cfg.Ranking.Enabled,
				UseWFIDF: cfg.Ranking.UseWFIDF,
			})
			corr := ferret.CorrectionOptions{
				Spelling:    spelling,
				SpellingK:   spellingK,
				MaxAttempts: cfg.Correction.MaxAttempts,
				Phonetic:    phonetic,
				Auto:        auto,
			}
			results, _, err := eval.RunQuery(node, corr)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(exitMalformedQuery)
			}

			ranked := eval.Rank(node, results)
			printResults(ranked)
			return nil
		},
	}
	cmd.Flags().StringVar(&indexName, "index", "default", "name of the index to query")
	cmd.Flags().BoolVarP(&spelling, "spelling", "s", cfg.Correction.Spelling, "enable spelling correction")
	cmd.Flags().IntVarP(&spellingK, "edit-distance", "k", cfg.Correction.SpellingK, "initial spelling edit distance")
	cmd.Flags().BoolVarP(&phonetic, "phonetic", "p", cfg.Correction.Phonetic, "enable phonetic correction")
	cmd.Flags().BoolVarP(&auto, "auto", "a", cfg.Correction.Auto, "retry with full correction on zero results")
	return cmd
}

func printResults(ranked []ferret.RankedDocument) {
	if len(ranked) == 0 {
		fmt.Println("(no matches)")
		return
	}
	for _, r := range ranked {
		fmt.Printf("%d\t%.4f\n", r.Doc, r.Score)
	}
}

func buildEmptyIndex() *ferret.InvertedIndex {
	acfg := ferret.DefaultAnalyzerConfig()
	acfg.EnableStopwords = cfg.Analyzer.EnableStopwords
	if cfg.Analyzer.MinTokenLength > 0 {
		acfg.MinTokenLength = cfg.Analyzer.MinTokenLength
	}

	var kind ferret.StemmerKind
	switch cfg.Analyzer.Stemmer {
	case "porter":
		kind = ferret.StemmerPorter
	case "snowball":
		kind = ferret.StemmerSnowball
	default:
		kind = ferret.StemmerNone
	}
	acfg.EnableStemming = kind != ferret.StemmerNone
	stemmer := ferret.NewStemmer(kind, cfg.Analyzer.Language, func(err error) {
		slog.Warn("stemmer unavailable", slog.Any("err", err))
	})

	idx := ferret.NewInvertedIndex(acfg, stemmer)
	idx.SetRankEnabled(cfg.Ranking.Enabled)
	return idx
}

func persistIndex(idx *ferret.InvertedIndex, path string) error {
	blob, err := idx.Encode()
	if err != nil {
		return fmt.Errorf("encoding index: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	return os.Rename(tmp, path)
}

func loadIndexByName(name string) (*ferret.InvertedIndex, error) {
	path := indexPath(name)
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading index %q: %w", name, err)
	}
	return ferret.Decode(blob)
}

func newLoadIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load-index <name>",
		Short: "Verify a persisted index loads cleanly and report its stats",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := loadIndexByName(args[0])
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(exitNoIndex)
			}
			fmt.Printf("documents: %d\nvocabulary: %d\n", idx.TotalDocuments(), idx.VocabularySize())
			return nil
		},
	}
}

