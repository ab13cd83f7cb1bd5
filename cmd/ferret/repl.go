package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ferretir/ferret"
)

const replPageSize = 10

// newReplCmd opens an interactive loop: one query per line, correction
// flags written on the line itself (-s, -sK, -p, -a; the query command
// takes them as -s, -k K, -p, -a instead), `-q` to exit, and [y/n]
// pagination once a result set exceeds replPageSize.
func newReplCmd() *cobra.Command {
	var indexName string
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactive query loop against a loaded index",
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := loadIndexByName(indexName)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(exitNoIndex)
			}
			runRepl(idx)
			return nil
		},
	}
	cmd.Flags().StringVar(&indexName, "index", "default", "name of the index to query")
	return cmd
}

func runRepl(idx *ferret.InvertedIndex) {
	eval := ferret.NewEvaluator(idx, ferret.EvalOptions{
		Rank:     cfg.Ranking.Enabled,
		UseWFIDF: cfg.Ranking.UseWFIDF,
	})
	in := bufio.NewScanner(os.Stdin)
	fmt.Println("ferret repl — one query per line, -q to quit")
	for {
		fmt.Print("> ")
		if !in.Scan() {
			return
		}
		line := strings.TrimSpace(in.Text())
		if line == "" {
			continue
		}
		if line == "-q" {
			return
		}

		query, corr := parseReplLine(line)
		node, err := ferret.ParseQuery(query)
		if err != nil {
			fmt.Println(err)
			continue
		}
		results, _, err := eval.RunQuery(node, corr)
		if err != nil {
			fmt.Println(err)
			continue
		}
		ranked := eval.Rank(node, results)
		if !paginate(ranked, in) {
			return
		}
	}
}

// parseReplLine splits trailing -s[K]/-p/-a flags from the query text
// itself, matching §4.5's inline flag grammar.
func parseReplLine(line string) (string, ferret.CorrectionOptions) {
	fields := strings.Fields(line)
	corr := ferret.CorrectionOptions{
		SpellingK:   cfg.Correction.SpellingK,
		MaxAttempts: cfg.Correction.MaxAttempts,
	}
	var queryParts []string
	for _, f := range fields {
		switch {
		case f == "-p":
			corr.Phonetic = true
		case f == "-a":
			corr.Auto = true
		case f == "-s":
			corr.Spelling = true
		case strings.HasPrefix(f, "-s") && len(f) > 2:
			corr.Spelling = true
			if k := parseDigits(f[2:]); k > 0 {
				corr.SpellingK = k
			}
		default:
			queryParts = append(queryParts, f)
		}
	}
	return strings.Join(queryParts, " "), corr
}

func parseDigits(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}

func paginate(ranked []ferret.RankedDocument, in *bufio.Scanner) bool {
	if len(ranked) == 0 {
		fmt.Println("(no matches)")
		return true
	}
	for offset := 0; offset < len(ranked); offset += replPageSize {
		end := offset + replPageSize
		if end > len(ranked) {
			end = len(ranked)
		}
		for _, r := range ranked[offset:end] {
			fmt.Printf("%d\t%.4f\n", r.Doc, r.Score)
		}
		if end >= len(ranked) {
			break
		}
		fmt.Print("more? [y/n] ")
		if !in.Scan() {
			return false
		}
		if strings.TrimSpace(strings.ToLower(in.Text())) != "y" {
			break
		}
	}
	return true
}
