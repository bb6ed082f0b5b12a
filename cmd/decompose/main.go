package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"

	"etymograph/internal/llmclient"
	"etymograph/internal/morph"
	"etymograph/internal/resolve"
)

func main() {
	var (
		word     string
		verbose  bool
		attempts int
		timeout  time.Duration
		provider string
		model    string
	)
	flag.StringVar(&word, "w", "", "word to decompose")
	flag.StringVar(&word, "word", "", "word to decompose")
	flag.BoolVar(&verbose, "v", false, "verbose output: attempt logs, parts table, layers")
	flag.BoolVar(&verbose, "verbose", false, "verbose output: attempt logs, parts table, layers")
	flag.IntVar(&attempts, "attempts", resolve.DefaultMaxAttempts, "maximum generation attempts")
	flag.DurationVar(&timeout, "timeout", 2*time.Minute, "overall resolution timeout")
	flag.StringVar(&provider, "provider", "", "llm provider: gemini, groq, fake (default LLM_PROVIDER)")
	flag.StringVar(&model, "model", "", "model name (provider default when empty)")
	flag.Parse()

	word = strings.TrimSpace(word)
	if word == "" && flag.NArg() > 0 {
		word = strings.TrimSpace(flag.Arg(0))
	}
	if morph.NormalizeWord(word) == "" {
		fmt.Fprintln(os.Stderr, "usage: decompose -w <word> [-v] [-attempts N] [-timeout 2m]")
		os.Exit(2)
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	_ = godotenv.Load()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cli, err := llmclient.FromEnv(ctx, provider, model, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "decompose: %v\n", err)
		os.Exit(1)
	}
	defer cli.Close()
	cli = llmclient.Wrap(cli, llmclient.WithLogging(logger))

	r := &resolve.Resolver{LLM: cli, MaxAttempts: attempts, Logger: logger}
	out, err := r.Resolve(ctx, word)
	if err != nil {
		fmt.Fprintf(os.Stderr, "decompose: %v\n", err)
		os.Exit(1)
	}

	printOutcome(out, verbose)

	if !out.Accepted {
		fmt.Fprintf(os.Stderr, "\ndecomposition not accepted after %d attempts; remaining issues:\n", len(out.Attempts))
		for _, v := range out.Violations {
			fmt.Fprintf(os.Stderr, "  - %s\n", v)
		}
		os.Exit(1)
	}
}

func printOutcome(out resolve.Outcome, verbose bool) {
	doc := out.Document

	fmt.Printf("Word: %s\n", out.Word)

	parts := make([]string, 0, len(doc.Parts))
	for _, p := range doc.Parts {
		parts = append(parts, fmt.Sprintf("%s (%s)", p.Text, p.Meaning))
	}
	fmt.Printf("Parts: %s\n", strings.Join(parts, ", "))

	if def := finalDefinition(doc); def != "" {
		fmt.Printf("Definition: %s\n", def)
	}

	if !verbose {
		return
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 2, 8, 2, ' ', 0)
	fmt.Fprintln(w, "TEXT\tORIGINAL\tORIGIN\tMEANING")
	for _, p := range doc.Parts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Text, p.OriginalWord, p.Origin, p.Meaning)
	}
	_ = w.Flush()

	fmt.Println()
	for i, layer := range doc.Combinations {
		entries := make([]string, 0, len(layer))
		for _, c := range layer {
			entries = append(entries, fmt.Sprintf("%s <- %s", c.Text, strings.Join(c.SourceIDs, "+")))
		}
		fmt.Printf("Layer %d: %s\n", i, strings.Join(entries, "   "))
	}
}

// finalDefinition is the definition of the last combination in the last
// layer, the decomposition's most complete gloss.
func finalDefinition(doc morph.Document) string {
	if len(doc.Combinations) == 0 {
		return ""
	}
	last := doc.Combinations[len(doc.Combinations)-1]
	if len(last) == 0 {
		return ""
	}
	return last[len(last)-1].Definition
}
