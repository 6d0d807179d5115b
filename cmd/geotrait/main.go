// Command geotrait evaluates a geometry script and writes the sampled
// curves, surfaces and probe results as JSON.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/pkg/profile"

	"github.com/chazu/geotrait/pkg/app"
	"github.com/chazu/geotrait/pkg/config"
	"github.com/chazu/geotrait/pkg/logging"
)

var (
	configPath string
	scriptPath string
	outPath    string

	verbose bool
	prof    string
)

func main() {
	flag.StringVar(&configPath, "config", "", "Path to HJSON config file")
	flag.StringVar(&scriptPath, "script", "", "Path to geometry script (default stdin)")
	flag.StringVar(&outPath, "o", "", "Output file (default stdout)")

	flag.BoolVar(&verbose, "v", false, "Log pipeline progress to stderr")
	flag.StringVar(&prof, "profile", "", "Write a cpu or mem profile (debug)")
	flag.Parse()

	if verbose {
		logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	conf := config.Default()
	if configPath != "" {
		var err error
		if conf, err = config.LoadConfig(configPath); err != nil {
			log.Fatalf("Failed to load config %s: %v", configPath, err)
		}
	}

	source, err := readScript(scriptPath)
	if err != nil {
		log.Fatalf("Failed to read script: %v", err)
	}

	os.Exit(run(conf, string(source)))
}

// run evaluates source and reports the outcome. It returns the process exit
// code so deferred profile writers complete.
func run(conf config.Config, source string) int {
	switch prof {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	default:
		fmt.Fprintf(os.Stderr, "unknown profile mode %q, expected cpu or mem\n", prof)
		return 2
	}

	result := app.NewApp(conf).Evaluate(source)

	if err := writeResult(outPath, result); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write result: %v\n", err)
		return 1
	}

	for _, e := range result.Errors {
		if e.Line > 0 {
			fmt.Fprintf(os.Stderr, "error: line %d: %s\n", e.Line, e.Message)
		} else {
			fmt.Fprintf(os.Stderr, "error: %s\n", e.Message)
		}
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w.Message)
	}
	if len(result.Errors) > 0 {
		return 1
	}
	return 0
}

func readScript(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func writeResult(path string, result app.EvalResult) error {
	w := io.Writer(os.Stdout)
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
