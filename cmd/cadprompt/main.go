// Cadprompt renders the instruction prompt that asks a model for a
// standalone FreeCAD script. It does not call any model; the prompt is
// printed to stdout for another tool to send.
//
// Usage:
//
//	cadprompt render [-variant v] <request...>   Print the rendered prompt
//	cadprompt render [-variant v] -              Read the request from stdin
//	cadprompt init [dir]                         Write an example config.yaml
//	cadprompt variants                           List template variants
//	cadprompt version                            Print build information
//	cadprompt -o json version                    Output version as JSON
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/nugget/cadprompt/internal/buildinfo"
	"github.com/nugget/cadprompt/internal/config"
	"github.com/nugget/cadprompt/internal/prompts"
)

func main() {
	ctx := context.Background()

	if err := run(ctx, os.Stdin, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

// run is the real entry point. OS-level dependencies are injected so tests
// can drive it directly. The rendered prompt goes to stdout; logs go to
// stderr so they never mix with the prompt.
func run(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, args []string) error {
	// Parsed by hand to keep flag.CommandLine globals out of tests.
	var configPath string
	var outputFmt string
	var variant string
	var command string
	var cmdArgs []string

	for i := 0; i < len(args); i++ {
		switch {
		case command == "render" && len(cmdArgs) > 0:
			// Everything after the first request word belongs to the request.
			cmdArgs = append(cmdArgs, args[i])
		case args[i] == "-config" && i+1 < len(args):
			configPath = args[i+1]
			i++
		case strings.HasPrefix(args[i], "-config="):
			configPath = strings.TrimPrefix(args[i], "-config=")
		case (args[i] == "-o" || args[i] == "--output") && i+1 < len(args):
			outputFmt = args[i+1]
			i++
		case strings.HasPrefix(args[i], "-o="):
			outputFmt = strings.TrimPrefix(args[i], "-o=")
		case (args[i] == "-variant" || args[i] == "--variant") && i+1 < len(args):
			variant = args[i+1]
			i++
		case strings.HasPrefix(args[i], "-variant="):
			variant = strings.TrimPrefix(args[i], "-variant=")
		case args[i] == "-h" || args[i] == "-help" || args[i] == "--help":
			return printUsage(stdout)
		case !strings.HasPrefix(args[i], "-") && command == "":
			command = args[i]
		case command != "" && (args[i] == "-" || !strings.HasPrefix(args[i], "-")):
			cmdArgs = append(cmdArgs, args[i])
		default:
			return fmt.Errorf("unknown flag: %s", args[i])
		}
	}

	if outputFmt == "" {
		outputFmt = "text"
	}
	if outputFmt != "text" && outputFmt != "json" {
		return fmt.Errorf("unknown output format: %q (expected text or json)", outputFmt)
	}

	switch command {
	case "render":
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		if variant == "" {
			variant = cfg.Variant
		}
		level, _ := config.ParseLogLevel(cfg.LogLevel)
		logger := config.NewLogger(stderr, level)
		return runRender(ctx, logger, stdin, stdout, variant, cmdArgs)
	case "init":
		dir := "."
		if len(cmdArgs) > 0 {
			dir = cmdArgs[0]
		}
		return runInit(stdout, dir)
	case "variants":
		return runVariants(stdout, outputFmt)
	case "version":
		return runVersion(stdout, outputFmt)
	case "":
		return printUsage(stdout)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

// loadConfig finds and validates the config file. A missing file is fine
// unless the caller named one explicitly.
func loadConfig(explicit string) (*config.Config, error) {
	path, err := config.FindConfig(explicit)
	if errors.Is(err, config.ErrNotFound) {
		return config.Default(), nil
	}
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runRender prints the rendered prompt for the request in args. A single
// "-" argument reads the request from stdin, byte for byte.
func runRender(ctx context.Context, logger *slog.Logger, stdin io.Reader, stdout io.Writer, variant string, args []string) error {
	v, err := prompts.ParseVariant(variant)
	if err != nil {
		return err
	}

	var request string
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("read request from stdin: %w", err)
		}
		request = string(data)
	} else {
		request = strings.Join(args, " ")
	}

	logger.Debug("rendering prompt", "variant", v, "request_len", len(request))

	prompt, err := prompts.Render(v, request)
	if err != nil {
		return fmt.Errorf("usage: cadprompt render [-variant v] <request>: %w", err)
	}

	logger.Log(ctx, config.LevelTrace, "prompt rendered", "variant", v, "prompt_len", len(prompt))

	_, err = io.WriteString(stdout, prompt)
	return err
}

// variantInfo describes one template for the variants command.
type variantInfo struct {
	Name     string   `json:"name"`
	Sections []string `json:"sections"`
	Examples []string `json:"examples"`
}

// runVariants lists every variant with its sections and worked examples.
func runVariants(w io.Writer, outputFmt string) error {
	var infos []variantInfo
	for _, v := range prompts.Variants() {
		t, err := prompts.GetTemplate(v)
		if err != nil {
			return err
		}
		info := variantInfo{Name: string(v), Examples: t.Examples()}
		for _, h := range t.Sections() {
			if h.Level <= 2 {
				info.Sections = append(info.Sections, h.Title)
			}
		}
		infos = append(infos, info)
	}

	if outputFmt == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}

	for _, info := range infos {
		fmt.Fprintf(w, "%s\n", info.Name)
		if len(info.Sections) > 0 {
			fmt.Fprintf(w, "  sections: %s\n", strings.Join(info.Sections, ", "))
		}
		for i, ex := range info.Examples {
			fmt.Fprintf(w, "  %d. %s\n", i+1, ex)
		}
	}
	return nil
}

// runVersion prints build metadata in the requested output format.
func runVersion(w io.Writer, outputFmt string) error {
	info := buildinfo.Info()
	if outputFmt == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}
	fmt.Fprintln(w, buildinfo.String())
	for _, k := range []string{"version", "git_commit", "build_time", "go_version", "os", "arch"} {
		if v, ok := info[k]; ok {
			fmt.Fprintf(w, "  %-12s %s\n", k+":", v)
		}
	}
	return nil
}

// printUsage writes the top-level help text to w.
func printUsage(w io.Writer) error {
	fmt.Fprintln(w, "cadprompt - FreeCAD script prompt renderer")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: cadprompt [flags] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  render <request>   Print the prompt for a request (\"-\" reads stdin)")
	fmt.Fprintln(w, "  init [dir]         Write an example config.yaml (default: .)")
	fmt.Fprintln(w, "  variants           List template variants")
	fmt.Fprintln(w, "  version            Show version information")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -config <path>     Path to config file (default: auto-discover)")
	fmt.Fprintln(w, "  -variant <name>    Template variant: basic or enhanced")
	fmt.Fprintln(w, "  -o, --output fmt   Output format: text (default) or json")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Config search order:")
	for _, p := range config.DefaultSearchPaths() {
		fmt.Fprintf(w, "  %s\n", p)
	}
	return nil
}
