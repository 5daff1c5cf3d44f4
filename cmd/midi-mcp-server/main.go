// Package main is the entry point for the midi-mcp-server CLI
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tubone24/midi-mcp-server/pkg/api"
	"github.com/tubone24/midi-mcp-server/pkg/compiler"
	"github.com/tubone24/midi-mcp-server/pkg/smf"
	"github.com/tubone24/midi-mcp-server/pkg/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	outputFile string
	inlineJSON string
	baseDir    string
	verbose    bool
	serverPort int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "midi-mcp-server",
	Short: "Compile beat-based JSON compositions into Standard MIDI Files",
	Long: `midi-mcp-server compiles a declarative description of a composition
(tempo, time signature, per-track instrument and notes) into a Standard
MIDI File.

Examples:
  midi-mcp-server compile song.json -o song.mid
  midi-mcp-server compile --data '{"bpm":120,"tracks":[...]}' -o song.mid
  midi-mcp-server inspect song.mid
  midi-mcp-server tui
  midi-mcp-server serve --port 8080`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
}

var compileCmd = &cobra.Command{
	Use:   "compile [input.json]",
	Short: "Compile a JSON composition to a MIDI file",
	Long: `Compiles a composition given as a JSON file argument or as inline JSON
via --data. Relative output paths land under the base directory's
fixed midi-files subdirectory; absolute paths are used verbatim.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCompile,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.mid>",
	Short: "Show the structure of a MIDI file",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
	RunE:  runTUI,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

func init() {
	// Compile command
	compileCmd.Flags().StringVarP(&outputFile, "output", "o", "composition.mid", "Output file path")
	compileCmd.Flags().StringVar(&inlineJSON, "data", "", "Inline JSON composition (instead of a file argument)")
	compileCmd.Flags().StringVar(&baseDir, "base-dir", "", "Base directory for relative output paths (default: home directory)")
	compileCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Report progress while sequencing")

	// Serve command
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "Server port")

	// Add commands
	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
}

func loadComposition(args []string) (*compiler.Composition, error) {
	if inlineJSON != "" {
		return compiler.ParseJSON([]byte(inlineJSON))
	}
	if len(args) == 1 {
		return compiler.LoadFile(args[0])
	}
	return nil, fmt.Errorf("either an input file argument or --data is required")
}

func runCompile(cmd *cobra.Command, args []string) error {
	comp, err := loadComposition(args)
	if err != nil {
		return err
	}

	opts := []compiler.Option{}
	if baseDir != "" {
		opts = append(opts, compiler.WithOutputConfig(compiler.OutputConfig{
			BaseDir: baseDir,
			Subdir:  compiler.DefaultSubdir,
		}))
	}
	if verbose {
		opts = append(opts, compiler.WithProgress(func(done, total int) {
			fmt.Printf("Sequenced %d/%d notes\n", done, total)
		}))
	}

	path, err := compiler.New(opts...).Compile(comp, outputFile)
	if err != nil {
		return err
	}

	fmt.Printf("Wrote %s\n", path)
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	summary, err := smf.ReadFile(args[0])
	if err != nil {
		return err
	}
	fmt.Print(summary.String())
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	return tui.Run()
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Printf("Starting API server on port %d...\n", serverPort)
	return api.StartServer(serverPort)
}
