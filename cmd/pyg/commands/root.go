package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/l3aro/go-pygraph/internal/config"
	"github.com/l3aro/go-pygraph/internal/log"
	"github.com/spf13/cobra"
)

var (
	// cfg is the effective configuration, loaded before any subcommand runs.
	cfg *config.Config
	// cfgPath is the config file cfg was read from, empty when none applied.
	cfgPath string
	logger  log.Logger = log.Default()
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "pyg",
	Short: "go-pygraph - Python class and call graph tools",
	Long: `go-pygraph extracts class and call relationships from Python sources
and draws them as graphs.

Commands:
  classes     Class and function containment graph for a source tree
  calls       Full call graph for a source tree
  calltree    Bounded call tree from one function in one file
  draw        Draw a saved JSON edge list
  dot         Export or parse DOT edge files
  sources     List the Python files that would be analyzed
  watch       Drop caches whenever sources change
  init        Create a configuration file interactively
  doctor      Check configuration, sources and caches

Use "pyg [command] --help" for more information about a command.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.PersistentFlags().String("config", "", "Config file (default: ./.pyg/config.yaml, then ~/.pyg/config.yaml)")
	RootCmd.PersistentFlags().Bool("verbose", false, "Log per-file and per-edge detail")
	RootCmd.PersistentFlags().Bool("log-json", false, "Log as JSON lines")
}

// setup loads the configuration and configures the logger.
func setup(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")

	var err error
	if path != "" {
		cfg, err = config.LoadFromFile(path)
		cfgPath = path
	} else {
		cfg, err = config.Load()
		cfgPath = effectiveConfigPath()
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if cmd.Flags().Changed("verbose") {
		cfg.Verbose, _ = cmd.Flags().GetBool("verbose")
	}
	if cmd.Flags().Changed("log-json") {
		cfg.LogJSON, _ = cmd.Flags().GetBool("log-json")
	}

	level := log.InfoLevel
	if cfg.Verbose {
		level = log.DebugLevel
	}
	logger = log.New(log.LoggerConfig{Level: level, JSONOutput: cfg.LogJSON, Output: os.Stderr})
	logger.Debug("config loaded", "path", cfgPath)
	return nil
}

// effectiveConfigPath returns the highest-priority config file that exists.
func effectiveConfigPath() string {
	for _, path := range []string{config.ProjectConfigFilePath(), config.GlobalConfigFilePath()} {
		if fileExists(path) {
			return path
		}
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// overrideString sets *dst from a flag the user passed explicitly.
func overrideString(cmd *cobra.Command, name string, dst *string) {
	if cmd.Flags().Changed(name) {
		*dst, _ = cmd.Flags().GetString(name)
	}
}

func overrideInt(cmd *cobra.Command, name string, dst *int) {
	if cmd.Flags().Changed(name) {
		*dst, _ = cmd.Flags().GetInt(name)
	}
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
