package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/haivivi/meetpilot/pkg/cli"
)

var (
	// Global flags
	cfgFile    string
	envFiles   []string
	outputFile string
	inputFile  string
	outputJSON bool
	verbose    bool

	globalConfig *cli.Config
	configErr    error
)

var rootCmd = &cobra.Command{
	Use:   "meetpilot",
	Short: "Live meeting assistant",
	Long: `meetpilot - agenda generation and live meeting analysis.

The server relays meeting audio to a speech-to-text session and runs a
panel of analysts on every finalized transcript segment: checklist
progress, speaker engagement, topic drift and conversation tips.

Examples:
  # Run the server
  meetpilot serve

  # Generate an agenda from a form
  meetpilot agenda create -f form.yaml

  # Revise an agenda
  meetpilot agenda chat -f chat.yaml --json
`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.meetpilot/config.yaml)")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", []string{".env"}, "dotenv files loaded before the config")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "output file (default: stdout)")
	rootCmd.PersistentFlags().StringVarP(&inputFile, "file", "f", "", "input request file (YAML or JSON, - for stdin)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output as JSON (for piping)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(agendaCmd)
	rootCmd.AddCommand(configCmd)
}

func initConfig() {
	globalConfig, configErr = loadConfig()

	logLevel := slog.LevelInfo
	if globalConfig != nil {
		if l, err := globalConfig.SlogLevel(); err == nil {
			logLevel = l
		}
	}
	if verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))
}

func loadConfig() (*cli.Config, error) {
	if err := cli.LoadEnvFiles(envFiles...); err != nil {
		return nil, err
	}
	cfg, err := cli.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.LookupEnv)
	return cfg, nil
}

// getConfig returns the validated global configuration.
func getConfig() (*cli.Config, error) {
	if configErr != nil {
		return nil, fmt.Errorf("load config: %w", configErr)
	}
	if globalConfig == nil {
		return nil, fmt.Errorf("configuration not initialized")
	}
	if err := globalConfig.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", globalConfig.Path(), err)
	}
	return globalConfig, nil
}

func outputResult(result any) error {
	p := &cli.Printer{JSON: outputJSON, Path: outputFile}
	return p.Print(result)
}
