package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	mdwlog "github.com/msto63/dramatica/foundation/core/log"
	"github.com/msto63/dramatica/foundation/scene"
	"github.com/msto63/dramatica/pkg/core/config"
	"github.com/msto63/dramatica/pkg/core/logging"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool

	appConfig *config.Config
	appLogger *logging.Logger
)

// errReported marks a failure whose diagnostics were already printed
var errReported = errors.New("reported")

var rootCmd = &cobra.Command{
	Use:   "dramatica",
	Short: "Dramatica - a small language for staged scenes",
	Long: `Dramatica runs scripts written as theatre scenes.

A scene has one character with a typed memory. The character READs
values, SAYS expressions and assigns results to memory:

  SCENE Greeting:
    CHARACTER Clown:
      MEMORY:
        name: TEXT;
      END_MEMORY
    READ name;
    Clown SAYS "hello " + name;
  END_SCENE

Commands check, format and run scenes, play them interactively in the
terminal, export them as PDF or serve them over HTTP, WebSocket and gRPC.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if appLogger != nil {
			appLogger.Close()
		}
	},
}

// Execute runs the root command
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errReported) {
		printError(rootCmd.ErrOrStderr(), err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $DRAMATICA_CONFIG or ./configs/dramatica.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	if cfgFile != "" {
		appConfig, err = config.Load(cfgFile)
	} else {
		appConfig, err = config.LoadFromEnv()
	}
	if err != nil {
		return err
	}

	lc := logging.FromConfig("dramatica", appConfig.Logging)
	lc.Console = cmd.ErrOrStderr()
	if verbose {
		lc.Level = "debug"
	}
	appLogger, err = logging.NewLogger(lc)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	mdwlog.SetDefault(appLogger.Logger)
	return nil
}

func newEngine() *scene.Engine {
	return scene.New(scene.Options{Logger: appLogger.Logger})
}

// readSource reads a scene file; "-" reads standard input
func readSource(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		return string(data), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
}
