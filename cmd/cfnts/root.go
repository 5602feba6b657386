package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cfnts/cfnts/internal/config"
	"github.com/cfnts/cfnts/internal/logging"
)

// Version is set at build time via ldflags.
var Version = "dev"

type globalFlags struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "cfnts",
		Short: "Compile CloudFormation resource schemas into TypeScript types",
		Long: `cfnts reads CloudFormation resource provider schemas and writes one
TypeScript module per resource type, with the writable properties, the
attributes available through Fn::GetAtt and every referenced definition.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := logging.ParseLevel(g.logLevel); !ok {
				return fmt.Errorf("unknown log level %q", g.logLevel)
			}
			logging.InitWriter(cmd.ErrOrStderr(), g.logLevel)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "config file (default: cfnts.yaml in the working directory)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "info", "log level: debug, info, warn or error")

	root.AddCommand(
		newGenerateCmd(g),
		newWatchCmd(g),
		newDumpCmd(g),
		newFetchCmd(g),
		newVersionCmd(),
	)
	return root
}

// loadConfig reads the explicit or discovered config file, or returns the
// defaults when there is none. The config's log level applies unless
// --log-level was given.
func (g *globalFlags) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := g.configPath
	if path == "" {
		path = config.Find(".")
	}

	var cfg *config.Config
	if path == "" {
		def := config.DefaultConfig()
		cfg = &def
	} else {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
		logging.Debug("loaded config", "path", path)
	}

	if !cmd.Flags().Changed("log-level") && cfg.LogLevel != "" {
		logging.InitWriter(cmd.ErrOrStderr(), cfg.LogLevel)
	}
	return cfg, nil
}
