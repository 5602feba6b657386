package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cfnts/cfnts/internal/logging"
	"github.com/cfnts/cfnts/internal/source"
)

// newRegistryClient is replaced in tests.
var newRegistryClient = func(ctx context.Context, region string) (source.DescribeTypeAPI, error) {
	client, err := source.NewRegistryClient(ctx, region)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func newFetchCmd(g *globalFlags) *cobra.Command {
	var region, dir string
	cmd := &cobra.Command{
		Use:   "fetch [type-name...]",
		Short: "Download resource schemas from the CloudFormation registry",
		Long: `Fetch describes each resource type in the CloudFormation registry and
stores its schema in the schemas directory. Without arguments the
registry.types list of the config is fetched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig(cmd)
			if err != nil {
				return err
			}
			types := args
			if len(types) == 0 {
				types = cfg.Registry.Types
			}
			if len(types) == 0 {
				return fmt.Errorf("no type names given and registry.types is empty")
			}
			if !cmd.Flags().Changed("region") {
				region = cfg.Registry.Region
			}
			if !cmd.Flags().Changed("dir") {
				dir = cfg.Schemas
			}

			client, err := newRegistryClient(cmd.Context(), region)
			if err != nil {
				return err
			}
			src := &source.RegistrySource{Client: client, Types: types}
			schemas, err := src.Schemas(cmd.Context())
			if err != nil {
				return err
			}
			paths, err := source.WriteSchemas(dir, schemas)
			if err != nil {
				return err
			}
			for i, p := range paths {
				logging.Debug("fetched schema", "type", schemas[i].TypeName, "path", p)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "fetched %d schema(s) into %s\n", len(paths), dir)
			return nil
		},
	}
	cmd.Flags().StringVar(&region, "region", "", "AWS region (default: registry.region or the AWS profile)")
	cmd.Flags().StringVar(&dir, "dir", "", "destination directory (default: the schemas directory)")
	return cmd
}
