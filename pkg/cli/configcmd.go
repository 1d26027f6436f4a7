package cli

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/recall/pkg/model"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

func configCommand() *cli.Command {
	var (
		cfg        config
		configPath string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to a YAML stage-config override file",
			Sources:     cli.EnvVars("RECALL_CONFIG"),
			Destination: &configPath,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "config",
		Usage: "Print the resolved stage configuration",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.setupLogger(ctx)

			var data []byte
			if configPath != "" {
				var err error
				data, err = os.ReadFile(configPath)
				if err != nil {
					return goerr.Wrap(err, "failed to read config file", goerr.V("path", configPath))
				}
			}

			resolved, err := model.ResolvePipelineConfigYAML(data)
			if err != nil {
				return err
			}

			enc := yaml.NewEncoder(c.Root().Writer)
			defer enc.Close()
			return enc.Encode(resolved)
		},
	}
}
