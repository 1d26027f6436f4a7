package cli

import (
	"context"
	"encoding/json"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/recall/pkg/model"
	"github.com/urfave/cli/v3"
)

func turnCommand() *cli.Command {
	var (
		cfg        config
		inputPath  string
		outputPath string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "Path to JSON file containing the turn request",
			Required:    true,
			Destination: &inputPath,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Path to write the turn result JSON (stdout when empty)",
			Destination: &outputPath,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)
	flags = append(flags, pipelineFlags(&cfg)...)

	return &cli.Command{
		Name:  "turn",
		Usage: "Run one pipeline turn from a JSON request",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx)

			data, err := os.ReadFile(inputPath)
			if err != nil {
				return goerr.Wrap(err, "failed to read turn request", goerr.V("path", inputPath))
			}

			var req model.TurnRequest
			if err := json.Unmarshal(data, &req); err != nil {
				return goerr.Wrap(model.ErrMalformedInput, "turn request is not valid JSON")
			}

			pipeline, _, err := cfg.newPipeline(ctx)
			if err != nil {
				return err
			}

			result, err := pipeline.Run(ctx, &req)
			if err != nil {
				return goerr.Wrap(err, "turn failed")
			}

			out := c.Root().Writer
			if outputPath != "" {
				f, err := os.Create(outputPath)
				if err != nil {
					return goerr.Wrap(err, "failed to create output file", goerr.V("path", outputPath))
				}
				defer f.Close()
				out = f
			}

			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				return goerr.Wrap(err, "failed to encode turn result")
			}
			return nil
		},
	}
}
