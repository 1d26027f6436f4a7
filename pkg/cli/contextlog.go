package cli

import (
	"context"
	"io"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/recall/pkg/adapter"
	"github.com/m-mizutani/recall/pkg/model"
	"github.com/m-mizutani/recall/pkg/usecase/contextbuild"
	"github.com/urfave/cli/v3"
)

func contextLogCommand() *cli.Command {
	var (
		cfg       config
		iin       string
		sessionID string
		at        string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "iin",
			Usage:       "User identity key",
			Required:    true,
			Sources:     cli.EnvVars("RECALL_IIN"),
			Destination: &iin,
		},
		&cli.StringFlag{
			Name:        "session",
			Usage:       "Session ID",
			Required:    true,
			Sources:     cli.EnvVars("RECALL_SESSION"),
			Destination: &sessionID,
		},
		&cli.StringFlag{
			Name:        "at",
			Usage:       "Turn timestamp of the archived block (RFC3339)",
			Required:    true,
			Destination: &at,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, pipelineFlags(&cfg)...)

	return &cli.Command{
		Name:  "context-log",
		Usage: "Print an archived context block from the debug bucket",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx)

			if cfg.debugBucket == "" {
				return goerr.New("debug-bucket is required")
			}

			ts, err := time.Parse(time.RFC3339, at)
			if err != nil {
				return goerr.Wrap(err, "invalid timestamp", goerr.V("at", at))
			}

			archive, err := adapter.NewStorage(ctx, cfg.debugBucket)
			if err != nil {
				return goerr.Wrap(err, "failed to open debug archive")
			}

			key := contextbuild.ArchiveKey(model.IIN(iin), model.SessionID(sessionID), ts)
			r, err := archive.Get(ctx, key)
			if err != nil {
				return goerr.Wrap(err, "failed to load archived context block", goerr.V("key", key))
			}
			defer r.Close()

			if _, err := io.Copy(c.Root().Writer, r); err != nil {
				return goerr.Wrap(err, "failed to print archived context block")
			}
			return nil
		},
	}
}
