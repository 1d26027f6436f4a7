package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/chzyer/readline"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/recall/pkg/model"
	"github.com/urfave/cli/v3"
)

func chatCommand() *cli.Command {
	var (
		cfg       config
		iin       string
		sessionID string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "iin",
			Usage:       "User identity key",
			Value:       "dev-user",
			Sources:     cli.EnvVars("RECALL_IIN"),
			Destination: &iin,
		},
		&cli.StringFlag{
			Name:        "session",
			Usage:       "Session ID",
			Value:       "dev-session",
			Sources:     cli.EnvVars("RECALL_SESSION"),
			Destination: &sessionID,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)
	flags = append(flags, pipelineFlags(&cfg)...)

	return &cli.Command{
		Name:  "chat",
		Usage: "Interactive REPL running one pipeline turn per message",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx)

			pipeline, repo, err := cfg.newPipeline(ctx)
			if err != nil {
				return err
			}

			rl, err := readline.New("> ")
			if err != nil {
				return goerr.Wrap(err, "failed to initialize readline")
			}
			defer rl.Close()

			out := c.Root().Writer
			fmt.Fprintln(out, "Pipeline REPL. Type 'exit' to quit.")

			for {
				line, err := rl.Readline()
				if err != nil { // io.EOF or interrupt
					return nil
				}
				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}
				if line == "exit" || line == "quit" {
					return nil
				}

				now := time.Now()
				req := &model.TurnRequest{
					IIN:       model.IIN(iin),
					SessionID: model.SessionID(sessionID),
					Message:   line,
					Now:       now,
				}

				sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
				sp.Suffix = " running turn..."
				sp.Start()
				result, err := pipeline.Run(ctx, req)
				sp.Stop()
				if err != nil {
					fmt.Fprintf(out, "error: %v\n", err)
					continue
				}

				// This write is caller-requested, so its failure
				// propagates rather than degrading.
				if err := repo.SaveMessage(ctx, req.IIN, req.SessionID, model.Message{
					Role:      "user",
					Content:   line,
					CreatedAt: now,
				}); err != nil {
					return goerr.Wrap(err, "failed to log message")
				}

				fmt.Fprintf(out, "mode: %s  hold: %v  context tokens: %d\n",
					result.Disclosure.Mode,
					result.Decision.HoldForClarification,
					result.Context.TotalTokens)
				if result.Context.Text != "" {
					fmt.Fprintln(out, "--- assembled context ---")
					fmt.Fprintln(out, result.Context.Text)
				}
				fmt.Fprintln(out, "--- instructions ---")
				fmt.Fprintln(out, result.Disclosure.Instructions)
				if len(result.Disclosure.QuickReplies) > 0 {
					fmt.Fprintf(out, "quick replies: %s\n", strings.Join(result.Disclosure.QuickReplies, " | "))
				}
			}
		},
	}
}
