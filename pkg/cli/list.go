package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/wattrec/pkg/usecase/record"
	"github.com/urfave/cli/v3"
)

func listCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "list",
		Usage: "List all records in ascending ID order",
		Flags: globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.loggerContext(ctx)

			repo, counter, closer, err := cfg.openStore()
			if err != nil {
				return err
			}
			defer closer()

			uc := record.New(repo, counter)

			recs, err := uc.List(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to list records")
			}

			data, err := json.MarshalIndent(recs, "", "  ")
			if err != nil {
				return goerr.Wrap(err, "failed to marshal records")
			}

			fmt.Fprintf(c.Root().Writer, "%s\n", string(data))
			return nil
		},
	}
}
