package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/wattrec/pkg/usecase/record"
	"github.com/urfave/cli/v3"
)

func deleteCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete an energy usage record and print the removed value",
		ArgsUsage: "<id>",
		Flags:     globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.loggerContext(ctx)

			id, err := parseRecordID(c)
			if err != nil {
				return err
			}

			repo, counter, closer, err := cfg.openStore()
			if err != nil {
				return err
			}
			defer closer()

			uc := record.New(repo, counter)

			rec, err := uc.Delete(ctx, id)
			if err != nil {
				return goerr.Wrap(err, "failed to delete record")
			}

			data, err := json.MarshalIndent(rec, "", "  ")
			if err != nil {
				return goerr.Wrap(err, "failed to marshal record")
			}

			fmt.Fprintf(c.Root().Writer, "%s\n", string(data))
			return nil
		},
	}
}
