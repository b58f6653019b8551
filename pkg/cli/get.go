package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/wattrec/pkg/model"
	"github.com/m-mizutani/wattrec/pkg/usecase/record"
	"github.com/urfave/cli/v3"
)

// parseRecordID reads the single positional <id> argument of a command
func parseRecordID(c *cli.Command) (model.RecordID, error) {
	if c.Args().Len() != 1 {
		return 0, goerr.New("record id is required")
	}

	id, err := strconv.ParseUint(c.Args().First(), 10, 64)
	if err != nil {
		return 0, goerr.Wrap(err, "invalid record id", goerr.V("arg", c.Args().First()))
	}
	return model.RecordID(id), nil
}

func getCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:      "get",
		Usage:     "Show an energy usage record by ID",
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

			rec, err := uc.Get(ctx, id)
			if err != nil {
				return goerr.Wrap(err, "failed to get record")
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
