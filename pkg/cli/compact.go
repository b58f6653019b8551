package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/wattrec/pkg/usecase/record"
	"github.com/urfave/cli/v3"
)

func compactCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "compact",
		Usage: "Reclaim space held by deleted and overwritten records",
		Flags: globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.loggerContext(ctx)

			repo, counter, closer, err := cfg.openStore()
			if err != nil {
				return err
			}
			defer closer()

			uc := record.New(repo, counter)

			if err := uc.Compact(ctx); err != nil {
				return goerr.Wrap(err, "failed to compact store")
			}

			fmt.Fprintln(c.Root().Writer, "compacted")
			return nil
		},
	}
}
