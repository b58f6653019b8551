package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/wattrec/pkg/model"
	"github.com/m-mizutani/wattrec/pkg/usecase/record"
	"github.com/urfave/cli/v3"
)

func addCommand() *cli.Command {
	var (
		cfg     config
		payload model.EnergyUsagePayload
	)

	flags := []cli.Flag{
		&cli.FloatFlag{
			Name:        "usage",
			Aliases:     []string{"u"},
			Usage:       "Energy usage in kilowatt-hours",
			Required:    true,
			Sources:     cli.EnvVars("WATTREC_USAGE"),
			Destination: &payload.UsageKWh,
		},
		&cli.StringFlag{
			Name:        "device",
			Aliases:     []string{"d"},
			Usage:       "Type of device consuming the energy",
			Required:    true,
			Sources:     cli.EnvVars("WATTREC_DEVICE"),
			Destination: &payload.DeviceType,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "add",
		Usage: "Create a new energy usage record",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.loggerContext(ctx)

			repo, counter, closer, err := cfg.openStore()
			if err != nil {
				return err
			}
			defer closer()

			uc := record.New(repo, counter)

			rec, err := uc.Add(ctx, payload)
			if err != nil {
				return goerr.Wrap(err, "failed to add record")
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
