package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/wattrec/pkg/model"
	"github.com/urfave/cli/v3"
)

func schemaCommand() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Print the JSON Schema of the add payload and the record type",
		Action: func(ctx context.Context, c *cli.Command) error {
			payloadSchema, err := jsonschema.For[model.EnergyUsagePayload](nil)
			if err != nil {
				return goerr.Wrap(err, "failed to derive payload schema")
			}

			recordSchema, err := jsonschema.For[model.EnergyUsage](nil)
			if err != nil {
				return goerr.Wrap(err, "failed to derive record schema")
			}

			// Recommendation marshals as its text or null, not as the Go
			// struct shape, so the reflected schema must be overridden.
			recordSchema.Properties["recommendation"] = &jsonschema.Schema{
				Types: []string{"string", "null"},
			}

			out := map[string]*jsonschema.Schema{
				"add_payload": payloadSchema,
				"record":      recordSchema,
			}

			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return goerr.Wrap(err, "failed to marshal schemas")
			}

			fmt.Fprintf(c.Root().Writer, "%s\n", string(data))
			return nil
		},
	}
}
