package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rifkidocs/headless-firebase-sub000/pkg/openapi"
)

func newOpenAPICommand(out io.Writer) *Command {
	cmd := &Command{
		Name:        "openapi",
		Description: "Fetch or generate the OpenAPI document",
		Flags:       newFlagSet("openapi", out),
		out:         out,
	}
	srv := addServerFlags(cmd.Flags)
	format := cmd.Flags.String("format", "json", "Output format: json or yaml")
	output := cmd.Flags.String("out", "", "Write to file instead of stdout")
	schemaDir := cmd.Flags.String("schemas", "", "Generate offline from a directory of YAML schema files")
	version := cmd.Flags.String("api-version", "", "info.version for offline generation")

	cmd.Run = func(args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}
		f, err := openapi.ParseFormat(*format)
		if err != nil {
			return err
		}

		var data []byte
		if *schemaDir != "" {
			collections, err := loadSchemas("", *schemaDir)
			if err != nil {
				return err
			}
			if err := validateSchemas(collections); err != nil {
				return err
			}
			data, err = openapi.Render(openapi.Generate(collections, openapi.Info{Version: *version}), f)
			if err != nil {
				return err
			}
		} else {
			client := NewClient(context.Background(), *srv.server, *srv.token)
			data, err = client.OpenAPI(context.Background(), f)
			if err != nil {
				return err
			}
		}

		if *output == "" {
			_, err := out.Write(data)
			return err
		}
		if err := os.WriteFile(*output, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", *output, err)
		}
		fmt.Fprintf(out, "Wrote %s (%d bytes)\n", *output, len(data))
		return nil
	}

	return cmd
}
