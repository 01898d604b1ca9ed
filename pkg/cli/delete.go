package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
)

func newDeleteCommand(out io.Writer) *Command {
	cmd := &Command{
		Name:        "delete",
		Description: "Delete a collection with its documents and media",
		Flags:       newFlagSet("delete", out),
		out:         out,
	}
	srv := addServerFlags(cmd.Flags)
	slug := cmd.Flags.String("slug", "", "Collection slug")
	confirm := cmd.Flags.Bool("yes", false, "Confirm the irreversible deletion")

	cmd.Run = func(args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}
		if *slug == "" && cmd.Flags.NArg() > 0 {
			*slug = cmd.Flags.Arg(0)
		}
		if *slug == "" {
			return fmt.Errorf("slug is required")
		}
		if !*confirm {
			return fmt.Errorf("deleting %q removes every document and media asset; rerun with -yes to confirm", *slug)
		}

		client := NewClient(context.Background(), *srv.server, *srv.token)
		result, err := client.DeleteCollection(context.Background(), *slug)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Deleted collection %s\n", result.Slug)
		fmt.Fprintf(out, "  documents: %d in %d batches\n", result.DocumentsDeleted, result.Batches)
		fmt.Fprintf(out, "  assets:    %d of %d deleted\n", result.AssetsDeleted, result.AssetsRequested)
		if len(result.Warnings) > 0 {
			fmt.Fprintf(out, "Warnings (%d), these assets may still exist:\n", len(result.Warnings))
			for _, w := range result.Warnings {
				code := w.Code
				if code == "" {
					code = "error"
				}
				fmt.Fprintf(out, "  chunk %d [%s] %s: %s\n", w.Chunk, code, w.Message, strings.Join(w.PublicIDs, ", "))
			}
		}
		return nil
	}

	return cmd
}

func newListCommand(out io.Writer) *Command {
	cmd := &Command{
		Name:        "list",
		Description: "List registered collections",
		Flags:       newFlagSet("list", out),
		out:         out,
	}
	srv := addServerFlags(cmd.Flags)

	cmd.Run = func(args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}

		client := NewClient(context.Background(), *srv.server, *srv.token)
		collections, err := client.ListCollections(context.Background())
		if err != nil {
			return err
		}

		if len(collections) == 0 {
			fmt.Fprintln(out, "No collections")
			return nil
		}
		for _, c := range collections {
			fmt.Fprintf(out, "%-24s %-16s %-24s %d fields\n", c.Slug, c.Kind, c.Label, len(c.Fields))
		}
		return nil
	}

	return cmd
}
