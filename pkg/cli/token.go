package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/rifkidocs/headless-firebase-sub000/pkg/auth"
)

func newGenTokenCommand(out io.Writer) *Command {
	cmd := &Command{
		Name:        "gen-token",
		Description: "Generate a static admin token and its config entry",
		Flags:       newFlagSet("gen-token", out),
		out:         out,
	}
	subject := cmd.Flags.String("subject", "", "Name reported as the deleting subject")

	cmd.Run = func(args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}
		if *subject == "" || strings.ContainsAny(*subject, ":,") {
			return fmt.Errorf("subject is required and must not contain ':' or ','")
		}

		token, hash, err := auth.GenerateToken()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Token (shown once): %s\n", token)
		fmt.Fprintf(out, "Add to HEADLESS_AUTH_STATIC_TOKENS: %s:%s\n", *subject, hash)
		return nil
	}

	return cmd
}
