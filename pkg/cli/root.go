package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
)

const (
	defaultServer = "http://localhost:8080"
	serverEnv     = "HEADLESS_SERVER"
	tokenEnv      = "HEADLESS_TOKEN"
)

// Command represents a CLI command
type Command struct {
	Name        string
	Description string
	Run         func(args []string) error
	Subcommands map[string]*Command
	Flags       *flag.FlagSet
	out         io.Writer
}

// NewRootCommand creates the root command
func NewRootCommand() *Command {
	return newRootCommand(os.Stdout)
}

func newRootCommand(out io.Writer) *Command {
	root := &Command{
		Name:        "headless-cli",
		Description: "Administration client for the headless content backend",
		Subcommands: make(map[string]*Command),
		Flags:       flag.NewFlagSet("headless-cli", flag.ContinueOnError),
		out:         out,
	}

	// Add subcommands
	for _, cmd := range []*Command{
		newDeleteCommand(out),
		newListCommand(out),
		newPushCommand(out),
		newOpenAPICommand(out),
		newGenTokenCommand(out),
	} {
		root.Subcommands[cmd.Name] = cmd
	}

	return root
}

// Execute runs the command with the process arguments
func (c *Command) Execute() error {
	return c.ExecuteArgs(os.Args[1:])
}

// ExecuteArgs dispatches args to the matching subcommand
func (c *Command) ExecuteArgs(args []string) error {
	if len(args) == 0 {
		return c.usage()
	}

	// Check for help flag
	if args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		return c.usage()
	}

	// Check for subcommand
	if subcmd, ok := c.Subcommands[args[0]]; ok {
		return subcmd.Run(args[1:])
	}

	return fmt.Errorf("unknown command: %s", args[0])
}

// usage prints the command usage
func (c *Command) usage() error {
	fmt.Fprintf(c.out, "Usage: %s <command> [args]\n\n", c.Name)
	fmt.Fprintf(c.out, "Commands:\n")
	names := make([]string, 0, len(c.Subcommands))
	for name := range c.Subcommands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(c.out, "  %-15s %s\n", name, c.Subcommands[name].Description)
	}
	return nil
}

func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

// serverFlags are shared by every command that talks to a running server
type serverFlags struct {
	server *string
	token  *string
}

func addServerFlags(fs *flag.FlagSet) serverFlags {
	return serverFlags{
		server: fs.String("server", envOr(serverEnv, defaultServer), "Server base URL (env "+serverEnv+")"),
		token:  fs.String("token", os.Getenv(tokenEnv), "Bearer token (env "+tokenEnv+")"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
