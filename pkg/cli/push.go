package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rifkidocs/headless-firebase-sub000/pkg/schema"
)

func newPushCommand(out io.Writer) *Command {
	cmd := &Command{
		Name:        "push",
		Description: "Create collections from YAML schema files",
		Flags:       newFlagSet("push", out),
		out:         out,
	}
	srv := addServerFlags(cmd.Flags)
	file := cmd.Flags.String("file", "", "YAML schema file")
	dir := cmd.Flags.String("dir", "", "Directory of *.yaml / *.yml schema files")
	dryRun := cmd.Flags.Bool("dry-run", false, "Validate only, do not contact the server")

	cmd.Run = func(args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}

		collections, err := loadSchemas(*file, *dir)
		if err != nil {
			return err
		}
		if err := validateSchemas(collections); err != nil {
			return err
		}
		if *dryRun {
			fmt.Fprintf(out, "%d collection(s) valid\n", len(collections))
			return nil
		}

		client := NewClient(context.Background(), *srv.server, *srv.token)
		for _, cfg := range collections {
			if _, err := client.CreateCollection(context.Background(), cfg); err != nil {
				return fmt.Errorf("failed to create %s: %w", cfg.Slug, err)
			}
			fmt.Fprintf(out, "Created %s (%d fields)\n", cfg.Slug, len(cfg.Fields))
		}
		return nil
	}

	return cmd
}

// loadSchemas reads collection configs from file or every YAML file in dir
func loadSchemas(file, dir string) ([]*schema.CollectionConfig, error) {
	var paths []string
	switch {
	case file != "" && dir != "":
		return nil, fmt.Errorf("use either -file or -dir")
	case file != "":
		paths = []string{file}
	case dir != "":
		for _, pattern := range []string{"*.yaml", "*.yml"} {
			matches, err := filepath.Glob(filepath.Join(dir, pattern))
			if err != nil {
				return nil, err
			}
			paths = append(paths, matches...)
		}
		sort.Strings(paths)
		if len(paths) == 0 {
			return nil, fmt.Errorf("no schema files in %s", dir)
		}
	default:
		return nil, fmt.Errorf("-file or -dir is required")
	}

	var out []*schema.CollectionConfig
	for _, p := range paths {
		cfgs, err := LoadSchemaFile(p)
		if err != nil {
			return nil, err
		}
		out = append(out, cfgs...)
	}
	return out, nil
}

// LoadSchemaFile decodes every YAML document in path as a collection
// config. Multiple collections are separated with "---".
func LoadSchemaFile(path string) ([]*schema.CollectionConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open schema file: %w", err)
	}
	defer f.Close()

	var out []*schema.CollectionConfig
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	for {
		var cfg schema.CollectionConfig
		err := dec.Decode(&cfg)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if cfg.Kind == "" {
			cfg.Kind = schema.KindCollection
		}
		out = append(out, &cfg)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: no collections defined", path)
	}
	return out, nil
}

// validateSchemas applies the server's rules locally so a bad file fails
// before anything is created
func validateSchemas(collections []*schema.CollectionConfig) error {
	v := schema.NewValidator()
	seen := make(map[string]bool, len(collections))
	var problems []string
	for i, cfg := range collections {
		if err := v.Validate(cfg); err != nil {
			problems = append(problems, err.Error())
			continue
		}
		if seen[cfg.Slug] {
			problems = append(problems, fmt.Sprintf("duplicate slug %q", cfg.Slug))
		}
		seen[cfg.Slug] = true
		if err := schema.CheckComponentCollision(collections[:i], cfg); err != nil {
			problems = append(problems, err.Error())
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("schema validation failed:\n  %s", strings.Join(problems, "\n  "))
	}
	return nil
}
