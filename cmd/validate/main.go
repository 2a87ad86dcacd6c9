package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"regexp"

	"github.com/jwebster45206/survival-engine/internal/storage"
	"github.com/jwebster45206/survival-engine/pkg/species"
)

func main() {
	writeSchemas := flag.Bool("schema", false, "also write JSON schemas for content files to <data-dir>/schema")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-schema] <data-dir>\n", os.Args[0])
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	dataDir := flag.Arg(0)

	if *writeSchemas {
		written, err := writeSchemaFiles(dataDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write schemas: %v\n", err)
			os.Exit(1)
		}
		for _, path := range written {
			fmt.Printf("Wrote %s\n", path)
		}
	}

	fmt.Printf("Validating %s...\n", dataDir)
	validator := &ContentValidator{loader: storage.NewContentLoader(dataDir)}
	validator.Validate(context.Background())

	if len(validator.errors) > 0 {
		fmt.Fprintf(os.Stderr, "Validation failed with %d problem(s):\n", len(validator.errors))
		for _, e := range validator.errors {
			fmt.Fprintln(os.Stderr, e)
		}
		os.Exit(1)
	}
	fmt.Printf("Content is valid! (%d species)\n", validator.species)
}

// ContentValidator loads every species against the shared library and
// collects every problem rather than stopping at the first.
type ContentValidator struct {
	loader  *storage.ContentLoader
	errors  []string
	species int
}

func (v *ContentValidator) Validate(ctx context.Context) {
	shared, err := v.loader.LoadShared(ctx)
	if err != nil {
		v.addError("shared", err)
		return
	}
	v.validateIDs("shared", shared)

	ids, err := v.loader.ListSpecies(ctx)
	if err != nil {
		v.addError("species", err)
		return
	}
	if len(ids) == 0 {
		v.addError("species", errors.New("no species directories found"))
		return
	}

	for _, id := range ids {
		bundle, err := v.loader.LoadSpecies(ctx, id)
		if err != nil {
			v.addError(id, err)
			continue
		}
		v.species++
		if bundle.Config.ID != id {
			v.addError(id, fmt.Errorf("config id %q does not match directory name", bundle.Config.ID))
		}
		v.validateIDFormat(id, "species id", bundle.Config.ID)
		v.validateIDs(id, bundle.Content)
		v.addError(id, bundle.Validate(shared))
	}
}

func (v *ContentValidator) validateIDs(scope string, c species.Content) {
	for _, ev := range c.Events {
		if ev != nil {
			v.validateIDFormat(scope, "event id", ev.ID)
		}
	}
	for id := range c.Parasites {
		v.validateIDFormat(scope, "parasite id", id)
	}
	for id := range c.Injuries {
		v.validateIDFormat(scope, "injury id", id)
	}
}

func (v *ContentValidator) validateIDFormat(scope, fieldName, id string) {
	if id != "" && !validIDRegex.MatchString(id) {
		v.errors = append(v.errors, fmt.Sprintf("  - %s: %s '%s' should be lowercase kebab-case", scope, fieldName, id))
	}
}

// addError flattens joined errors so each problem gets its own line.
func (v *ContentValidator) addError(scope string, err error) {
	if err == nil {
		return
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			v.addError(scope, e)
		}
		return
	}
	v.errors = append(v.errors, fmt.Sprintf("  - %s: %v", scope, err))
}

var validIDRegex = regexp.MustCompile(`^[a-z][a-z0-9-]*[a-z0-9]$|^[a-z]$`)
