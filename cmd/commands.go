package cmd

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"quillstream/internal/prompt"
)

func commands(args []string) error {
	fs := flag.NewFlagSet("commands", flag.ContinueOnError)
	lang := fs.String("lang", "en", "label language (en or ja)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("parse commands flags: %w", err)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tGROUP\tLABEL")
	for _, e := range prompt.Catalog(prompt.ParseLanguage(*lang)) {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Name, e.Group, e.Label)
	}
	return tw.Flush()
}
