package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/paradim/paradoid/datacite"
)

// validateSource reads and validates the document at source, which can be a
// file path, a URL, or "-" for stdin.
func validateSource(source string) (*datacite.Result, error) {
	contents, err := readSource(source)
	if err != nil {
		return nil, err
	}
	var doc interface{}
	if err := json.Unmarshal(contents, &doc); err != nil {
		return nil, fmt.Errorf("not a JSON document: %w", err)
	}
	return datacite.Validate(unwrapMetadata(doc)), nil
}

// validateSources validates each source and prints the results. It returns
// the number of sources that could not be read or are invalid.
func validateSources(sources []string, out io.Writer) int {
	var failed int
	for idx, source := range sources {
		fmt.Fprintf(out, "%3d: %s\n", idx, source)
		res, err := validateSource(source)
		if err != nil {
			fmt.Fprintf(out, "     Failed to read %q: %s\n", source, err.Error())
			failed++
			continue
		}
		observeValidation(res.Valid, res.Error != "")
		if res.OK() {
			fmt.Fprintln(out, "     OK")
			continue
		}
		failed++
		for _, msg := range res.Messages() {
			fmt.Fprintf(out, "     - %s\n", msg)
		}
	}
	return failed
}

func clivalidate(cmd *cobra.Command, args []string) {
	loadconfigOrExit(cmd)
	failed := validateSources(args, cmd.OutOrStdout())
	fmt.Fprintf(cmd.OutOrStdout(), "%d of %d documents valid\n", len(args)-failed, len(args))
	if failed > 0 {
		os.Exit(1)
	}
}
