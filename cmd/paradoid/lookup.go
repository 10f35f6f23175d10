package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// printORCID looks up an ORCID iD and prints the person record.
func printORCID(ctx context.Context, client orcidLookup, id string, out io.Writer) error {
	person, err := client.Lookup(ctx, id)
	if err != nil {
		_, msg := orcidErrorMessage(err)
		return fmt.Errorf(msgORCIDError, msg)
	}
	fmt.Fprintf(out, "First name:  %s\n", person.FirstName)
	fmt.Fprintf(out, "Last name:   %s\n", person.LastName)
	fmt.Fprintf(out, "Affiliation: %s\n", person.Affiliation)
	return nil
}

func clilookup(cmd *cobra.Command, args []string) {
	conf := loadconfigOrExit(cmd)
	if err := printORCID(cmd.Context(), conf.newORCIDClient(), args[0], cmd.OutOrStdout()); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
		os.Exit(1)
	}
}
