package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// mintAttributes returns the attributes of a new draft. Without a document
// only the publisher and the current year are sent.
func mintAttributes(conf *Configuration, contents []byte) (map[string]interface{}, error) {
	if len(contents) == 0 {
		return map[string]interface{}{
			"publisher":       conf.Publisher,
			"publicationYear": time.Now().Year(),
		}, nil
	}
	var doc interface{}
	if err := json.Unmarshal(contents, &doc); err != nil {
		return nil, fmt.Errorf("not a JSON document: %w", err)
	}
	attrs, ok := unwrapMetadata(doc).(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("metadata must be a JSON object")
	}
	return attrs, nil
}

// printMint reserves a draft DOI and prints the record.
func printMint(ctx context.Context, minter doiMinter, attrs map[string]interface{}, out io.Writer) error {
	if !minter.Configured() {
		return errors.New(msgMintNotReady)
	}
	rec, err := minter.Mint(ctx, attrs)
	if err != nil {
		_, msg := mintErrorMessage(err)
		return errors.New(msg)
	}
	fmt.Fprintf(out, "DOI: %s\n", rec.DOI)
	fmt.Fprintf(out, "URL: %s\n", rec.URL)
	return nil
}

func climint(cmd *cobra.Command, args []string) {
	conf := loadconfigOrExit(cmd)
	if missing := conf.missingMintSettings(); len(missing) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "Missing DataCite settings: %s\n", strings.Join(missing, ", "))
		os.Exit(1)
	}

	var contents []byte
	if len(args) == 1 {
		var err error
		contents, err = readSource(args[0])
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Failed to read %q: %s\n", args[0], err.Error())
			os.Exit(1)
		}
	}
	attrs, err := mintAttributes(conf, contents)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
		os.Exit(1)
	}

	client := conf.newDataCiteClient()
	if err := printMint(cmd.Context(), client, attrs, cmd.OutOrStdout()); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
		os.Exit(1)
	}
}
