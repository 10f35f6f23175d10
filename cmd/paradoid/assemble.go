package main

import (
	"fmt"
	"os"

	humanize "github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/paradim/paradoid/datacite"
)

// readFormYAML parses form values from YAML.
func readFormYAML(contents []byte) (datacite.FormInput, error) {
	in := datacite.FormInput{}
	if err := yaml.UnmarshalStrict(contents, &in); err != nil {
		return in, fmt.Errorf("invalid form file: %w", err)
	}
	return in, nil
}

// assembleForm builds the document for the form values and checks it. The
// returned messages are empty if the document is valid.
func assembleForm(conf *Configuration, in datacite.FormInput) (*datacite.Metadata, []string) {
	if missing := in.Check(); len(missing) > 0 {
		return nil, missing
	}
	if in.Publisher == "" {
		in.Publisher = conf.Publisher
	}
	in.LandingBase = conf.LandingBase
	md := datacite.Assemble(in)
	res := md.Validate()
	observeValidation(res.Valid, res.Error != "")
	if !res.OK() {
		return nil, res.Messages()
	}
	return md, nil
}

func cliassemble(cmd *cobra.Command, args []string) {
	conf := loadconfigOrExit(cmd)
	outpath, _ := cmd.Flags().GetString("out")

	contents, err := readSource(args[0])
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Failed to read %q: %s\n", args[0], err.Error())
		os.Exit(1)
	}
	in, err := readFormYAML(contents)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
		os.Exit(1)
	}
	md, msgs := assembleForm(conf, in)
	if len(msgs) > 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "Metadata is not valid:")
		for _, msg := range msgs {
			fmt.Fprintf(cmd.ErrOrStderr(), "  - %s\n", msg)
		}
		os.Exit(1)
	}

	data, err := md.MarshalIndent()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Failed to serialise metadata: %s\n", err.Error())
		os.Exit(1)
	}
	if outpath == "-" {
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return
	}
	if err := os.WriteFile(outpath, append(data, '\n'), 0664); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Failed to write %q: %s\n", outpath, err.Error())
		os.Exit(1)
	}
	log.WithFields(log.Fields{
		"source": lpCLI,
		"file":   outpath,
	}).Debug("Wrote metadata")
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s)\n", outpath, humanize.Bytes(uint64(len(data)+1)))
}
