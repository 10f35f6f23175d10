package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var appversion string
var build string
var commit string

// setUpCommands sets up the root command of the service and the subcommands
// of the command line tools.
func setUpCommands(verstr string) *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:     "paradoid",
		Long:    "PARADIM DOI service\n\nForm and API for reserving draft DOIs and preparing DataCite metadata for research datasets.",
		Version: fmt.Sprintln(verstr),
	}
	rootCmd.PersistentFlags().String("config", "", "YAML configuration `file`; environment variables take precedence")
	rootCmd.PersistentFlags().String("envfile", "", "read environment variables from `file` (default: .env in the working directory, if present)")
	rootCmd.PersistentFlags().Bool("debug", false, "print debug messages")

	cmds := make([]*cobra.Command, 5)
	cmds[0] = &cobra.Command{
		Use:                   "web",
		Short:                 "Start the DOI form and API server",
		Args:                  cobra.NoArgs,
		Run:                   web,
		DisableFlagsInUseLine: true,
	}
	cmds[1] = &cobra.Command{
		Use:   "validate <file or URL>...",
		Short: "Validate DataCite JSON metadata documents",
		Long: `Validate one or more DataCite JSON metadata documents.

The arguments can be local files or URLs; "-" reads from stdin. Documents of the
form {"metadata": {...}} are validated by their metadata value. The command
exits with a non-zero status if any document is invalid.`,
		Args:                  cobra.MinimumNArgs(1),
		Run:                   clivalidate,
		DisableFlagsInUseLine: true,
	}
	cmds[2] = &cobra.Command{
		Use:   "assemble <form yaml>",
		Short: "Assemble a DataCite JSON metadata document from form values",
		Long: `Assemble a DataCite JSON metadata document from the form values in a YAML file.

The file holds the fields of the web form (title, description, keywords,
relateddoi, doi and a list of creators). The document is validated before it
is written.`,
		Args:                  cobra.ExactArgs(1),
		Run:                   cliassemble,
		DisableFlagsInUseLine: true,
	}
	cmds[2].Flags().StringP("out", "o", downloadFilename, "`file` to write the document to; \"-\" writes to stdout")
	cmds[3] = &cobra.Command{
		Use:                   "orcid <ORCID iD>",
		Short:                 "Look up the name and affiliation of an ORCID iD",
		Args:                  cobra.ExactArgs(1),
		Run:                   clilookup,
		DisableFlagsInUseLine: true,
	}
	cmds[4] = &cobra.Command{
		Use:   "mint [metadata file]",
		Short: "Reserve a draft DOI with DataCite",
		Long: `Reserve a draft DOI with the configured DataCite account.

The optional argument is a JSON file with the attributes of the draft. Without
it only the publisher and the current publication year are sent.`,
		Args:                  cobra.MaximumNArgs(1),
		Run:                   climint,
		DisableFlagsInUseLine: true,
	}
	rootCmd.AddCommand(cmds...)
	return rootCmd
}

// loadconfigOrExit reads the configuration selected by the global flags and
// sets up logging. It exits on error.
func loadconfigOrExit(cmd *cobra.Command) *Configuration {
	cfgpath, _ := cmd.Flags().GetString("config")
	envpath, _ := cmd.Flags().GetString("envfile")
	debug, _ := cmd.Flags().GetBool("debug")

	conf, err := loadconfig(cfgpath, envpath)
	if err != nil {
		log.WithFields(log.Fields{
			"source": lpConfig,
			"error":  err,
		}).Error("Failed to load configuration")
		os.Exit(-1)
	}
	if debug {
		conf.Debug = true
	}
	if conf.Debug {
		log.SetLevel(log.DebugLevel)
		log.SetFormatter(&log.TextFormatter{ForceColors: true})
	}
	return conf
}

func main() {
	verstr := fmt.Sprintf("PARADOID %s Build %s (%s)", appversion, build, commit)

	rootCmd := setUpCommands(verstr)
	rootCmd.SetVersionTemplate("{{.Version}}")

	// Engage
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
