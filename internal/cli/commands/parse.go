package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/benchforge/benchforge/prompt/parser"
)

// NewParseCommand creates the parse command
func NewParseCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "parse <prompt>",
		Short: "Parse a prompt and print the app descriptor",
		Long: `Parse a natural-language prompt into its app descriptor without
touching the bench. Useful for checking what a prompt will generate.

Examples:
  benchforge parse "Create an app named library_app with DocTypes: Article (name: Data, author: Data)"
  benchforge parse --format yaml "Create an app named todo_app with DocTypes: Task (name: Data, due: Date)"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := parser.Parse(args[0])
			if err != nil {
				return err
			}

			var out []byte
			switch format {
			case "json":
				out, err = json.MarshalIndent(desc, "", "  ")
				if err == nil {
					out = append(out, '\n')
				}
			case "yaml":
				out, err = yaml.Marshal(desc)
			default:
				return fmt.Errorf("unknown format %q (want json or yaml)", format)
			}
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format (json, yaml)")

	return cmd
}
