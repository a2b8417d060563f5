// Command aactag views and edits the technical descriptor and tag record
// of AAC/MP4 audio files.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ankit-chaubey/aac-mp4-surgery/core"
	"github.com/ankit-chaubey/aac-mp4-surgery/core/aacfile"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:           "aactag",
	Short:         "Inspect and edit AAC/MP4 tag and stream metadata.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var viewOpts struct {
	json bool
}

var viewCmd = &cobra.Command{
	Use:   "view <path>",
	Short: "Print the technical descriptor and tag record of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h := aacfile.New()
		m, err := h.View(args[0])
		if err != nil {
			return fmt.Errorf("view: %w", err)
		}
		p := core.NewPrinter(viewOpts.json, false)
		p.PrintMetadata(m)
		return nil
	},
}

var setOpts struct {
	out    string
	dryRun bool
	fields map[string]string
}

var setCmd = &cobra.Command{
	Use:   "set <path>",
	Short: "Set tag fields via repeated --field Key=Value flags",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h := aacfile.New()
		opts := core.EditOptions{Set: setOpts.fields, DryRun: setOpts.dryRun}
		if err := h.Edit(args[0], setOpts.out, opts); err != nil {
			return fmt.Errorf("set: %w", err)
		}
		core.NewPrinter(false, false).PrintSuccess("tag updated")
		return nil
	},
}

var stripOpts struct {
	out      string
	keep     []string
	stripAll bool
}

var stripCmd = &cobra.Command{
	Use:   "strip <path>",
	Short: "Remove tag fields, optionally keeping a named subset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h := aacfile.New()
		opts := core.StripOptions{KeepFields: stripOpts.keep, StripAll: stripOpts.stripAll}
		if err := h.Strip(args[0], stripOpts.out, opts); err != nil {
			return fmt.Errorf("strip: %w", err)
		}
		core.NewPrinter(false, false).PrintSuccess("tag stripped")
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "aactag version: %s\n", version)
		return nil
	},
	DisableFlagsInUseLine: true,
}

var fieldFlags []string

func init() {
	rootCmd.SetOut(os.Stdout)
	rootCmd.SetErr(os.Stderr)

	viewCmd.Flags().BoolVar(&viewOpts.json, "json", false, "Emit JSON instead of text")

	setCmd.Flags().StringVarP(&setOpts.out, "out", "o", "", "Output path (default: edit in place)")
	setCmd.Flags().BoolVar(&setOpts.dryRun, "dry-run", false, "Apply changes in memory without writing the file")
	setCmd.Flags().StringArrayVar(&fieldFlags, "field", nil, "Key=Value field to set (repeatable)")

	stripCmd.Flags().StringVarP(&stripOpts.out, "out", "o", "", "Output path (default: strip in place)")
	stripCmd.Flags().StringArrayVar(&stripOpts.keep, "keep", nil, "Field name to retain (repeatable)")
	stripCmd.Flags().BoolVar(&stripOpts.stripAll, "all", false, "Strip every field, ignoring --keep")

	rootCmd.AddCommand(viewCmd, setCmd, stripCmd, versionCmd)
}

func main() {
	cobra.OnInitialize(func() {
		setOpts.fields = make(map[string]string, len(fieldFlags))
		for _, kv := range fieldFlags {
			if k, v, ok := core.ParseKV(kv); ok {
				setOpts.fields[k] = v
			}
		}
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "aactag: %s\n", err.Error())
		os.Exit(1)
	}
}
