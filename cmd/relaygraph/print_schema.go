package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hanpama/relaygraph/internal/example"
	"github.com/hanpama/relaygraph/internal/schema"
)

func newPrintSchemaCmd(root *rootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "print-schema",
		Short: "Print the example schema as SDL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			exe, err := example.NewSchema()
			if err != nil {
				return fmt.Errorf("build schema: %w", err)
			}
			sdl := schema.Render(exe.Schema)
			if out == "" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), sdl)
				return err
			}
			if err := os.WriteFile(out, []byte(sdl), 0o644); err != nil {
				return err
			}
			root.logger.WithField("path", out).Info("Wrote schema")
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Write SDL to file instead of stdout")
	return cmd
}
