package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"husk/internal/driver"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the diagnostics disk cache",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cache, err := driver.OpenDiskCache("husk")
		if err != nil {
			return err
		}
		if err := cache.DropAll(); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", cache.Dir())
		return err
	},
}
