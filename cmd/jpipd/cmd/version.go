package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewVersionCmd prints the build version.
func NewVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the jpipd build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}
}
