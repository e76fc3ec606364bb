package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var version = "0.2.0"

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the panbundle version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("panbundle", version)
		},
	}
}
