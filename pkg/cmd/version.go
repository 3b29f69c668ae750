package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/khanhlinhdang/atkcore/pkg/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "show version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Version)
	},
}

func init() {
	RootCmd.AddCommand(versionCmd)
}
