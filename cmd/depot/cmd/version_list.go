package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var versionList = &cobra.Command{
	Use:   "list",
	Short: "List the versions in the repository",
	Long:  `List the ids of all the versions imported into the repository, in lexicographic order.`,
	Example: `% depot version list
test/comp/13
test/product/1`,
	Run: func(cmd *cobra.Command, args []string) {
		ids, err := config.home(config.logger()).Versions(context.Background())
		if err != nil {
			wrapFatalln("list versions", err)
			return
		}
		out := cmd.OutOrStdout()
		for _, id := range ids {
			fmt.Fprintln(out, id)
		}
	},
}

func init() {
	versionCmd.AddCommand(versionList)
}
