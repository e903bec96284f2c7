package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/oneconcern/depot/pkg/repo"
	"github.com/spf13/cobra"
)

var versionStatus = &cobra.Command{
	Use:   "status",
	Short: "Commands to manage the statuses of versions",
	Long: `Commands to manage the statuses of versions.

Statuses are records added to imported versions, e.g. the outcome of some QA process.
They are the only information about a version which may change after its import.`,
}

var versionStatusAdd = &cobra.Command{
	Use:     "add <version-id> <key> <value> [flag=value...]",
	Short:   "Add a status to a version",
	Example: `% depot version status add test/comp/13 qa passed by=jdoe`,
	Args:    cobra.MinimumNArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		id := args[0]
		s := repo.Status{Key: args[1], Value: args[2]}
		for _, arg := range args[3:] {
			name, value, ok := strings.Cut(arg, "=")
			if !ok {
				wrapFatalln(fmt.Sprintf("status flag %q should be formatted as flag=value", arg), nil)
				return
			}
			if s.Flags == nil {
				s.Flags = make(map[string]string, len(args)-3)
			}
			s.Flags[name] = value
		}

		if err := config.home(config.logger()).AddStatus(context.Background(), id, s); err != nil {
			wrapFatalln("add status to version "+id, err)
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added status %s to %s\n", s, id)
	},
}

func init() {
	versionStatus.AddCommand(versionStatusAdd)
	versionCmd.AddCommand(versionStatus)
}
