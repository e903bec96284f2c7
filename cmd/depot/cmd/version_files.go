package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/oneconcern/depot/pkg/core"
	"github.com/spf13/cobra"
)

var versionFiles = &cobra.Command{
	Use:   "files version-id [glob...]",
	Short: "List the complete file tree of a version",
	Long: `List the complete file tree of a version, with the files contributed by its dependencies.

Each line shows the virtual path of a file, then the version which provides it and its path in that version.
Globs filter the listed virtual paths.`,
	Example: `% depot version files test/product/1 "*aa*"
comp/aa.txt         test/comp/13  aa.txt
product-txt/aa.txt  test/comp/13  aa.txt`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		l := config.logger()

		finder := core.NewFinder(config.home(l), config.coreOptions(l)...)
		files, err := finder.Find(ctx, args[0], args[1:], filterOptions()...)
		if err != nil {
			wrapFatalln("list files of "+args[0], err)
			return
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, pth := range files.Paths() {
			entry := files[pth]
			fmt.Fprintf(w, "%s\t%s\t%s\n", pth, entry.Version, entry.File.Path)
		}
		_ = w.Flush()
	},
}

func filterOptions() []core.Option {
	return []core.Option{
		core.ExcludeDependencies(depotFlags.filter.excludeDependencies...),
		core.Files(depotFlags.filter.include...),
		core.ExcludeFiles(depotFlags.filter.exclude...),
	}
}

func init() {
	addFilterFlags(versionFiles)
	versionCmd.AddCommand(versionFiles)
}
