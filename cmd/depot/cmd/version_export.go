package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/oneconcern/depot/pkg/core"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var versionExport = &cobra.Command{
	Use:   "export version-id",
	Short: "Export the complete file tree of a version",
	Long: `Export the complete file tree of a version, with the files contributed by its dependencies,
to the current directory or to some output directory.`,
	Example: `% depot version export test/product/1 -o /tmp/product -t`,
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		l := config.logger()
		home := config.home(l)
		id := args[0]

		if depotFlags.version.test {
			v, err := home.Resolve(ctx, id)
			if err != nil {
				wrapFatalln("resolve version "+id, err)
				return
			}
			res, err := core.NewTester(home, config.coreOptions(l)...).Test(ctx, v, true)
			if err != nil {
				wrapFatalln("test version "+id, err)
				return
			}
			if !res.OK() {
				wrapFatalln("version "+id+" is not intact", res.Err())
				return
			}
		}

		out, err := filepath.Abs(depotFlags.version.output)
		if err != nil {
			wrapFatalln("output directory", err)
			return
		}
		finder, err := core.NewCachedFinder(core.NewFinder(home), config.Cache)
		if err != nil {
			wrapFatalln("file list cache", err)
			return
		}

		opts := append(config.coreOptions(l), filterOptions()...)
		files, err := core.Export(ctx, finder, id, afero.NewBasePathFs(afero.NewOsFs(), out), opts...)
		if err != nil {
			wrapFatalln("export version "+id, err)
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s (%d files)\n", id, out, len(files))
	},
}

func init() {
	addOutputDirFlag(versionExport)
	addTestFlag(versionExport, "test", "Test the version and its dependencies before export")
	addFilterFlags(versionExport)
	versionCmd.AddCommand(versionExport)
}
