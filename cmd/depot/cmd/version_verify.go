package cmd

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/oneconcern/depot/pkg/core"
	"github.com/spf13/cobra"
)

var versionTest = &cobra.Command{
	Use:   "test [version-id...]",
	Short: "Test that the files of versions are intact",
	Long: `Test that the files of versions are intact, by recomputing their digests.

Versions are taken from the repository, or from a metadata file with -f. In this case, binary files are
read from the directory of the metadata file unless some other input directory is set.
With -r, dependencies are tested too, including internal ones.`,
	Example: `% depot version test -r my/product/1
All files ok.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		l := config.logger()
		home := config.home(l)

		versions, resolver, err := targetVersions(ctx, home, args, true)
		if err != nil {
			wrapFatalln("resolve versions", err)
			return
		}
		if len(versions) == 0 {
			wrapFatalln("no version to test: specify a version id or a metadata file", nil)
			return
		}

		tester := core.NewTester(resolver, config.coreOptions(l)...)
		out := cmd.OutOrStdout()
		allOK := true
		for _, v := range versions {
			res, err := tester.Test(ctx, v, depotFlags.version.recursive)
			if err != nil {
				wrapFatalln("test version "+v.ID, err)
				return
			}
			for _, failure := range res.Failures {
				fmt.Fprintf(out, "%s %s\n", color.RedString("FAIL"), failure)
			}
			allOK = allOK && res.OK()
		}

		if !allOK {
			wrapFatalWithCodef(1, "some files are not intact")
			return
		}
		fmt.Fprintln(out, color.GreenString("All files ok."))
	},
}

func init() {
	addMetadataFileFlag(versionTest, "Version metadata file. By default, binary files are read from the file's directory")
	addInputDirFlag(versionTest)
	addRecursiveFlag(versionTest, "Test the version's dependencies too")
	versionCmd.AddCommand(versionTest)
}
