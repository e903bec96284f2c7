package cmd

import (
	"context"
	"fmt"

	"github.com/oneconcern/depot/pkg/core"
	"github.com/oneconcern/depot/pkg/repo"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var versionImport = &cobra.Command{
	Use:   "import",
	Short: "Import a version into the repository",
	Long: `Import a version and its files into the repository.

The version is described by a metadata file (ki-metadata.json in the current directory by default).
Its binary files are read from the directory of the metadata file unless some other input directory is set.
An existing version is never replaced.`,
	Example: `% depot version import -f build/ki-metadata.json -t`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		l := config.logger()
		home := config.home(l)

		file, inputDir := metadataFile()
		v, err := repo.NewVersionFromFile(afero.NewOsFs(), file, inputDir)
		if err != nil {
			wrapFatalln("load version from "+file, err)
			return
		}

		if depotFlags.version.test {
			tester := core.NewTester(repo.WithVersions(home, v), config.coreOptions(l)...)
			res, err := tester.Test(ctx, v, true)
			if err != nil {
				wrapFatalln("test version "+v.ID, err)
				return
			}
			if !res.OK() {
				wrapFatalln("version "+v.ID+" is not intact", res.Err())
				return
			}
		}

		if err = home.Import(ctx, v); err != nil {
			wrapFatalln("import version "+v.ID, err)
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %s (%d files)\n", v.ID, len(v.Metadata.Files))
	},
}

func init() {
	addMetadataFileFlag(versionImport, "Version metadata file. By default, binary files are read from the file's directory")
	addInputDirFlag(versionImport)
	addTestFlag(versionImport, "test-recursive", "Test the version and its dependencies before importing")
	versionCmd.AddCommand(versionImport)
}
