package cmd

import (
	"context"

	"github.com/oneconcern/depot/pkg/model"
	"github.com/oneconcern/depot/pkg/repo"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// versionCmd represents the version related commands
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Commands to manage versions",
	Long: `Commands to manage versions.

A version is an immutable package release, identified like "my/component/123".
Its metadata file (ki-metadata.json) declares its files with their digests, its dependencies and file operations.`,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// metadataFile returns the metadata file and the input directory designated by flags
func metadataFile() (string, string) {
	file, inputDir := depotFlags.version.file, depotFlags.version.inputDir
	if file == "" {
		file = model.MetadataFileName
		if inputDir != "" {
			file = inputDir + "/" + model.MetadataFileName
		}
	}
	return file, inputDir
}

// targetVersions resolves the versions designated on the command line.
//
// A version loaded from a metadata file comes first. It is also known by the returned resolver.
func targetVersions(ctx context.Context, home *repo.Home, args []string, withFile bool) ([]*repo.Version, repo.Resolver, error) {
	var (
		versions []*repo.Version
		resolver repo.Resolver = home
	)
	if withFile && depotFlags.version.file != "" {
		file, inputDir := metadataFile()
		v, err := repo.NewVersionFromFile(afero.NewOsFs(), file, inputDir)
		if err != nil {
			return nil, nil, err
		}
		versions = append(versions, v)
		resolver = repo.WithVersions(home, v)
	}
	for _, id := range args {
		v, err := resolver.Resolve(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		versions = append(versions, v)
	}
	return versions, resolver, nil
}
