package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/oneconcern/depot/pkg/model"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var versionBuild = &cobra.Command{
	Use:   "build [file glob...]",
	Short: "Create or update a version metadata file",
	Long: `Create or update a version metadata file.

Sets source info, dependencies, operations and files. Files are selected in the input directory
by globs, where "*" matches across directories. Operations given with -o apply to the dependency
defined just before them with -d.`,
	Example: `% depot version build -v my/product/1 -d my/comp/13,name=comp,path=comp -o "cp *.txt txt/" -O "rm comp/docs" "*"`,
	Run: func(cmd *cobra.Command, args []string) {
		fs := afero.NewOsFs()
		file, inputDir := metadataFile()
		if inputDir == "" {
			inputDir = filepath.Dir(file)
		}

		metadata := model.NewMetadata("")
		exists, err := afero.Exists(fs, file)
		if err != nil {
			wrapFatalln("looking for metadata file", err)
			return
		}
		if exists {
			if metadata, err = model.LoadFile(fs, file); err != nil {
				wrapFatalln("load metadata file "+file, err)
				return
			}
		}

		if depotFlags.version.versionID != "" {
			metadata.VersionID = depotFlags.version.versionID
		}
		metadata.SetSource(sourceParams())

		if err = applyBuildSteps(metadata, depotFlags.version.steps); err != nil {
			wrapFatalln("apply dependencies and operations", err)
			return
		}

		if len(args) > 0 {
			params := model.NewFileParams(model.Hashes(depotFlags.version.hashes...), model.Tags(depotFlags.version.tags...))
			if err = metadata.AddFiles(fs, inputDir, args, params); err != nil {
				wrapFatalln("add files", err)
				return
			}
			// the metadata file never describes itself
			if rel, e := filepath.Rel(inputDir, file); e == nil {
				metadata.RemoveFile(filepath.ToSlash(rel))
			}
		}

		if err = metadata.SaveFile(fs, file); err != nil {
			wrapFatalln("save metadata file "+file, err)
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d files, %d dependencies)\n", file, len(metadata.Files), len(metadata.Dependencies))
	},
}

func applyBuildSteps(metadata *model.Metadata, steps []buildStep) error {
	previous := model.DependencyRef(-1)
	for _, step := range steps {
		switch {
		case step.dependency != "":
			ref, err := metadata.AddDependency(step.dependency)
			if err != nil {
				return err
			}
			previous = ref
		case step.version:
			metadata.AddOperation(*step.operation)
		default:
			if err := metadata.AddDependencyOperation(previous, *step.operation); err != nil {
				return err
			}
		}
	}
	return nil
}

func init() {
	addMetadataFileFlag(versionBuild, "Version metadata file to create or update. Defaults to ki-metadata.json in the input directory")
	addInputDirFlag(versionBuild)
	addVersionIDFlag(versionBuild)
	addSourceFlags(versionBuild)
	addFileParamsFlags(versionBuild)
	addBuildStepsFlags(versionBuild)
	versionCmd.AddCommand(versionBuild)
}
