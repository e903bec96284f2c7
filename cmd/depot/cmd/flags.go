package cmd

import (
	"strings"

	"github.com/oneconcern/depot/pkg/digest"
	"github.com/oneconcern/depot/pkg/model"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type flagsT struct {
	root struct {
		home        string
		logLevel    string
		concurrency int
	}
	version struct {
		file      string
		inputDir  string
		versionID string
		source    map[string]*string
		hashes    []string
		tags      []string
		steps     []buildStep
		recursive bool
		test      bool
		output    string
		format    string
		dirs      bool
	}
	filter struct {
		excludeDependencies []string
		include             []string
		exclude             []string
	}
}

var depotFlags = flagsT{}

// buildStep is a dependency definition or an operation, applied in command line order
type buildStep struct {
	dependency string
	operation  *model.Operation
	version    bool
}

// stepsValue collects ordered build steps from repeated flags
type stepsValue struct {
	kind  string
	steps *[]buildStep
}

var _ pflag.Value = stepsValue{}

func (v stepsValue) String() string {
	return ""
}

func (v stepsValue) Type() string {
	return v.kind
}

func (v stepsValue) Set(value string) error {
	switch v.kind {
	case "dependency":
		if _, err := model.ParseDependency(value); err != nil {
			return err
		}
		*v.steps = append(*v.steps, buildStep{dependency: value})
	default:
		op, err := model.ParseOperationString(value)
		if err != nil {
			return err
		}
		*v.steps = append(*v.steps, buildStep{operation: &op, version: v.kind == "version-operation"})
	}
	return nil
}

func addHomeFlag(cmd *cobra.Command) string {
	home := "home"
	cmd.PersistentFlags().StringVar(&depotFlags.root.home, home, "", "Root directory of the repository. Defaults to $HOME/.depot")
	_ = viper.BindPFlag(home, cmd.PersistentFlags().Lookup(home))
	return home
}

func addLogLevelFlag(cmd *cobra.Command) string {
	logLevel := "loglevel"
	cmd.PersistentFlags().StringVar(&depotFlags.root.logLevel, logLevel, "info", "The logging level. Levels by increasing order of verbosity: none, error, warn, info, debug")
	_ = viper.BindPFlag(logLevel, cmd.PersistentFlags().Lookup(logLevel))
	return logLevel
}

func addConcurrencyFlag(cmd *cobra.Command) string {
	concurrency := "concurrency"
	cmd.PersistentFlags().IntVar(&depotFlags.root.concurrency, concurrency, 0, "Max number of dependencies resolved and files verified in parallel. Defaults to #cpus")
	_ = viper.BindPFlag(concurrency, cmd.PersistentFlags().Lookup(concurrency))
	return concurrency
}

func addMetadataFileFlag(cmd *cobra.Command, usage string) string {
	file := "file"
	cmd.Flags().StringVarP(&depotFlags.version.file, file, "f", "", usage)
	return file
}

func addInputDirFlag(cmd *cobra.Command) string {
	inputDir := "input-directory"
	cmd.Flags().StringVarP(&depotFlags.version.inputDir, inputDir, "i", "", "Input directory for binary files. Defaults to the directory of the metadata file")
	return inputDir
}

func addVersionIDFlag(cmd *cobra.Command) string {
	versionID := "version-id"
	cmd.Flags().StringVarP(&depotFlags.version.versionID, versionID, "v", "", "The version's id, e.g. my/component/123")
	return versionID
}

func addSourceFlags(cmd *cobra.Command) {
	depotFlags.version.source = make(map[string]*string, len(model.SourceKeys))
	for _, key := range model.SourceKeys {
		value := new(string)
		depotFlags.version.source[key] = value
		cmd.Flags().StringVar(value, "source-"+key, "", "Build source parameter "+key)
	}
}

func addFileParamsFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&depotFlags.version.hashes, "file-hashes", append([]string(nil), model.DefaultHashes...), "Comma-separated digest algorithms computed for files: "+strings.Join(digest.Default.Names(), ", "))
	cmd.Flags().StringSliceVar(&depotFlags.version.tags, "file-tags", nil, "Comma-separated tags set on files")
}

func addBuildStepsFlags(cmd *cobra.Command) {
	steps := &depotFlags.version.steps
	cmd.Flags().VarP(stepsValue{kind: "dependency", steps: steps}, "dependency", "d",
		"Dependency definition my/component/123[,name=AA][,path=aa][,internal]")
	cmd.Flags().VarP(stepsValue{kind: "operation", steps: steps}, "operation", "o",
		`Add an operation to the previous dependency, e.g. "cp *.txt txt/"`)
	cmd.Flags().VarP(stepsValue{kind: "version-operation", steps: steps}, "version-operation", "O",
		`Add an operation to the version, e.g. "rm docs"`)
}

func addRecursiveFlag(cmd *cobra.Command, usage string) string {
	recursive := "recursive"
	cmd.Flags().BoolVarP(&depotFlags.version.recursive, recursive, "r", false, usage)
	return recursive
}

func addTestFlag(cmd *cobra.Command, name, usage string) string {
	cmd.Flags().BoolVarP(&depotFlags.version.test, name, "t", false, usage)
	return name
}

func addOutputDirFlag(cmd *cobra.Command) string {
	output := "output-directory"
	cmd.Flags().StringVarP(&depotFlags.version.output, output, "o", ".", "Output directory")
	return output
}

func addFormatFlag(cmd *cobra.Command) string {
	format := "output"
	cmd.Flags().StringVar(&depotFlags.version.format, format, "text", "Output format: text or yaml")
	return format
}

func addDirsFlag(cmd *cobra.Command) string {
	dirs := "dirs"
	cmd.Flags().BoolVar(&depotFlags.version.dirs, dirs, false, "Print where the binaries of each version are stored")
	return dirs
}

func addFilterFlags(cmd *cobra.Command) {
	// patterns may contain commas, e.g. "a{1,3}" or "*.{txt,md}": one pattern per flag
	cmd.Flags().StringArrayVarP(&depotFlags.filter.excludeDependencies, "exclude-dependency", "e", nil,
		"Regular expression (RE2) excluding dependencies by version id or dependency name. Repeatable")
	cmd.Flags().StringArrayVar(&depotFlags.filter.include, "include", nil, "Glob selecting the files declared by versions. Repeatable")
	cmd.Flags().StringArrayVar(&depotFlags.filter.exclude, "exclude", nil, "Glob excluding the files declared by versions. Repeatable")
}

func sourceParams() map[string]string {
	res := make(map[string]string)
	for key, value := range depotFlags.version.source {
		if v := strings.TrimSpace(*value); v != "" {
			res[key] = v
		}
	}
	return res
}
