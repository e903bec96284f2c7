package cmd

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	units "github.com/docker/go-units"
	"github.com/oneconcern/depot/pkg/core"
	"github.com/oneconcern/depot/pkg/model"
	"github.com/oneconcern/depot/pkg/repo"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

var versionShow = &cobra.Command{
	Use:   "show [version-id...]",
	Short: "Print information about versions",
	Long: `Print information about versions: source, dependencies, files, operations and statuses.

With -r, the dependencies of the versions are printed too, in traversal order.
With --dirs, the location of the binaries of each version is printed too.`,
	Example: `% depot version show test/comp/13
Version: test/comp/13
Files(1):
aa.txt - size: 2B, sha1=e0c9035898dd52fc65c41454cec9c4d2611bfb37`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		l := config.logger()

		home := config.home(l)
		versions, resolver, err := targetVersions(ctx, home, args, true)
		if err != nil {
			wrapFatalln("resolve versions", err)
			return
		}

		var show func(io.Writer, core.Node) error
		switch depotFlags.version.format {
		case "yaml":
			show = showYAML
		case "text", "":
			show = func(w io.Writer, node core.Node) error {
				if err := showText(w, node); err != nil {
					return err
				}
				return showDetails(ctx, w, home, node)
			}
		default:
			wrapFatalln("unsupported output format "+strconv.Quote(depotFlags.version.format), nil)
			return
		}

		walker := core.NewWalker(resolver, config.coreOptions(l)...)
		out := cmd.OutOrStdout()
		for _, v := range versions {
			if !depotFlags.version.recursive {
				err = show(out, walker.Root(v))
			} else {
				err = walker.IterateVersions(ctx, v, func(node core.Node) error {
					return show(out, node)
				})
			}
			if err != nil {
				wrapFatalln("show version "+v.ID, err)
				return
			}
		}
	},
}

func showText(w io.Writer, node core.Node) error {
	metadata := node.Version.Metadata
	fmt.Fprintf(w, "Version: %s\n", metadata.VersionID)
	if node.Path != "" {
		fmt.Fprintf(w, "Path: %s\n", node.Path)
	}
	if len(metadata.Source) > 0 {
		fmt.Fprintf(w, "Source: %s\n", mapToCSL(metadata.Source))
	}
	if len(metadata.Dependencies) > 0 {
		fmt.Fprintf(w, "Dependencies(%d):\n", len(metadata.Dependencies))
		for _, dep := range metadata.Dependencies {
			params := make(map[string]string)
			if dep.Name != "" {
				params["name"] = dep.Name
			}
			if dep.Path != "" {
				params["path"] = dep.Path
			}
			if dep.Internal {
				params["internal"] = "true"
			}
			fmt.Fprintf(w, "%s: %s\n", dep.VersionID, mapToCSL(params))
			if len(dep.Operations) > 0 {
				fmt.Fprintln(w, "Dependency operations:")
				writeOperations(w, dep.Operations)
			}
		}
	}
	if len(metadata.Files) > 0 {
		fmt.Fprintf(w, "Files(%d):\n", len(metadata.Files))
		for _, file := range metadata.Files {
			params := make(map[string]string, len(file.Digests)+1)
			for algo, sum := range file.Digests {
				params[algo] = sum
			}
			if len(file.Tags) > 0 {
				params["tags"] = strings.Join(file.Tags, ",")
			}
			fmt.Fprintf(w, "%s - size: %s, %s\n", file.Path, units.HumanSize(float64(file.Size)), mapToCSL(params))
		}
	}
	if len(metadata.Operations) > 0 {
		fmt.Fprintf(w, "Version operations(%d):\n", len(metadata.Operations))
		writeOperations(w, metadata.Operations)
	}
	return nil
}

// showDetails prints the information kept outside of the version's metadata
func showDetails(ctx context.Context, w io.Writer, home *repo.Home, node core.Node) error {
	statuses, err := home.Statuses(ctx, node.Version.ID)
	if err != nil {
		return err
	}
	if len(statuses) > 0 {
		fmt.Fprintf(w, "Statuses(%d):\n", len(statuses))
		for _, s := range statuses {
			fmt.Fprintln(w, s.String())
		}
	}
	if depotFlags.version.dirs {
		location := "none"
		if node.Version.Binaries != nil {
			location = node.Version.Binaries.String()
		}
		fmt.Fprintf(w, "Version directories: %s\n", location)
	}
	return nil
}

func writeOperations(w io.Writer, ops model.Operations) {
	for _, op := range ops {
		fmt.Fprintln(w, op.String())
	}
}

func mapToCSL(m map[string]string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+m[k])
	}
	return strings.Join(parts, ", ")
}

func showYAML(w io.Writer, node core.Node) error {
	o, err := yaml.Marshal(node.Version.Metadata)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "---\n%s", o)
	return err
}

func init() {
	addMetadataFileFlag(versionShow, "Version metadata file, shown before the versions from the repository")
	addInputDirFlag(versionShow)
	addRecursiveFlag(versionShow, "Show the version's dependencies too")
	addFormatFlag(versionShow)
	addDirsFlag(versionShow)
	versionCmd.AddCommand(versionShow)
}
