package cmd

import (
	"fmt"

	"github.com/oneconcern/depot/pkg/core"
	"github.com/oneconcern/depot/pkg/dlogger"
	"github.com/oneconcern/depot/pkg/repo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

// CLIConfig describes the CLI configuration.
type CLIConfig struct {
	// field names match the serialized names, for viper
	Home        string `json:"home" yaml:"home"`               // Root directory of the repository
	LogLevel    string `json:"loglevel" yaml:"loglevel"`       // Log level: debug, info, warn, error or none
	Concurrency int    `json:"concurrency" yaml:"concurrency"` // Max parallel resolutions and verifications
	Cache       int    `json:"cache" yaml:"cache"`             // Number of resolved file lists kept in memory
}

func newConfig() (*CLIConfig, error) {
	var config CLIConfig
	err := viper.Unmarshal(&config)
	if err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *CLIConfig) logger() *zap.Logger {
	l, err := dlogger.GetLogger(c.LogLevel)
	if err != nil {
		wrapFatalln("failed to set log level", err)
		return zap.NewNop()
	}
	return l
}

func (c *CLIConfig) home(l *zap.Logger) *repo.Home {
	return repo.Open(c.Home, repo.Logger(l), repo.Concurrency(c.Concurrency))
}

func (c *CLIConfig) coreOptions(l *zap.Logger, opts ...core.Option) []core.Option {
	return append([]core.Option{core.Logger(l), core.Concurrency(c.Concurrency)}, opts...)
}

// configCmd represents the config related commands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Commands to manage the depot CLI config",
	Long: `Commands to manage the depot CLI config.

The config is read from depot.yaml, in the current directory, in $HOME/.depot or in /etc/depot.
The DEPOT_CONFIG environment variable points to some other config file.
Any setting may be overridden by an environment variable prefixed with DEPOT_, e.g. DEPOT_HOME.`,
}

var configShow = &cobra.Command{
	Use:   "show",
	Short: "Print the config used",
	Long:  "Print the config used by the invocation of the depot command",
	Run: func(cmd *cobra.Command, args []string) {
		o, err := yaml.Marshal(config)
		if err != nil {
			wrapFatalln("serialize config to yaml", err)
			return
		}
		fmt.Fprint(cmd.OutOrStdout(), string(o))
	},
}

func init() {
	configCmd.AddCommand(configShow)
	rootCmd.AddCommand(configCmd)
}
