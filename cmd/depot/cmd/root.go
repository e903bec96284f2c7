// Copyright © 2018 One Concern

package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"

	"github.com/joho/godotenv"
	"github.com/oneconcern/depot/pkg/core"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "depot",
	Short: "Depot manages immutable package versions and their dependencies",
	Long: `Depot manages immutable package versions and their dependencies.

Each version carries metadata: its provenance, the digests of its files, its dependencies on other versions
and operations rewriting the file tree. Depot resolves the complete file tree of a version, with everything
contributed by its dependencies, and verifies the integrity of files against their recorded digests.
`,
	SilenceUsage: true,
}

var config *CLIConfig

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		osExit(1)
	}
}

func init() {
	log.SetFlags(0)
	cobra.OnInitialize(initConfig)

	addHomeFlag(rootCmd)
	addLogLevelFlag(rootCmd)
	addConcurrencyFlag(rootCmd)
}

func defaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".depot"
	}
	return filepath.Join(home, ".depot")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// a .env file in the current directory is optional
	_ = godotenv.Load()

	viper.SetDefault("home", defaultHome())
	viper.SetDefault("loglevel", "info")
	viper.SetDefault("concurrency", runtime.NumCPU())
	viper.SetDefault("cache", core.DefaultCacheSize)

	if os.Getenv("DEPOT_CONFIG") != "" {
		viper.SetConfigFile(os.Getenv("DEPOT_CONFIG"))
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.depot")
		viper.AddConfigPath("/etc/depot")
		viper.SetConfigName("depot")
	}

	viper.SetEnvPrefix("depot")
	viper.AutomaticEnv() // read in environment variables that match
	if err := viper.ReadInConfig(); err == nil {
		log.Println("Using config file:", viper.ConfigFileUsed())
	}

	var err error
	config, err = newConfig()
	if err != nil {
		logFatalln(err)
	}
}
