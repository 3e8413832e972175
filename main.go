package main

import (
	_ "embed"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tsingjyujing/fastlang/cmd"
	"github.com/tsingjyujing/fastlang/utils"
)

var logger = logrus.New()

//go:embed version.txt
var version string

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of fastlang",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}

func main() {
	var verbose bool
	rootCmd := &cobra.Command{
		Use:   "fastlang",
		Short: "fastlang identifies the natural language of short text fragments",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				utils.SetVerbose()
			}
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	commands := []*cobra.Command{
		cmd.NewDetectCommand(),
		cmd.NewSegmentCommand(),
		cmd.NewServerCommand(),
		cmd.NewMcpCommand(),
		versionCommand,
	}
	for _, command := range commands {
		rootCmd.AddCommand(command)
	}
	if err := rootCmd.Execute(); err != nil {
		logger.WithError(err).Fatal("Failed to execute command")
	}
}
