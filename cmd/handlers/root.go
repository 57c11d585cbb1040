/*
Copyright © 2025 Your Name

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package handlers

import (
	"fmt"
	"os"

	"riskdigest/internal/config"
	"riskdigest/internal/logger"

	"github.com/spf13/cobra"
)

var cfgFile string

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "riskdigest",
		Short: "riskdigest builds a weekly financial risk digest from negative business news.",
		Long: `riskdigest searches Webz.io for negative-sentiment business and finance news,
asks a language model to write a structured financial risk report for every
article that carries an explicit risk, and assembles the first few reports into
a Word document with a generated cover image, introduction and title.`,
		SilenceUsage: true,
	}

	// Add persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.riskdigest.yaml or ./.riskdigest.yaml)")

	// Add subcommands
	rootCmd.AddCommand(NewRunCmd())
	rootCmd.AddCommand(NewPreviewCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// applyLogging reconfigures the logger once configuration is known and reports
// which config file is in use.
func applyLogging(cfg *config.Config) {
	logger.Configure(cfg.Logging.Level, cfg.Logging.Format)
	if cfg.App.ConfigFile != "" {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", cfg.App.ConfigFile)
	}
}
