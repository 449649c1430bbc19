package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roivaz/commitforge/internal/config"
)

// Set with -ldflags "-X main.version=...".
var version = "dev"

var rootCmd = &cobra.Command{
	Use:           "commitforge",
	Short:         "LLM assisted commit messages, PR descriptions and text utilities",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

func main() {
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("llm-provider", "", "Model provider (openai, ollama, anthropic, none)")
	rootCmd.PersistentFlags().String("llm-model", "", "Model name")
	rootCmd.PersistentFlags().String("llm-base-url", "", "Override the provider base URL")

	config.Init(rootCmd)
	flags := rootCmd.PersistentFlags()
	_ = viper.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))
	_ = viper.BindPFlag(config.KeyLLMProvider, flags.Lookup("llm-provider"))
	_ = viper.BindPFlag(config.KeyLLMModel, flags.Lookup("llm-model"))
	_ = viper.BindPFlag(config.KeyLLMBaseURL, flags.Lookup("llm-base-url"))

	rootCmd.AddCommand(serveCmd, generateCmd, prCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "commitforge: %v\n", err)
		os.Exit(1)
	}
}
