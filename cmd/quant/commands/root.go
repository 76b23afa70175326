package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quant",
	Short: "kquant - 한국 주식 스크리닝/스코어링 엔진",
	Long: `kquant Unified CLI

수집된 재무/시세 데이터로 6개 전략 스크리닝과 종합 스코어링을 수행.

Usage:
  go run ./cmd/quant [command]

Examples:
  go run ./cmd/quant screen
  go run ./cmd/quant api
  go run ./cmd/quant scheduler
  go run ./cmd/quant export --strategy quality`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
