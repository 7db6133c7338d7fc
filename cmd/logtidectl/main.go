package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "logtidectl",
	Short: "Send logs to and query logs from a logtide server",
}

func init() {
	rootCmd.PersistentFlags().String("endpoint", "", "server endpoint (overrides config file)")
	rootCmd.PersistentFlags().String("config", "", "path to config file (default ~/.logtide.yaml)")
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(queryCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
