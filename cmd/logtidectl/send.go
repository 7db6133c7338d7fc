package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/logtide/logtide/client"
	"github.com/spf13/cobra"
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Read log lines from stdin and send them to the server",
	RunE:  runSend,
}

func init() {
	sendCmd.Flags().String("source", "", "source tag for the submitted logs")
	sendCmd.Flags().String("level", "INFO", "log level applied to each line")
	sendCmd.Flags().String("trace-id", "", "trace id applied to each line")
	sendCmd.Flags().Int("batch-count", 0, "number of lines buffered before a send")
}

func runSend(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := loadCLIConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	endpoint, _ := cmd.Flags().GetString("endpoint")
	if endpoint == "" {
		endpoint = cfg.Endpoint
	}
	if endpoint == "" {
		return fmt.Errorf("no endpoint configured, use --endpoint or set it in the config file")
	}
	source, _ := cmd.Flags().GetString("source")
	if source == "" {
		source = cfg.Source
	}
	batchCount, _ := cmd.Flags().GetInt("batch-count")
	if batchCount <= 0 {
		batchCount = cfg.BatchCount
	}
	level, _ := cmd.Flags().GetString("level")
	traceID, _ := cmd.Flags().GetString("trace-id")

	opts := []client.Option{}
	if batchCount > 0 {
		opts = append(opts, client.WithBatchCount(batchCount))
	}
	logger := client.New(endpoint, source, opts...)

	sent := 0
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		logger.Record(level, traceID, line)
		sent++
	}
	if err := scanner.Err(); err != nil {
		logger.Close()
		return fmt.Errorf("failed to read stdin: %w", err)
	}

	logger.Close()
	fmt.Fprintf(cmd.OutOrStdout(), "sent %d lines at %s\n", sent, time.Now().Format("15:04:05"))
	return nil
}
