package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/logtide/logtide/internal/model"
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query stored logs and print them one per line",
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().String("source", "", "filter by source")
	queryCmd.Flags().String("level", "", "filter by level")
	queryCmd.Flags().String("trace-id", "", "filter by trace id")
	queryCmd.Flags().String("start-date", "", "inclusive start date (YYYY-MM-DD)")
	queryCmd.Flags().String("end-date", "", "inclusive end date (YYYY-MM-DD)")
	queryCmd.Flags().String("content-regex", "", "content pattern, substring pre-filter plus regex")
	queryCmd.Flags().Int("limit", 0, "maximum number of results")
	queryCmd.Flags().Bool("json", false, "print raw JSON instead of formatted lines")
}

type queryResponse struct {
	Results []model.StoredLogRecord `json:"results"`
	Count   int                     `json:"count"`
}

func runQuery(cmd *cobra.Command, args []string) error {
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

	params := url.Values{}
	for flag, param := range map[string]string{
		"source":        "source",
		"level":         "level",
		"trace-id":      "traceId",
		"start-date":    "startDate",
		"end-date":      "endDate",
		"content-regex": "contentRegex",
	} {
		if v, _ := cmd.Flags().GetString(flag); v != "" {
			params.Set(param, v)
		}
	}
	if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	queryURL := strings.TrimRight(endpoint, "/") + "/api/query"
	if encoded := params.Encode(); encoded != "" {
		queryURL += "?" + encoded
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	resp, err := httpClient.Get(queryURL)
	if err != nil {
		return fmt.Errorf("failed to query server: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(string(body)))
		return nil
	}

	var parsed queryResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	for _, rec := range parsed.Results {
		traceID := rec.TraceID
		if traceID == "" {
			traceID = "-"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s [%s] %s %s (%s)\n",
			rec.Date, rec.Time, rec.Level, traceID, rec.Content, rec.Source)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d results\n", parsed.Count)
	return nil
}
