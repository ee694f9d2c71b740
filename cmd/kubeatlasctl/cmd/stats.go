package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jrsteele09/kubeatlas-console/adminapi"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show dashboard statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(cmd); err != nil {
			return err
		}
		stats, err := app.Admin().Statistics(cmd.Context())
		if err != nil {
			return errors.New(friendly(err))
		}

		pterm.DefaultSection.Println("Statistics")
		data := pterm.TableData{
			{"Total users", formatStat(stats.TotalUsers)},
			{"Active sessions", formatStat(stats.ActiveSessions)},
			{"System", fmt.Sprintf("%.0f%% %s", stats.SystemStatus.Percentage, stats.SystemStatus.Status)},
		}
		if err := pterm.DefaultTable.WithData(data).Render(); err != nil {
			return err
		}

		table := pterm.TableData{{"SERVICE", "STATUS", "UPTIME"}}
		for _, s := range stats.SystemStatus.Details {
			table = append(table, []string{s.Name, s.Status, fmt.Sprintf("%.2f%%", s.UptimePercentage)})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(table).Render()
	},
}

func formatStat(s adminapi.StatItem) string {
	if s.ChangePeriod == "" {
		return fmt.Sprintf("%.0f", s.Value)
	}
	return fmt.Sprintf("%.0f (%+.1f%% %s)", s.Value, s.ChangePercent, s.ChangePeriod)
}

var getCmd = &cobra.Command{
	Use:   "get <path>",
	Short: "GET an API path and print the JSON response",
	Example: `  kubeatlasctl get /user/profile
  kubeatlasctl get /admin/users`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(cmd); err != nil {
			return err
		}
		path := args[0]
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}

		var raw json.RawMessage
		if err := app.APIGet(cmd.Context(), path, &raw); err != nil {
			return errors.New(friendly(err))
		}
		var out bytes.Buffer
		if err := json.Indent(&out, raw, "", "  "); err != nil {
			return err
		}
		fmt.Println(out.String())
		return nil
	},
}
