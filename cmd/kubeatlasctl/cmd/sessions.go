package cmd

import (
	"errors"

	"github.com/jrsteele09/kubeatlas-console/adminapi"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	sessionUserID string
	revokeAll     bool
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List and revoke login sessions",
	Long: `Without --user the commands act on your own sessions. With --user they act
on another user's sessions and need the admin role.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := rootCmd.PersistentPreRunE(cmd, args); err != nil {
			return err
		}
		return requireLogin(cmd)
	},
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			sessions []adminapi.UserSession
			err      error
		)
		if sessionUserID != "" {
			sessions, err = app.Admin().UserSessions(cmd.Context(), sessionUserID)
		} else {
			sessions, err = app.Admin().MySessions(cmd.Context())
		}
		if err != nil {
			return errors.New(friendly(err))
		}
		if len(sessions) == 0 {
			pterm.Info.Println("No active sessions.")
			return nil
		}
		table := pterm.TableData{{"ID", "USER", "IP", "BROWSER", "OS", "STARTED", "LAST ACCESS"}}
		for _, s := range sessions {
			table = append(table, []string{s.ID, s.Username, s.IPAddress, s.Browser, s.OS, formatMillis(s.Start), formatMillis(s.LastAccess)})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(table).Render()
	},
}

var sessionsRevokeCmd = &cobra.Command{
	Use:   "revoke [session-id]",
	Short: "Revoke one session, or all of them with --all",
	Args: func(cmd *cobra.Command, args []string) error {
		if revokeAll {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		admin := app.Admin()
		ctx := cmd.Context()

		var (
			res *adminapi.SessionRevocationResponse
			err error
		)
		switch {
		case revokeAll && sessionUserID != "":
			res, err = admin.RevokeAllUserSessions(ctx, sessionUserID)
		case revokeAll:
			res, err = admin.RevokeAllMySessions(ctx)
		case sessionUserID != "":
			res, err = admin.RevokeUserSession(ctx, sessionUserID, args[0])
		default:
			res, err = admin.RevokeMySession(ctx, args[0])
		}
		if err != nil {
			return errors.New(friendly(err))
		}
		pterm.Success.Println(res.Message)
		return nil
	},
}

func init() {
	sessionsCmd.PersistentFlags().StringVar(&sessionUserID, "user", "", "Act on this user's sessions instead of your own")
	sessionsRevokeCmd.Flags().BoolVar(&revokeAll, "all", false, "Revoke every session")

	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsRevokeCmd)
}
