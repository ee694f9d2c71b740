package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jrsteele09/kubeatlas-console/adminapi"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	username string
	password string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with a username and password",
	Long: `Signs in with the resource owner password grant and stores the tokens in
the credential file. Missing credentials are prompted for; the password is
never echoed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		banner()

		var err error
		if username == "" {
			if username, err = pterm.DefaultInteractiveTextInput.Show("Username"); err != nil {
				return err
			}
		}
		if password == "" {
			if password, err = pterm.DefaultInteractiveTextInput.WithMask("*").Show("Password"); err != nil {
				return err
			}
		}

		res := app.Login(cmd.Context(), strings.TrimSpace(username), password)
		if !res.Success {
			return errors.New(res.Error)
		}

		pterm.Success.Printf("Logged in as %s (%s)\n", res.User.Username, res.User.Email)
		if app.IsAdmin() {
			pterm.Info.Println("Administrator access granted")
		}
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		app.Session().Restore()
		if err := app.Logout(); err != nil {
			return fmt.Errorf("failed to clear credentials: %w", err)
		}
		pterm.Success.Println("Logged out")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display the stored session without contacting the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions := app.Session()
		if !sessions.Restore() {
			pterm.Warning.Println("Not logged in")
			return nil
		}

		claims, ok := sessions.TokenInfo()
		if !ok {
			pterm.Warning.Println("Stored token cannot be decoded")
			return nil
		}

		pterm.DefaultSection.Println("Authentication Status")
		data := pterm.TableData{
			{"State", sessions.State().String()},
			{"User", claims.UserName()},
			{"Subject", claims.Subject},
			{"Roles", strings.Join(claims.Roles(), ", ")},
			{"Session", claims.SessionID},
			{"Expires", claims.Expiry().Format(time.RFC1123)},
			{"Expires in", time.Until(claims.Expiry()).Round(time.Second).String()},
			{"Token endpoint", sessions.TokenURL()},
		}
		return pterm.DefaultTable.WithData(data).Render()
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user's profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(cmd); err != nil {
			return err
		}
		user := app.CurrentUser()
		data := pterm.TableData{
			{"ID", user.ID},
			{"Username", user.Username},
			{"Email", user.Email},
			{"Name", strings.TrimSpace(user.FirstName + " " + user.LastName)},
			{"Roles", strings.Join(user.Roles, ", ")},
			{"Admin", fmt.Sprint(user.IsAdmin)},
		}
		return pterm.DefaultTable.WithData(data).Render()
	},
}

func init() {
	loginCmd.Flags().StringVarP(&username, "username", "u", "", "Username or email")
	loginCmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when omitted)")
}

func friendly(err error) string {
	return adminapi.FormatAPIError(err)
}
