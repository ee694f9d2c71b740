package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jrsteele09/kubeatlas-console/adminapi"
	"github.com/jrsteele09/kubeatlas-console/internal/utils"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var newUser adminapi.CreateUserRequest

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage realm users (admin only)",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := rootCmd.PersistentPreRunE(cmd, args); err != nil {
			return err
		}
		return requireLogin(cmd)
	},
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	RunE: func(cmd *cobra.Command, args []string) error {
		users, err := app.Admin().ListUsers(cmd.Context())
		if err != nil {
			return errors.New(friendly(err))
		}
		if len(users) == 0 {
			pterm.Info.Println("No users found.")
			return nil
		}
		table := pterm.TableData{{"ID", "USERNAME", "EMAIL", "ENABLED", "CREATED"}}
		for _, u := range users {
			table = append(table, []string{u.ID, u.Username, u.Email, fmt.Sprint(u.Enabled), formatMillis(u.CreatedTimestamp)})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(table).Render()
	},
}

var usersGetCmd = &cobra.Command{
	Use:   "get <user-id>",
	Short: "Show a user with roles and sessions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		details, err := app.Admin().UserFullDetails(cmd.Context(), args[0])
		if err != nil {
			return errors.New(friendly(err))
		}
		u := details.User
		roles := make([]string, 0, len(details.Roles))
		for _, r := range details.Roles {
			roles = append(roles, r.Name)
		}
		pterm.DefaultSection.Println(u.Username)
		data := pterm.TableData{
			{"ID", u.ID},
			{"Email", u.Email},
			{"Name", strings.TrimSpace(u.FirstName + " " + u.LastName)},
			{"Enabled", fmt.Sprint(u.Enabled)},
			{"Created", formatMillis(u.CreatedTimestamp)},
			{"Roles", strings.Join(roles, ", ")},
			{"Sessions", fmt.Sprint(len(details.Sessions))},
		}
		return pterm.DefaultTable.WithData(data).Render()
	},
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		if problems := adminapi.ValidateUserData(newUser); len(problems) > 0 {
			for _, p := range problems {
				pterm.Error.Println(p)
			}
			return fmt.Errorf("%d validation error(s)", len(problems))
		}
		res, err := app.Admin().CreateUser(cmd.Context(), newUser)
		if err != nil {
			return errors.New(friendly(err))
		}
		pterm.Success.Printf("Created user %s (%s)\n", newUser.Username, res.ID)
		return nil
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <user-id>",
	Short: "Delete a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := app.Admin().DeleteUser(cmd.Context(), args[0]); err != nil {
			return errors.New(friendly(err))
		}
		pterm.Success.Printf("Deleted user %s\n", args[0])
		return nil
	},
}

var usersEnableCmd = &cobra.Command{
	Use:   "enable <user-id>",
	Short: "Enable a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setEnabled(cmd, args[0], true)
	},
}

var usersDisableCmd = &cobra.Command{
	Use:   "disable <user-id>",
	Short: "Disable a user and end their sessions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setEnabled(cmd, args[0], false)
	},
}

var usersRolesCmd = &cobra.Command{
	Use:   "roles <user-id>",
	Short: "List a user's realm roles",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		roles, err := app.Admin().GetUserRoles(cmd.Context(), args[0])
		if err != nil {
			return errors.New(friendly(err))
		}
		table := pterm.TableData{{"NAME", "DESCRIPTION", "ID"}}
		for _, r := range roles {
			table = append(table, []string{r.Name, r.Description, r.ID})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(table).Render()
	},
}

func setEnabled(cmd *cobra.Command, id string, enabled bool) error {
	if _, err := app.Admin().UpdateUser(cmd.Context(), id, adminapi.UpdateUserRequest{Enabled: utils.Ptr(enabled)}); err != nil {
		return errors.New(friendly(err))
	}
	state := "Disabled"
	if enabled {
		state = "Enabled"
	}
	pterm.Success.Printf("%s user %s\n", state, id)
	return nil
}

func formatMillis(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return time.UnixMilli(ms).Format(time.RFC3339)
}

func init() {
	usersCreateCmd.Flags().StringVar(&newUser.Username, "username", "", "Username")
	usersCreateCmd.Flags().StringVar(&newUser.Email, "email", "", "Email address")
	usersCreateCmd.Flags().StringVar(&newUser.FirstName, "first-name", "", "First name")
	usersCreateCmd.Flags().StringVar(&newUser.LastName, "last-name", "", "Last name")
	usersCreateCmd.Flags().StringVar(&newUser.Password, "password", "", "Initial password")
	usersCreateCmd.Flags().StringSliceVar(&newUser.Roles, "role", []string{adminapi.RoleUser}, "Realm role, repeatable")

	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersGetCmd)
	usersCmd.AddCommand(usersCreateCmd)
	usersCmd.AddCommand(usersDeleteCmd)
	usersCmd.AddCommand(usersEnableCmd)
	usersCmd.AddCommand(usersDisableCmd)
	usersCmd.AddCommand(usersRolesCmd)
}
