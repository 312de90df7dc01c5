package commands

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/marshallshelly/starfaves/cmd/starfaves/output"
	"github.com/marshallshelly/starfaves/internal/models"
	"github.com/spf13/cobra"
)

var (
	// User flags
	userEmail    string
	userPassword string
	userActive   bool
)

// userCmd groups the user commands
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Create, inspect and delete users",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user",
	Long: `Create an active user.

Example:
  starfaves user create --email luke@rebels.org --password tatooine`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUserCreate(cmd.Context())
	},
}

var userShowCmd = &cobra.Command{
	Use:   "show [ID]",
	Short: "Show a user and its favorites",
	Long: `Show a user by id, or by --email, with its favorites.

Examples:
  starfaves user show 1
  starfaves user show --email luke@rebels.org --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUserShow(cmd.Context(), args)
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUserList(cmd.Context())
	},
}

var userUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Change a user's email, password or active flag",
	Long: `Change only the given fields.

Examples:
  starfaves user update 1 --email luke@jedi.org
  starfaves user update 2 --active=false`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUserUpdate(cmd, args[0])
	},
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a user and its favorites",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUserDelete(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userCreateCmd, userShowCmd, userListCmd, userUpdateCmd, userDeleteCmd)

	userCreateCmd.Flags().StringVar(&userEmail, "email", "", "Email address (required)")
	userCreateCmd.Flags().StringVar(&userPassword, "password", "", "Password (required)")
	_ = userCreateCmd.MarkFlagRequired("email")
	_ = userCreateCmd.MarkFlagRequired("password")

	userShowCmd.Flags().StringVar(&userEmail, "email", "", "Look the user up by email")

	userUpdateCmd.Flags().StringVar(&userEmail, "email", "", "New email address")
	userUpdateCmd.Flags().StringVar(&userPassword, "password", "", "New password")
	userUpdateCmd.Flags().BoolVar(&userActive, "active", true, "Whether the user is active")
}

func runUserCreate(ctx context.Context) error {
	store, closeDB, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	user, err := store.CreateUser(ctx, userEmail, userPassword)
	if err != nil {
		return err
	}

	if jsonOutput {
		return output.JSON(user.Serialize())
	}
	output.Success("Created user #%d (%s)", user.ID, user.Email)
	return nil
}

func runUserShow(ctx context.Context, args []string) error {
	if len(args) == 0 && userEmail == "" {
		return errors.New("pass a user id or --email")
	}

	var id int
	if len(args) == 1 {
		parsed, err := parseID(args[0], "user")
		if err != nil {
			return err
		}
		id = parsed
	}

	store, closeDB, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	var user *models.User
	if id > 0 {
		user, err = store.GetUser(ctx, id)
	} else {
		user, err = store.GetUserByEmail(ctx, userEmail)
	}
	if err != nil {
		return err
	}

	if jsonOutput {
		return output.JSON(user.Serialize())
	}
	printUser(user)
	return nil
}

func runUserList(ctx context.Context) error {
	store, closeDB, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	users, err := store.ListUsers(ctx)
	if err != nil {
		return err
	}

	if jsonOutput {
		return output.JSON(serializeAll(users))
	}
	if len(users) == 0 {
		output.Muted("no users")
		return nil
	}

	w := tabwriter.NewWriter(output.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tEMAIL\tACTIVE\tFAVORITES")
	_, _ = fmt.Fprintln(w, "--\t-----\t------\t---------")
	for _, u := range users {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%t\t%d\n", u.ID, u.Email, u.IsActive, len(u.Favorites))
	}
	return w.Flush()
}

func runUserUpdate(cmd *cobra.Command, arg string) error {
	id, err := parseID(arg, "user")
	if err != nil {
		return err
	}

	var patch models.UserPatch
	flags := cmd.Flags()
	if flags.Changed("email") {
		patch.Email = &userEmail
	}
	if flags.Changed("password") {
		patch.Password = &userPassword
	}
	if flags.Changed("active") {
		patch.IsActive = &userActive
	}
	if patch.Empty() {
		return errors.New("nothing to update: pass --email, --password or --active")
	}

	ctx := cmd.Context()
	store, closeDB, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	user, err := store.UpdateUser(ctx, id, patch)
	if err != nil {
		return err
	}

	if jsonOutput {
		return output.JSON(user.Serialize())
	}
	output.Success("Updated user #%d (%s)", user.ID, user.Email)
	return nil
}

func runUserDelete(ctx context.Context, arg string) error {
	id, err := parseID(arg, "user")
	if err != nil {
		return err
	}

	store, closeDB, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	removed, err := store.DeleteUser(ctx, id)
	if err != nil {
		return err
	}

	if jsonOutput {
		return output.JSON(map[string]any{"id": id, "favorites_removed": removed})
	}
	output.Success("Deleted user #%d and %d favorite(s)", id, removed)
	return nil
}
