package commands

import (
	"context"
	"strconv"

	"github.com/marshallshelly/starfaves/cmd/starfaves/output"
	"github.com/marshallshelly/starfaves/internal/favorites"
	"github.com/marshallshelly/starfaves/internal/models"
	"github.com/spf13/cobra"
)

var countOnly bool

// favoriteCmd groups the favorite commands
var favoriteCmd = &cobra.Command{
	Use:     "favorite",
	Aliases: []string{"fav"},
	Short:   "Add, remove and list favorites",
}

var favoriteAddCmd = &cobra.Command{
	Use:   "add USER_ID KIND TARGET",
	Short: "Favorite a character, planet or vehicle",
	Long: `Add a favorite. KIND is character, planet or vehicle; TARGET is an id or
an exact name.

Examples:
  starfaves favorite add 1 planet 3
  starfaves favorite add 1 character "Luke Skywalker"`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFavoriteAdd(cmd.Context(), args)
	},
}

var favoriteShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show one favorite",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFavoriteShow(cmd.Context(), args[0])
	},
}

var favoriteRemoveCmd = &cobra.Command{
	Use:     "remove ID",
	Aliases: []string{"rm"},
	Short:   "Remove a favorite",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFavoriteRemove(cmd.Context(), args[0])
	},
}

var favoriteListCmd = &cobra.Command{
	Use:   "list USER_ID",
	Short: "List a user's favorites",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFavoriteList(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(favoriteCmd)
	favoriteCmd.AddCommand(favoriteAddCmd, favoriteShowCmd, favoriteRemoveCmd, favoriteListCmd)

	favoriteListCmd.Flags().BoolVar(&countOnly, "count", false, "Print only the number of favorites")
}

// resolveTarget turns KIND and an id or name into a target.
func resolveTarget(ctx context.Context, store *favorites.Store, kind, ref string) (models.Target, error) {
	if id, err := strconv.Atoi(ref); err == nil {
		return models.ParseTarget(kind, id)
	}
	// Validate the kind before querying by name.
	t, err := models.ParseTarget(kind, 1)
	if err != nil {
		return models.Target{}, err
	}
	return store.FindTarget(ctx, t.Kind, ref)
}

func runFavoriteAdd(ctx context.Context, args []string) error {
	userID, err := parseID(args[0], "user")
	if err != nil {
		return err
	}

	store, closeDB, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	target, err := resolveTarget(ctx, store, args[1], args[2])
	if err != nil {
		return err
	}
	fav, err := store.AddFavorite(ctx, userID, target)
	if err != nil {
		return err
	}

	if jsonOutput {
		return output.JSON(fav.Serialize())
	}
	output.Success("Added favorite #%d: %s %s", fav.ID, target.Kind, fav.TargetName())
	return nil
}

func runFavoriteShow(ctx context.Context, arg string) error {
	id, err := parseID(arg, "favorite")
	if err != nil {
		return err
	}

	store, closeDB, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	fav, err := store.GetFavorite(ctx, id)
	if err != nil {
		return err
	}

	if jsonOutput {
		return output.JSON(fav.Serialize())
	}
	output.Muted("user #%d", fav.UserID)
	printFavorites([]models.Favorite{*fav})
	return nil
}

func runFavoriteRemove(ctx context.Context, arg string) error {
	id, err := parseID(arg, "favorite")
	if err != nil {
		return err
	}

	store, closeDB, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	if err := store.RemoveFavorite(ctx, id); err != nil {
		return err
	}

	if jsonOutput {
		return output.JSON(map[string]any{"id": id, "removed": true})
	}
	output.Success("Removed favorite #%d", id)
	return nil
}

func runFavoriteList(ctx context.Context, arg string) error {
	userID, err := parseID(arg, "user")
	if err != nil {
		return err
	}

	store, closeDB, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	if countOnly {
		n, err := store.CountFavorites(ctx, userID)
		if err != nil {
			return err
		}
		if jsonOutput {
			return output.JSON(map[string]any{"user_id": userID, "count": n})
		}
		output.Info("User #%d has %d favorite(s)", userID, n)
		return nil
	}

	favs, err := store.ListFavorites(ctx, userID)
	if err != nil {
		return err
	}

	if jsonOutput {
		return output.JSON(serializeAll(favs))
	}
	printFavorites(favs)
	return nil
}
