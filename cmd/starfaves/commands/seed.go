package commands

import (
	"context"

	"github.com/marshallshelly/starfaves/cmd/starfaves/output"
	"github.com/marshallshelly/starfaves/internal/seed"
	"github.com/spf13/cobra"
)

// seedCmd loads a YAML seed file
var seedCmd = &cobra.Command{
	Use:   "seed FILE",
	Short: "Load users, entities and favorites from a YAML file",
	Long: `Insert the content of a YAML seed file in one transaction. Favorites name
their user by email and their target by name; anything unknown aborts the
whole seed.

Example file:
  users:
    - email: luke@rebels.org
      password: tatooine
  planets:
    - name: Tatooine
      climate: arid
  favorites:
    - user: luke@rebels.org
      planet: Tatooine`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSeed(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(ctx context.Context, path string) error {
	doc, err := seed.Load(path)
	if err != nil {
		return err
	}

	store, closeDB, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	counts, err := seed.Apply(ctx, store, doc)
	if err != nil {
		return err
	}
	logger.Info("seed applied", "file", path, "favorites", counts.Favorites)

	if jsonOutput {
		return output.JSON(counts)
	}
	output.Success("Seeded %s", path)
	output.Muted("  users: %d  characters: %d  planets: %d  vehicles: %d  favorites: %d",
		counts.Users, counts.Characters, counts.Planets, counts.Vehicles, counts.Favorites)
	return nil
}
