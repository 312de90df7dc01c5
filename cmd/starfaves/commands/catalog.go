package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/marshallshelly/starfaves/cmd/starfaves/output"
	"github.com/marshallshelly/starfaves/internal/favorites"
	"github.com/marshallshelly/starfaves/internal/models"
	"github.com/spf13/cobra"
)

// catalogCmd groups the commands on characters, planets and vehicles
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and delete characters, planets and vehicles",
	Long: `Work with the entities users can favorite. KIND is character, planet or
vehicle. Entities are created with "starfaves seed".`,
}

var catalogListCmd = &cobra.Command{
	Use:   "list KIND",
	Short: "List entities of one kind",
	Long: `List characters, planets or vehicles, optionally filtered by name.

Examples:
  starfaves catalog list planet
  starfaves catalog list character --name skywalker`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCatalogList(cmd.Context(), args[0])
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show KIND ID",
	Short: "Show one entity with all its attributes",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCatalogShow(cmd.Context(), args[0], args[1])
	},
}

var catalogDeleteCmd = &cobra.Command{
	Use:   "delete KIND ID",
	Short: "Delete an entity and every favorite of it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCatalogDelete(cmd.Context(), args[0], args[1])
	},
}

var nameFilter string

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogListCmd, catalogShowCmd, catalogDeleteCmd)

	catalogListCmd.Flags().StringVar(&nameFilter, "name", "", "Only entities whose name contains this text")
}

func parseKindID(kind, arg string) (models.Target, error) {
	id, err := parseID(arg, kind)
	if err != nil {
		return models.Target{}, err
	}
	return models.ParseTarget(kind, id)
}

func runCatalogList(ctx context.Context, kind string) error {
	t, err := models.ParseTarget(kind, 1)
	if err != nil {
		return err
	}

	store, closeDB, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	var rows []map[string]any
	switch t.Kind {
	case models.KindCharacter:
		var items []models.Character
		if nameFilter != "" {
			items, err = store.SearchCharacters(ctx, nameFilter)
		} else {
			items, err = store.ListCharacters(ctx)
		}
		if err != nil {
			return err
		}
		rows = serializeAll(items)
	case models.KindPlanet:
		var items []models.Planet
		if nameFilter != "" {
			items, err = store.SearchPlanets(ctx, nameFilter)
		} else {
			items, err = store.ListPlanets(ctx)
		}
		if err != nil {
			return err
		}
		rows = serializeAll(items)
	case models.KindVehicle:
		var items []models.Vehicle
		if nameFilter != "" {
			items, err = store.SearchVehicles(ctx, nameFilter)
		} else {
			items, err = store.ListVehicles(ctx)
		}
		if err != nil {
			return err
		}
		rows = serializeAll(items)
	}

	if jsonOutput {
		return output.JSON(rows)
	}
	if len(rows) == 0 {
		output.Muted("no %ss", t.Kind)
		return nil
	}

	w := tabwriter.NewWriter(output.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME")
	_, _ = fmt.Fprintln(w, "--\t----")
	for _, row := range rows {
		_, _ = fmt.Fprintf(w, "%v\t%v\n", row["id"], row["name"])
	}
	return w.Flush()
}

func getEntity(ctx context.Context, store *favorites.Store, t models.Target) (serializer, error) {
	switch t.Kind {
	case models.KindCharacter:
		return store.GetCharacter(ctx, t.ID)
	case models.KindPlanet:
		return store.GetPlanet(ctx, t.ID)
	default:
		return store.GetVehicle(ctx, t.ID)
	}
}

func runCatalogShow(ctx context.Context, kind, arg string) error {
	t, err := parseKindID(kind, arg)
	if err != nil {
		return err
	}

	store, closeDB, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	entity, err := getEntity(ctx, store, t)
	if err != nil {
		return err
	}
	row := entity.Serialize()

	if jsonOutput {
		return output.JSON(row)
	}
	output.Primary("%v", row["name"])
	w := tabwriter.NewWriter(output.Stdout, 0, 0, 2, ' ', 0)
	for _, key := range attributeOrder(t.Kind) {
		value := row[key]
		if value == nil {
			value = "-"
		}
		_, _ = fmt.Fprintf(w, "  %s\t%v\n", key, value)
	}
	return w.Flush()
}

func attributeOrder(kind models.TargetKind) []string {
	switch kind {
	case models.KindCharacter:
		return []string{"id", "height", "mass", "hair_color", "skin_color", "eye_color", "birth_year", "gender", "homeworld"}
	case models.KindPlanet:
		return []string{"id", "climate", "terrain", "population", "diameter", "rotation_period", "orbital_period", "gravity", "surface_water"}
	default:
		return []string{"id", "model", "vehicle_class", "manufacturer", "cost_in_credits", "length", "crew", "passengers", "max_atmosphering_speed", "cargo_capacity", "consumables"}
	}
}

func runCatalogDelete(ctx context.Context, kind, arg string) error {
	t, err := parseKindID(kind, arg)
	if err != nil {
		return err
	}

	store, closeDB, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	var removed int64
	switch t.Kind {
	case models.KindCharacter:
		removed, err = store.DeleteCharacter(ctx, t.ID)
	case models.KindPlanet:
		removed, err = store.DeletePlanet(ctx, t.ID)
	case models.KindVehicle:
		removed, err = store.DeleteVehicle(ctx, t.ID)
	}
	if err != nil {
		return err
	}

	if jsonOutput {
		return output.JSON(map[string]any{"kind": t.Kind, "id": t.ID, "favorites_removed": removed})
	}
	output.Success("Deleted %s #%d and %d favorite(s)", t.Kind, t.ID, removed)
	return nil
}
