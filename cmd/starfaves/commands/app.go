package commands

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/marshallshelly/starfaves/cmd/starfaves/output"
	"github.com/marshallshelly/starfaves/internal/favorites"
	"github.com/marshallshelly/starfaves/internal/models"
	"github.com/marshallshelly/starfaves/pkg/builder"
	"github.com/marshallshelly/starfaves/pkg/runtime"
)

// serializer is implemented by every model.
type serializer interface {
	Serialize() map[string]any
}

func openDB(ctx context.Context) (*runtime.DB, error) {
	if err := cfg.RequireDatabase(); err != nil {
		return nil, err
	}
	db, err := runtime.ConnectWithURL(ctx, cfg.DatabaseURL, cfg.MaxConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Debug("connected to database", "max_conns", cfg.MaxConns)
	return db, nil
}

// openStore connects and returns a store plus the function that closes it.
func openStore(ctx context.Context) (*favorites.Store, func(), error) {
	reg, err := models.NewRegistry()
	if err != nil {
		return nil, nil, err
	}
	db, err := openDB(ctx)
	if err != nil {
		return nil, nil, err
	}
	return favorites.NewStore(builder.New(db, reg), logger), db.Close, nil
}

func parseID(arg, what string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s id %q: must be a positive integer", what, arg)
	}
	return id, nil
}

func serializeAll[T serializer](items []T) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		out = append(out, item.Serialize())
	}
	return out
}

func printUser(u *models.User) {
	output.Primary("%s", u.Email)
	output.Muted("user #%d • active: %t • %d favorite(s)", u.ID, u.IsActive, len(u.Favorites))
	printFavorites(u.Favorites)
}

func printFavorites(favs []models.Favorite) {
	if len(favs) == 0 {
		output.Muted("no favorites")
		return
	}

	w := tabwriter.NewWriter(output.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tKIND\tTARGET\tNAME")
	_, _ = fmt.Fprintln(w, "--\t----\t------\t----")
	for _, f := range favs {
		kind, ref := "?", "?"
		if target, err := f.Target(); err == nil {
			kind = string(target.Kind)
			ref = strconv.Itoa(target.ID)
		}
		_, _ = fmt.Fprintf(w, "%d\t%s %s\t%s\t%s\n", f.ID, output.KindIcon(kind), kind, ref, f.TargetName())
	}
	_ = w.Flush()
}
