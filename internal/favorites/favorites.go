package favorites

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/marshallshelly/starfaves/internal/models"
	"github.com/marshallshelly/starfaves/pkg/builder"
	"github.com/marshallshelly/starfaves/pkg/runtime"
)

// AddFavorite records that user userID favorites target. The target is
// validated before anything is written; missing users or targets surface
// as runtime.ErrForeignKeyViolation.
func (s *Store) AddFavorite(ctx context.Context, userID int, target models.Target) (*models.Favorite, error) {
	fav := models.Favorite{UserID: userID}
	if err := fav.SetTarget(target); err != nil {
		return nil, err
	}
	if err := fav.Validate(); err != nil {
		return nil, err
	}

	var added *models.Favorite
	err := s.db.InTx(ctx, func(tx *builder.DB) error {
		created, err := create(ctx, tx, fav)
		if err != nil {
			return err
		}
		added, err = builder.Select[models.Favorite](tx).
			Where(builder.Eq("id", created.ID)).
			Preload(targetPreloads...).
			First(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("add favorite %s for user %d: %w", target, userID, err)
	}

	s.logger.Debug("favorite added",
		slog.Int("id", added.ID),
		slog.Int("user_id", userID),
		slog.String("target", target.String()),
	)
	return added, nil
}

// GetFavorite returns one favorite with its target loaded.
func (s *Store) GetFavorite(ctx context.Context, id int) (*models.Favorite, error) {
	return builder.Select[models.Favorite](s.db).
		Where(builder.Eq("id", id)).
		Preload(targetPreloads...).
		First(ctx)
}

// RemoveFavorite deletes one favorite.
func (s *Store) RemoveFavorite(ctx context.Context, id int) error {
	n, err := builder.Delete[models.Favorite](s.db).Where(builder.Eq("id", id)).Exec(ctx)
	if err != nil {
		return fmt.Errorf("remove favorite %d: %w", id, err)
	}
	if n == 0 {
		return runtime.ErrNotFound
	}
	s.logger.Debug("favorite removed", slog.Int("id", id))
	return nil
}

// ListFavorites returns the favorites of user userID, oldest first, with
// their targets loaded. An unknown user is runtime.ErrNotFound.
func (s *Store) ListFavorites(ctx context.Context, userID int) ([]models.Favorite, error) {
	exists, err := builder.Select[models.User](s.db).Where(builder.Eq("id", userID)).Exists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, runtime.ErrNotFound
	}

	return builder.Select[models.Favorite](s.db).
		Where(builder.Eq("user_id", userID)).
		OrderByAsc("id").
		Preload(targetPreloads...).
		All(ctx)
}

// CountFavorites returns how many favorites user userID has.
func (s *Store) CountFavorites(ctx context.Context, userID int) (int64, error) {
	return builder.Select[models.Favorite](s.db).Where(builder.Eq("user_id", userID)).Count(ctx)
}
