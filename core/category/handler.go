package category

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/irsalhamdi/lms/api/web"
	"github.com/irsalhamdi/lms/api/weberr"
	"github.com/irsalhamdi/lms/database"
	"github.com/irsalhamdi/lms/validate"
	"github.com/jmoiron/sqlx"
)

func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		cats, err := QueryAll(ctx, db)
		if err != nil {
			return fmt.Errorf("listing categories: %w", err)
		}

		return web.Respond(ctx, w, cats, http.StatusOK)
	}
}

func HandleCreate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var in CategoryNew
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(in); err != nil {
			return weberr.BadRequest(err)
		}

		cat := Category{
			ID:        validate.GenerateID(),
			Name:      in.Name,
			CreatedAt: time.Now().UTC(),
		}

		if err := Create(ctx, db, cat); err != nil {
			if errors.Is(err, database.ErrDBDuplicatedEntry) {
				return weberr.Conflict(fmt.Errorf("category[%s] already exists", in.Name))
			}
			return fmt.Errorf("creating category: %w", err)
		}

		return web.Respond(ctx, w, cat, http.StatusCreated)
	}
}
