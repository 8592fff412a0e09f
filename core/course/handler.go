package course

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/irsalhamdi/lms/api/web"
	"github.com/irsalhamdi/lms/api/weberr"
	"github.com/irsalhamdi/lms/core/claims"
	"github.com/irsalhamdi/lms/database"
	"github.com/irsalhamdi/lms/validate"
	"github.com/jmoiron/sqlx"
)

func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		courseID := web.Param(r, "id")

		if err := validate.CheckID(courseID); err != nil {
			return weberr.BadRequest(err)
		}

		fetch := FetchPublished
		if claims.IsAdmin(ctx) {
			fetch = Fetch
		}

		c, err := fetch(ctx, db, courseID)
		if err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.NotFound(fmt.Errorf("course[%s] not found", courseID))
			}
			return fmt.Errorf("fetching course[%s]: %w", courseID, err)
		}

		return web.Respond(ctx, w, c, http.StatusOK)
	}
}

func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		f := Filter{CategoryID: r.URL.Query().Get("category")}

		if f.CategoryID != "" {
			if err := validate.CheckID(f.CategoryID); err != nil {
				return weberr.BadRequest(err)
			}
		}

		cs, err := QueryPublished(ctx, db, f)
		if err != nil {
			return fmt.Errorf("listing courses: %w", err)
		}

		return web.Respond(ctx, w, cs, http.StatusOK)
	}
}

func HandleListOwned(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		cs, err := QueryOwned(ctx, db, clm.UserID)
		if err != nil {
			return fmt.Errorf("listing courses owned by user[%s]: %w", clm.UserID, err)
		}

		return web.Respond(ctx, w, cs, http.StatusOK)
	}
}

func HandleCreate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var in CourseNew
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(in); err != nil {
			return weberr.BadRequest(err)
		}

		now := time.Now().UTC()
		c := Course{
			ID:          validate.GenerateID(),
			OwnerID:     clm.UserID,
			CategoryID:  in.CategoryID,
			Title:       in.Title,
			Description: in.Description,
			ImageURL:    in.ImageURL,
			Price:       in.Price,
			CreatedAt:   now,
			UpdatedAt:   now,
			Version:     1,
		}

		if err := Create(ctx, db, c); err != nil {
			return fmt.Errorf("creating course: %w", err)
		}

		return web.Respond(ctx, w, c, http.StatusCreated)
	}
}

func HandleUpdate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		courseID := web.Param(r, "id")

		if err := validate.CheckID(courseID); err != nil {
			return weberr.BadRequest(err)
		}

		var up CourseUp
		if err := web.Decode(w, r, &up); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(up); err != nil {
			return weberr.BadRequest(err)
		}

		c, err := Fetch(ctx, db, courseID)
		if err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.NotFound(fmt.Errorf("course[%s] not found", courseID))
			}
			return fmt.Errorf("fetching course[%s]: %w", courseID, err)
		}

		c.Apply(up)
		c.UpdatedAt = time.Now().UTC()

		if err := Update(ctx, db, c); err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.NewError(err, "edit conflict, retry", http.StatusConflict)
			}
			return fmt.Errorf("updating course[%s]: %w", courseID, err)
		}
		c.Version++

		return web.Respond(ctx, w, c, http.StatusOK)
	}
}
