package cart

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/irsalhamdi/lms/api/web"
	"github.com/irsalhamdi/lms/api/weberr"
	"github.com/irsalhamdi/lms/core/claims"
	"github.com/irsalhamdi/lms/core/course"
	"github.com/irsalhamdi/lms/core/purchase"
	"github.com/irsalhamdi/lms/database"
	"github.com/irsalhamdi/lms/validate"
	"github.com/jmoiron/sqlx"
)

func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		c, err := Fetch(ctx, db, clm.UserID)
		if err != nil {
			if !errors.Is(err, database.ErrDBNotFound) {
				return fmt.Errorf("fetching cart of user[%s]: %w", clm.UserID, err)
			}
			c = Cart{Items: []Item{}}
		}

		return web.Respond(ctx, w, c, http.StatusOK)
	}
}

func HandleDelete(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		if err := Delete(ctx, db, clm.UserID); err != nil {
			return fmt.Errorf("deleting cart of user[%s]: %w", clm.UserID, err)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func HandleCreateItem(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var in ItemNew
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(in); err != nil {
			return weberr.BadRequest(err)
		}

		if _, err := course.FetchPublished(ctx, db, in.CourseID); err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.NotFound(fmt.Errorf("course[%s] not found", in.CourseID))
			}
			return fmt.Errorf("fetching course[%s]: %w", in.CourseID, err)
		}

		_, err = purchase.Fetch(ctx, db, clm.UserID, in.CourseID)
		switch {
		case err == nil:
			err := fmt.Errorf("course[%s] already purchased", in.CourseID)
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		case !errors.Is(err, database.ErrDBNotFound):
			return fmt.Errorf("checking purchase of course[%s]: %w", in.CourseID, err)
		}

		cur, err := Fetch(ctx, db, clm.UserID)
		switch {
		case err == nil && cur.Has(in.CourseID):
			return web.Respond(ctx, w, cur, http.StatusOK)
		case err != nil && !errors.Is(err, database.ErrDBNotFound):
			return fmt.Errorf("fetching cart of user[%s]: %w", clm.UserID, err)
		}

		now := time.Now().UTC()
		err = database.Transaction(db, func(tx sqlx.ExtContext) error {
			if err := Upsert(ctx, tx, Cart{UserID: clm.UserID, CreatedAt: now, UpdatedAt: now}); err != nil {
				return fmt.Errorf("upserting cart: %w", err)
			}

			it := Item{UserID: clm.UserID, CourseID: in.CourseID, CreatedAt: now, UpdatedAt: now}
			if err := CreateItem(ctx, tx, it); err != nil {
				return fmt.Errorf("creating item: %w", err)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("adding course[%s] to the cart of user[%s]: %w", in.CourseID, clm.UserID, err)
		}

		c, err := Fetch(ctx, db, clm.UserID)
		if err != nil {
			return fmt.Errorf("fetching cart of user[%s]: %w", clm.UserID, err)
		}

		return web.Respond(ctx, w, c, http.StatusOK)
	}
}

func HandleDeleteItem(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		courseID := web.Param(r, "course_id")
		if err := validate.CheckID(courseID); err != nil {
			return weberr.BadRequest(err)
		}

		if err := DeleteItem(ctx, db, clm.UserID, courseID); err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.NotFound(fmt.Errorf("course[%s] not in cart", courseID))
			}
			return fmt.Errorf("removing course[%s] from the cart of user[%s]: %w", courseID, clm.UserID, err)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}
