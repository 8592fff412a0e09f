package scorm

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

// HandlePlayer serves the SCORM descriptor of a published course to users
// entitled to it.
func HandlePlayer(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		courseID := web.Param(r, "id")

		if err := validate.CheckID(courseID); err != nil {
			return weberr.BadRequest(err)
		}

		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		c, err := course.FetchPublished(ctx, db, courseID)
		if err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.NotFound(fmt.Errorf("course[%s] not found", courseID))
			}
			return fmt.Errorf("fetching course[%s]: %w", courseID, err)
		}

		ok, err := purchase.Entitled(ctx, db, clm, c)
		if err != nil {
			return fmt.Errorf("checking entitlement of user[%s] to course[%s]: %w", clm.UserID, courseID, err)
		}
		if !ok {
			return weberr.Forbidden(fmt.Errorf("user[%s] has not purchased course[%s]", clm.UserID, courseID))
		}

		pkg, err := FetchByCourse(ctx, db, courseID)
		if err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.NotFound(fmt.Errorf("course[%s] has no scorm package", courseID))
			}
			return fmt.Errorf("fetching scorm package of course[%s]: %w", courseID, err)
		}

		return web.Respond(ctx, w, pkg, http.StatusOK)
	}
}

func HandleSave(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		courseID := web.Param(r, "id")

		if err := validate.CheckID(courseID); err != nil {
			return weberr.BadRequest(err)
		}

		var in PackageNew
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(in); err != nil {
			return weberr.BadRequest(err)
		}

		if _, err := course.Fetch(ctx, db, courseID); err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.NotFound(fmt.Errorf("course[%s] not found", courseID))
			}
			return fmt.Errorf("fetching course[%s]: %w", courseID, err)
		}

		now := time.Now().UTC()
		pkg := Package{
			CourseID:  courseID,
			Title:     in.Title,
			Version:   in.Version,
			LaunchURL: in.LaunchURL,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := Save(ctx, db, pkg); err != nil {
			return fmt.Errorf("saving scorm package of course[%s]: %w", courseID, err)
		}

		return web.Respond(ctx, w, pkg, http.StatusOK)
	}
}

func HandleDelete(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		courseID := web.Param(r, "id")

		if err := validate.CheckID(courseID); err != nil {
			return weberr.BadRequest(err)
		}

		if err := Delete(ctx, db, courseID); err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.NotFound(fmt.Errorf("course[%s] has no scorm package", courseID))
			}
			return fmt.Errorf("deleting scorm package of course[%s]: %w", courseID, err)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}
