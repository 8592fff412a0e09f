package chapter

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

func HandleListByCourse(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		courseID := web.Param(r, "course_id")

		if err := validate.CheckID(courseID); err != nil {
			return weberr.BadRequest(err)
		}

		if _, err := course.FetchPublished(ctx, db, courseID); err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.NotFound(fmt.Errorf("course[%s] not found", courseID))
			}
			return fmt.Errorf("fetching course[%s]: %w", courseID, err)
		}

		chs, err := QueryPublishedByCourse(ctx, db, courseID)
		if err != nil {
			return fmt.Errorf("listing chapters of course[%s]: %w", courseID, err)
		}

		return web.Respond(ctx, w, chs, http.StatusOK)
	}
}

// HandleShowFull is the chapter player. Free chapters are open to everybody,
// the others require the caller to be entitled to the course.
func HandleShowFull(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		courseID := web.Param(r, "course_id")
		chapterID := web.Param(r, "id")

		if err := validate.CheckID(courseID); err != nil {
			return weberr.BadRequest(err)
		}
		if err := validate.CheckID(chapterID); err != nil {
			return weberr.BadRequest(err)
		}

		c, err := course.FetchPublished(ctx, db, courseID)
		if err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.NotFound(fmt.Errorf("course[%s] not found", courseID))
			}
			return fmt.Errorf("fetching course[%s]: %w", courseID, err)
		}

		chs, err := QueryPublishedByCourse(ctx, db, courseID)
		if err != nil {
			return fmt.Errorf("listing chapters of course[%s]: %w", courseID, err)
		}

		var ch *Chapter
		for i := range chs {
			if chs[i].ID == chapterID {
				ch = &chs[i]
				break
			}
		}
		if ch == nil {
			return weberr.NotFound(fmt.Errorf("chapter[%s] not found in course[%s]", chapterID, courseID))
		}

		if !ch.Free {
			clm, err := claims.Get(ctx)
			if err != nil {
				return weberr.NotAuthorized(errors.New("user not authenticated"))
			}

			ok, err := purchase.Entitled(ctx, db, clm, c)
			if err != nil {
				return fmt.Errorf("checking entitlement of user[%s] to course[%s]: %w", clm.UserID, courseID, err)
			}
			if !ok {
				return weberr.Forbidden(fmt.Errorf("user[%s] has not purchased course[%s]", clm.UserID, courseID))
			}
		}

		full := Full{Chapter: *ch, URL: ch.URL}
		full.PrevID, full.NextID = Neighbours(chs, ch.ID)

		return web.Respond(ctx, w, full, http.StatusOK)
	}
}

func HandleCreate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var in ChapterNew
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(in); err != nil {
			return weberr.BadRequest(err)
		}

		if _, err := course.Fetch(ctx, db, in.CourseID); err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.NotFound(fmt.Errorf("course[%s] not found", in.CourseID))
			}
			return fmt.Errorf("fetching course[%s]: %w", in.CourseID, err)
		}

		now := time.Now().UTC()
		ch := Chapter{
			ID:          validate.GenerateID(),
			CourseID:    in.CourseID,
			Position:    in.Position,
			Title:       in.Title,
			Description: in.Description,
			Free:        in.Free,
			Published:   in.Published,
			URL:         in.URL,
			CreatedAt:   now,
			UpdatedAt:   now,
			Version:     1,
		}

		if err := Create(ctx, db, ch); err != nil {
			return fmt.Errorf("creating chapter: %w", err)
		}

		return web.Respond(ctx, w, ch, http.StatusCreated)
	}
}

func HandleUpdate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		chapterID := web.Param(r, "id")

		if err := validate.CheckID(chapterID); err != nil {
			return weberr.BadRequest(err)
		}

		var up ChapterUp
		if err := web.Decode(w, r, &up); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(up); err != nil {
			return weberr.BadRequest(err)
		}

		ch, err := Fetch(ctx, db, chapterID)
		if err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.NotFound(fmt.Errorf("chapter[%s] not found", chapterID))
			}
			return fmt.Errorf("fetching chapter[%s]: %w", chapterID, err)
		}

		ch.Apply(up)
		ch.UpdatedAt = time.Now().UTC()

		if err := Update(ctx, db, ch); err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.NewError(err, "edit conflict, retry", http.StatusConflict)
			}
			return fmt.Errorf("updating chapter[%s]: %w", chapterID, err)
		}
		ch.Version++

		return web.Respond(ctx, w, ch, http.StatusOK)
	}
}

func HandleUpdateProgress(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		chapterID := web.Param(r, "id")

		if err := validate.CheckID(chapterID); err != nil {
			return weberr.BadRequest(err)
		}

		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var up ProgressUp
		if err := web.Decode(w, r, &up); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		ch, err := Fetch(ctx, db, chapterID)
		if err != nil || !ch.Published {
			if err == nil || errors.Is(err, database.ErrDBNotFound) {
				return weberr.NotFound(fmt.Errorf("chapter[%s] not found", chapterID))
			}
			return fmt.Errorf("fetching chapter[%s]: %w", chapterID, err)
		}

		c, err := course.FetchPublished(ctx, db, ch.CourseID)
		if err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.NotFound(fmt.Errorf("course[%s] not found", ch.CourseID))
			}
			return fmt.Errorf("fetching course[%s]: %w", ch.CourseID, err)
		}

		ok, err := purchase.Entitled(ctx, db, clm, c)
		if err != nil {
			return fmt.Errorf("checking entitlement of user[%s] to course[%s]: %w", clm.UserID, c.ID, err)
		}
		if !ok {
			return weberr.Forbidden(fmt.Errorf("user[%s] has not purchased course[%s]", clm.UserID, c.ID))
		}

		now := time.Now().UTC()
		p := Progress{
			ChapterID: chapterID,
			UserID:    clm.UserID,
			Completed: up.Completed,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := UpdateProgress(ctx, db, p); err != nil {
			return fmt.Errorf("updating progress of user[%s] on chapter[%s]: %w", clm.UserID, chapterID, err)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func HandleListProgressByCourse(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		courseID := web.Param(r, "course_id")

		if err := validate.CheckID(courseID); err != nil {
			return weberr.BadRequest(err)
		}

		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		ps, err := QueryProgressByCourse(ctx, db, clm.UserID, courseID)
		if err != nil {
			return fmt.Errorf("listing progress of user[%s] on course[%s]: %w", clm.UserID, courseID, err)
		}

		return web.Respond(ctx, w, ps, http.StatusOK)
	}
}
