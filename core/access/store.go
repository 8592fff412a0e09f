package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/irsalhamdi/lms/core/category"
	"github.com/irsalhamdi/lms/core/chapter"
	"github.com/irsalhamdi/lms/core/course"
	"github.com/irsalhamdi/lms/core/progress"
	"github.com/irsalhamdi/lms/core/purchase"
	"github.com/irsalhamdi/lms/core/scorm"
	"github.com/irsalhamdi/lms/database"
	"github.com/jmoiron/sqlx"
)

// Store implements the resolver collaborators on top of the database.
type Store struct {
	db sqlx.ExtContext
}

func NewStore(db sqlx.ExtContext) Store {
	return Store{db: db}
}

func (s Store) Purchased(ctx context.Context, userID string, courseID string) (bool, error) {
	if _, err := purchase.Fetch(ctx, s.db, userID, courseID); err != nil {
		return false, err
	}
	return true, nil
}

func (s Store) Published(ctx context.Context, courseID string) (Course, error) {
	c, err := course.FetchPublished(ctx, s.db, courseID)
	if err != nil {
		return Course{}, err
	}

	agg := Course{Course: c}

	if c.CategoryID != nil {
		cat, err := category.Fetch(ctx, s.db, *c.CategoryID)
		switch {
		case err == nil:
			agg.Category = &cat
		case !errors.Is(err, database.ErrDBNotFound):
			return Course{}, fmt.Errorf("fetching category[%s]: %w", *c.CategoryID, err)
		}
	}

	chs, err := chapter.QueryPublishedByCourse(ctx, s.db, c.ID)
	if err != nil {
		return Course{}, fmt.Errorf("listing chapters: %w", err)
	}
	agg.Chapters = chs

	pkg, err := scorm.FetchByCourse(ctx, s.db, c.ID)
	switch {
	case err == nil:
		agg.Scorm = &pkg
	case !errors.Is(err, database.ErrDBNotFound):
		return Course{}, fmt.Errorf("fetching scorm package: %w", err)
	}

	return agg, nil
}

func (s Store) Percentage(ctx context.Context, userID string, courseID string) (*int, error) {
	return progress.Percentage(ctx, s.db, userID, courseID)
}
