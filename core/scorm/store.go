package scorm

import (
	"context"

	"github.com/irsalhamdi/lms/database"
	"github.com/jmoiron/sqlx"
)

// Save attaches pkg to its course, replacing any previous descriptor.
func Save(ctx context.Context, db sqlx.ExtContext, pkg Package) error {
	q := `
	INSERT INTO scorm_packages
		(course_id, title, version, launch_url, created_at, updated_at)
	VALUES
		(:course_id, :title, :version, :launch_url, :created_at, :updated_at)
	ON CONFLICT (course_id) DO UPDATE SET
		title = EXCLUDED.title,
		version = EXCLUDED.version,
		launch_url = EXCLUDED.launch_url,
		updated_at = EXCLUDED.updated_at`

	return database.NamedExecContext(ctx, db, q, pkg)
}

func Delete(ctx context.Context, db sqlx.ExtContext, courseID string) error {
	in := struct {
		CourseID string `db:"course_id"`
	}{courseID}

	q := `DELETE FROM scorm_packages WHERE course_id = :course_id`

	return database.NamedExecAffected(ctx, db, q, in)
}

func FetchByCourse(ctx context.Context, db sqlx.ExtContext, courseID string) (Package, error) {
	in := struct {
		CourseID string `db:"course_id"`
	}{courseID}

	q := `
	SELECT course_id, title, version, launch_url, created_at, updated_at
	FROM scorm_packages
	WHERE course_id = :course_id`

	var pkg Package
	if err := database.NamedQueryStruct(ctx, db, q, in, &pkg); err != nil {
		return Package{}, err
	}
	return pkg, nil
}
