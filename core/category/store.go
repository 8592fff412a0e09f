package category

import (
	"context"

	"github.com/irsalhamdi/lms/database"
	"github.com/jmoiron/sqlx"
)

func Create(ctx context.Context, db sqlx.ExtContext, cat Category) error {
	q := `
	INSERT INTO categories
		(category_id, name, created_at)
	VALUES
		(:category_id, :name, :created_at)`

	return database.NamedExecContext(ctx, db, q, cat)
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (Category, error) {
	in := struct {
		ID string `db:"category_id"`
	}{id}

	q := `
	SELECT category_id, name, created_at
	FROM categories
	WHERE category_id = :category_id`

	var cat Category
	if err := database.NamedQueryStruct(ctx, db, q, in, &cat); err != nil {
		return Category{}, err
	}
	return cat, nil
}

func QueryAll(ctx context.Context, db sqlx.ExtContext) ([]Category, error) {
	q := `
	SELECT category_id, name, created_at
	FROM categories
	ORDER BY name`

	cats := []Category{}
	if err := database.NamedQuerySlice(ctx, db, q, struct{}{}, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}
