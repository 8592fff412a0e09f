package order

import (
	"context"

	"github.com/irsalhamdi/lms/database"
	"github.com/jmoiron/sqlx"
)

func Create(ctx context.Context, db sqlx.ExtContext, ord Order) error {
	q := `
	INSERT INTO orders
		(order_id, user_id, provider_id, status, created_at, updated_at)
	VALUES
		(:order_id, :user_id, :provider_id, :status, :created_at, :updated_at)`

	return database.NamedExecContext(ctx, db, q, ord)
}

func CreateItem(ctx context.Context, db sqlx.ExtContext, it Item) error {
	q := `
	INSERT INTO order_items
		(order_id, course_id, price, created_at)
	VALUES
		(:order_id, :course_id, :price, :created_at)`

	return database.NamedExecContext(ctx, db, q, it)
}

func FetchByProviderID(ctx context.Context, db sqlx.ExtContext, providerID string) (Order, error) {
	in := struct {
		ProviderID string `db:"provider_id"`
	}{providerID}

	q := `
	SELECT order_id, user_id, provider_id, status, created_at, updated_at
	FROM orders
	WHERE provider_id = :provider_id`

	var ord Order
	if err := database.NamedQueryStruct(ctx, db, q, in, &ord); err != nil {
		return Order{}, err
	}
	return ord, nil
}

func FetchItems(ctx context.Context, db sqlx.ExtContext, orderID string) ([]Item, error) {
	in := struct {
		OrderID string `db:"order_id"`
	}{orderID}

	q := `
	SELECT order_id, course_id, price, created_at
	FROM order_items
	WHERE order_id = :order_id`

	var items []Item
	if err := database.NamedQuerySlice(ctx, db, q, in, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateStatus only moves pending orders, so a replayed capture or webhook
// reports database.ErrDBNotFound instead of fulfilling twice.
func UpdateStatus(ctx context.Context, db sqlx.ExtContext, up StatusUp) error {
	q := `
	UPDATE orders SET
		status = :status,
		updated_at = :updated_at
	WHERE order_id = :order_id AND status = 'pending'`

	return database.NamedExecAffected(ctx, db, q, up)
}
