package purchase

import "time"

// Purchase records that a user may access a course. Its existence is the
// whole meaning: there is no status to inspect.
type Purchase struct {
	UserID    string    `json:"userId" db:"user_id"`
	CourseID  string    `json:"courseId" db:"course_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type PurchaseNew struct {
	UserID string `json:"userId" validate:"required,uuid4"`
}
