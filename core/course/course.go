package course

import "time"

type Course struct {
	ID          string    `json:"id" db:"course_id"`
	OwnerID     string    `json:"ownerId" db:"owner_id"`
	CategoryID  *string   `json:"categoryId,omitempty" db:"category_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	ImageURL    string    `json:"imageUrl" db:"image_url"`
	Price       int       `json:"price" db:"price"`
	Published   bool      `json:"published" db:"published"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
	Version     int       `json:"-" db:"version"`
}

type CourseNew struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description" validate:"required"`
	CategoryID  *string `json:"categoryId" validate:"omitempty,uuid4"`
	Price       int     `json:"price" validate:"gte=0,lte=10000"`
	ImageURL    string  `json:"imageUrl" validate:"required"`
}

type CourseUp struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	CategoryID  *string `json:"categoryId" validate:"omitempty,uuid4"`
	Price       *int    `json:"price" validate:"omitempty,gte=0,lte=10000"`
	ImageURL    *string `json:"imageUrl"`
	Published   *bool   `json:"published"`
}

// Apply copies every field set in up onto c.
func (c *Course) Apply(up CourseUp) {
	if up.Title != nil {
		c.Title = *up.Title
	}
	if up.Description != nil {
		c.Description = *up.Description
	}
	if up.CategoryID != nil {
		c.CategoryID = up.CategoryID
	}
	if up.Price != nil {
		c.Price = *up.Price
	}
	if up.ImageURL != nil {
		c.ImageURL = *up.ImageURL
	}
	if up.Published != nil {
		c.Published = *up.Published
	}
}
