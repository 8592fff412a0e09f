package chapter

import (
	"sort"
	"time"
)

type Chapter struct {
	ID          string    `json:"id" db:"chapter_id"`
	CourseID    string    `json:"courseId" db:"course_id"`
	Position    int       `json:"position" db:"position"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Free        bool      `json:"free" db:"free"`
	Published   bool      `json:"published" db:"published"`
	URL         string    `json:"-" db:"url"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
	Version     int       `json:"-" db:"version"`
}

type ChapterNew struct {
	CourseID    string `json:"courseId" validate:"required,uuid4"`
	Position    int    `json:"position" validate:"gte=0"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Free        bool   `json:"free"`
	Published   bool   `json:"published"`
	URL         string `json:"url" validate:"omitempty,url"`
}

type ChapterUp struct {
	Position    *int    `json:"position" validate:"omitempty,gte=0"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Free        *bool   `json:"free"`
	Published   *bool   `json:"published"`
	URL         *string `json:"url" validate:"omitempty,url"`
}

func (ch *Chapter) Apply(up ChapterUp) {
	if up.Position != nil {
		ch.Position = *up.Position
	}
	if up.Title != nil {
		ch.Title = *up.Title
	}
	if up.Description != nil {
		ch.Description = *up.Description
	}
	if up.Free != nil {
		ch.Free = *up.Free
	}
	if up.Published != nil {
		ch.Published = *up.Published
	}
	if up.URL != nil {
		ch.URL = *up.URL
	}
}

// Full is the chapter as served by the player, with its content URL and the
// neighbouring published chapters.
type Full struct {
	Chapter
	URL    string  `json:"url"`
	PrevID *string `json:"prevId,omitempty"`
	NextID *string `json:"nextId,omitempty"`
}

type Progress struct {
	ChapterID string    `json:"chapterId" db:"chapter_id"`
	UserID    string    `json:"userId" db:"user_id"`
	Completed bool      `json:"completed" db:"completed"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type ProgressUp struct {
	Completed bool `json:"completed"`
}

// Published keeps the published chapters of chs ordered by ascending position.
// The input slice is left untouched.
func Published(chs []Chapter) []Chapter {
	out := make([]Chapter, 0, len(chs))
	for _, ch := range chs {
		if ch.Published {
			out = append(out, ch)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Position < out[j].Position
	})

	return out
}

// Neighbours returns the ids of the chapters around id in an ordered list.
func Neighbours(ordered []Chapter, id string) (prev *string, next *string) {
	for i, ch := range ordered {
		if ch.ID != id {
			continue
		}
		if i > 0 {
			p := ordered[i-1].ID
			prev = &p
		}
		if i < len(ordered)-1 {
			n := ordered[i+1].ID
			next = &n
		}
		return prev, next
	}
	return nil, nil
}
