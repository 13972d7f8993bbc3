package models

import "time"

// Task is a single to-do item. Description, DueDate, Attachment and UserID
// are optional; legacy rows may have no owner at all. DueDate is stored as
// an opaque string, no time-zone interpretation is applied. CreatedAt is
// set once at insert and is the sole sort key for listings.
type Task struct {
	ID          int64
	Title       string
	Description *string
	DueDate     *string
	Attachment  *string
	UserID      *int64
	Completed   bool
	CreatedAt   time.Time
}

// TaskWithOwner is a listing row: the task joined with the owner's display
// name, when the owner still exists.
type TaskWithOwner struct {
	Task
	OwnerName *string
}
