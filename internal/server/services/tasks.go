package services

import (
	"context"
	"database/sql"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/attachments"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
)

// AddTaskInput carries the form fields of a task creation request. File and
// FileName describe an uploaded file, RecorderToken references a recording
// already stored via the recorder endpoint. When both are supplied the file
// upload wins.
type AddTaskInput struct {
	Title         string
	Description   string
	DueDate       string
	FileName      string
	File          io.Reader
	RecorderToken string
}

// TaskView is a task prepared for display: the record plus the derived
// attachment category.
type TaskView struct {
	*models.Task
	AttachmentKind string
}

type TaskService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	uploads     *attachments.Handler

	// now is a seam for tests; defaults to time.Now.
	now func() time.Time
}

func NewTaskService(db *sql.DB, m repomanager.RepositoryManager, uploads *attachments.Handler) *TaskService {
	return &TaskService{
		db:          db,
		repomanager: m,
		uploads:     uploads,
		now:         time.Now,
	}
}

// Add creates a task owned by the requester. An empty title, or an
// attachment that fails validation, aborts the whole operation: no row is
// written and no rejected file is referenced.
func (s *TaskService) Add(ctx context.Context, in AddTaskInput, requesterID int64) (*models.Task, error) {

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, common.ErrorEmptyTitle
	}

	var attachment *string
	switch {
	case in.File != nil && in.FileName != "":
		name, err := s.uploads.Accept(ctx, in.FileName, in.File)
		if err != nil {
			return nil, err
		}
		attachment = &name
	case in.RecorderToken != "":
		name, err := s.uploads.AcceptPrestored(in.RecorderToken)
		if err != nil {
			return nil, err
		}
		attachment = &name
	}

	task := &models.Task{
		Title:       title,
		Description: optional(in.Description),
		DueDate:     optional(in.DueDate),
		Attachment:  attachment,
		UserID:      &requesterID,
		CreatedAt:   s.now().UTC(),
	}

	repo := s.repomanager.Tasks(s.db)
	return repo.Create(ctx, task)
}

// List returns all tasks, newest first, regardless of who is asking.
func (s *TaskService) List(ctx context.Context) ([]*models.TaskWithOwner, error) {
	repo := s.repomanager.Tasks(s.db)
	return repo.ListAll(ctx)
}

// View loads one task for display.
func (s *TaskService) View(ctx context.Context, id int64) (*TaskView, error) {
	repo := s.repomanager.Tasks(s.db)

	task, err := repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	view := &TaskView{Task: task}
	if task.Attachment != nil {
		view.AttachmentKind = attachments.Kind(*task.Attachment)
	}

	return view, nil
}

// Toggle flips the completion flag of a task. A task with an owner may only
// be toggled by that owner; legacy ownerless tasks may be toggled by any
// authenticated user. The read-check-write runs in one transaction.
func (s *TaskService) Toggle(ctx context.Context, id int64, requesterID int64) (*models.Task, error) {

	var task *models.Task

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Tasks(tx)

		t, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}

		if t.UserID != nil && *t.UserID != requesterID {
			return common.ErrorForbidden
		}

		if err := repo.SetCompleted(ctx, id, !t.Completed); err != nil {
			return err
		}

		t.Completed = !t.Completed
		task = t
		return nil
	})

	if err != nil {
		return nil, err
	}

	return task, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
