package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {

	query :=
		`INSERT INTO tasks (title, description, due_date, attachment, user_id, completed, created_at)
		 VALUES ($1, $2, $3, $4, $5, false, $6)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		task.Title, task.Description, task.DueDate, task.Attachment, task.UserID, task.CreatedAt).Scan(&task.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	task.Completed = false

	return task, nil
}

// ListAll returns every task, newest first. The owner's username is joined
// in for display; listing is not filtered by viewer.
func (r *PostgresRepository) ListAll(ctx context.Context) ([]*models.TaskWithOwner, error) {
	query :=
		`SELECT t.id, t.title, t.description, t.due_date, t.attachment, t.user_id, t.completed, t.created_at, u.username
		 FROM tasks t
		 LEFT JOIN users u ON t.user_id = u.id
		 ORDER BY t.created_at DESC, t.id DESC
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.TaskWithOwner
	for rows.Next() {
		t := &models.TaskWithOwner{}
		err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.DueDate, &t.Attachment, &t.UserID, &t.Completed, &t.CreatedAt, &t.OwnerName)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Task, error) {
	query :=
		`SELECT id, title, description, due_date, attachment, user_id, completed, created_at FROM tasks
		 WHERE id = $1
		 `

	task := &models.Task{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&task.ID, &task.Title, &task.Description, &task.DueDate, &task.Attachment, &task.UserID, &task.Completed, &task.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return task, nil
}

func (r *PostgresRepository) SetCompleted(ctx context.Context, id int64, completed bool) error {
	query :=
		`UPDATE tasks SET completed = $1
		 WHERE id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, completed, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}

	return nil
}
