package tasks

import (
	"context"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	ListAll(ctx context.Context) ([]*models.TaskWithOwner, error)
	Get(ctx context.Context, id int64) (*models.Task, error)
	SetCompleted(ctx context.Context, id int64, completed bool) error
}
