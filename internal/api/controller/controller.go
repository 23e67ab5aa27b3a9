package controller

import (
	"context"

	"github.com/ougirez/certzone/internal/service/jobs"
)

// Jobs is the part of the job runner the handlers need.
type Jobs interface {
	Submit(ctx context.Context, files []string) (string, error)
	Get(id string) (jobs.Job, error)
}

type Controller struct {
	jobs Jobs
}

func NewController(jobs Jobs) *Controller {
	return &Controller{jobs: jobs}
}
