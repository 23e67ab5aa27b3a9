package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type submitIngestRequest struct {
	Files []string `json:"files" validate:"required,min=1,dive,required"`
}

type submitIngestResponse struct {
	JobID string `json:"job_id"`
}

func (c *Controller) SubmitIngest(ctx echo.Context) error {
	var req submitIngestRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	id, err := c.jobs.Submit(ctx.Request().Context(), req.Files)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusAccepted, submitIngestResponse{JobID: id})
}

func (c *Controller) GetIngest(ctx echo.Context) error {
	job, err := c.jobs.Get(ctx.Param("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, job)
}
