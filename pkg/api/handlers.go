/*
Copyright 2025 The Rudder Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rudderci/rudder/pkg/core/artifact"
	"github.com/rudderci/rudder/pkg/core/service"
	"github.com/rudderci/rudder/pkg/core/taskstore"
	"github.com/rudderci/rudder/pkg/core/workflow"
)

type handlers struct {
	service *service.WorkflowService
	logger  *zap.SugaredLogger
}

// runWorkflow accepts a workflow definition document and starts a run in
// the background. The response carries the identifiers needed to follow it.
func (h *handlers) runWorkflow(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "read request body: " + err.Error()})
		return
	}

	spec, err := workflow.ParseWorkflowSpec(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.service.CreateWorkflowTask(c.Request.Context(), spec)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	go func() {
		if _, err := h.service.ExecuteWorkflowTask(context.Background(), spec, task); err != nil {
			h.logger.Errorf("run %s of workflow %s error: %v", task.RunID, spec.Name, err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"run_id":   task.RunID,
		"task_id":  task.TaskID,
		"workflow": task.WorkflowName,
	})
}

func (h *handlers) listRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	tasks, err := h.service.ListWorkflowTasks(c.Request.Context(), c.Param("name"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *handlers) getRun(c *gin.Context) {
	task, err := h.service.GetWorkflowTask(c.Request.Context(), c.Param("runID"))
	if err != nil {
		if errors.Is(err, taskstore.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *handlers) cancelRun(c *gin.Context) {
	userName := c.DefaultQuery("user", "api")
	if err := h.service.CancelWorkflowTask(c.Request.Context(), userName, c.Param("runID")); err != nil {
		if errors.Is(err, taskstore.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cancelled"})
}

func (h *handlers) listArtifacts(c *gin.Context) {
	names, err := h.service.ListArtifacts(c.Request.Context(), c.Param("runID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"artifacts": names})
}

func (h *handlers) downloadArtifact(c *gin.Context) {
	runID, name := c.Param("runID"), c.Param("name")

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Header("Content-Type", "application/octet-stream")

	if err := h.service.FetchArtifact(c.Request.Context(), runID, name, c.Writer); err != nil {
		var notFound *artifact.ArtifactNotFoundError
		if errors.As(err, &notFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.logger.Errorf("download artifact %s of run %s error: %v", name, runID, err)
		c.Status(http.StatusInternalServerError)
	}
}
