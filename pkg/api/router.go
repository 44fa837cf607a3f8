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

// Package api serves the engine over HTTP: submitting runs, reading run
// reports, cancelling, and fetching artifacts.
package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rudderci/rudder/pkg/config"
	"github.com/rudderci/rudder/pkg/core/service"
	"github.com/rudderci/rudder/pkg/setting"
	"github.com/rudderci/rudder/pkg/tool/metrics"
)

func NewRouter(svc *service.WorkflowService, logger *zap.SugaredLogger) *gin.Engine {
	if config.Mode() != setting.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	h := &handlers{service: svc, logger: logger}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	apiGroup := router.Group("/api/v1")
	{
		apiGroup.POST("/workflows/run", h.runWorkflow)
		apiGroup.GET("/workflows/:name/runs", h.listRuns)
		apiGroup.GET("/runs/:runID", h.getRun)
		apiGroup.POST("/runs/:runID/cancel", h.cancelRun)
		apiGroup.GET("/runs/:runID/artifacts", h.listArtifacts)
		apiGroup.GET("/runs/:runID/artifacts/:name", h.downloadArtifact)
	}

	return router
}
