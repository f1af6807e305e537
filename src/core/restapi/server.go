/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package restapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bpmn-token-engine/src/core/logger"
	"bpmn-token-engine/src/core/restapi/middleware"
	"bpmn-token-engine/src/core/restapi/models"
	"bpmn-token-engine/src/core/restapi/utils"
	"bpmn-token-engine/src/core/types"
	"bpmn-token-engine/src/process"
	"bpmn-token-engine/src/storage"
)

// Config holds REST API server configuration
type Config struct {
	Host    string                    `yaml:"host"`
	Port    int                       `yaml:"port"`
	CORS    *middleware.CORSConfig    `yaml:"cors"`
	Logging *middleware.LoggingConfig `yaml:"logging"`
}

// DefaultConfig returns default REST API configuration
func DefaultConfig() *Config {
	return &Config{
		Host:    "localhost",
		Port:    27555,
		CORS:    middleware.DefaultCORSConfig(),
		Logging: middleware.DefaultLoggingConfig(),
	}
}

// Server exposes the FMS/EE command surface (spec §6.2) over HTTP.
type Server struct {
	config     *Config
	httpServer *http.Server
	router     *gin.Engine
	engine     *process.Engine

	corsMiddleware    *middleware.CORSMiddleware
	loggingMiddleware *middleware.LoggingMiddleware

	converter *utils.Converter
	validator *utils.Validator
}

// NewServer creates a new REST API server bound to a process.Engine.
func NewServer(config *Config, engine *process.Engine) *Server {
	if config == nil {
		config = DefaultConfig()
	}

	server := &Server{
		config:    config,
		engine:    engine,
		converter: utils.NewConverter(),
		validator: utils.NewValidator(),
	}

	server.setupRouter()
	return server
}

func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)
	s.router = gin.New()
	s.setupMiddleware()
	s.setupRoutes()
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())

	if s.config.CORS != nil {
		s.corsMiddleware = middleware.NewCORSMiddleware(s.config.CORS)
		s.router.Use(s.corsMiddleware.Handler())
	}

	if s.config.Logging != nil {
		s.loggingMiddleware = middleware.NewLoggingMiddleware(s.config.Logging)
		s.router.Use(s.loggingMiddleware.Handler())
	}
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthHandler)

	v1 := s.router.Group("/api/v1")
	{
		flows := v1.Group("/flows")
		{
			flows.POST("/elements", s.setElementHandler)
			flows.POST("/link-sub-process", s.linkSubProcessHandler)
			flows.POST("/factory", s.setFactoryInstanceHandler)
			flows.GET("/:flow_id", s.getFlowHandler)
		}

		instances := v1.Group("/instances")
		{
			instances.POST("", s.createRootInstanceHandler)
			instances.POST("/continue", s.continueExecutionHandler)
			instances.GET("/:instance_id", s.getInstanceHandler)
		}
	}
}

// Start starts the REST API server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	logger.Info("Starting REST API server",
		logger.String("address", addr),
		logger.Int("port", s.config.Port))

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("REST API server failed", logger.String("error", err.Error()))
		}
	}()

	return nil
}

// Stop stops the REST API server.
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	logger.Info("Stopping REST API server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// IsReady returns server ready status.
func (s *Server) IsReady() bool {
	return s.httpServer != nil
}

func (s *Server) healthHandler(c *gin.Context) {
	response := models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Checks: map[string]interface{}{
			"server": "ok",
		},
	}
	c.JSON(http.StatusOK, models.SuccessResponse(response, requestID(c)))
}

func requestID(c *gin.Context) string {
	if id := c.GetHeader("X-Request-ID"); id != "" {
		return id
	}
	return ""
}

func (s *Server) respondError(c *gin.Context, err error) {
	var coreErr *types.CoreError
	if errors.As(err, &coreErr) {
		apiErr := models.FromCoreError(coreErr)
		c.JSON(models.HTTPStatusFromErrorCode(apiErr.Code), models.ErrorResponse(apiErr, requestID(c)))
		return
	}
	if errors.Is(err, storage.ErrNotFound) {
		apiErr := models.NotFoundError(err.Error())
		c.JSON(http.StatusNotFound, models.ErrorResponse(apiErr, requestID(c)))
		return
	}
	apiErr := models.InternalServerError(err.Error())
	c.JSON(http.StatusInternalServerError, models.ErrorResponse(apiErr, requestID(c)))
}

// setElementHandler implements spec §6.2 command 1: POST /flows/elements.
func (s *Server) setElementHandler(c *gin.Context) {
	var req models.SetElementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse(models.BadRequestError(err.Error()), requestID(c)))
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse(err.(*models.APIError), requestID(c)))
		return
	}

	pre, err := s.converter.HexToU128(req.Pre)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse(models.BadRequestError(err.Error()), requestID(c)))
		return
	}
	post, err := s.converter.HexToU128(req.Post)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse(models.BadRequestError(err.Error()), requestID(c)))
		return
	}
	typeInfo, err := s.converter.HexToU128(req.TypeInfo)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse(models.BadRequestError(err.Error()), requestID(c)))
		return
	}
	eventCode := s.converter.ParseEventCode(req.EventCode)

	// NextElem is a one-entry list naming this element's own adjacency; a
	// flat array would be ambiguous about which element_index it belongs to.
	var adjacency []uint64
	for _, entry := range req.NextElem {
		if entry.ElementIndex == req.ElementIndex {
			adjacency = entry.NextElem
		}
	}

	if err := s.engine.SetElement(req.FlowID, req.ElementIndex, pre, post, typeInfo, eventCode, adjacency); err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse(models.UpdateResponse{ID: req.FlowID}, requestID(c)))
}

// linkSubProcessHandler implements spec §6.2 command 2:
// POST /flows/link-sub-process.
func (s *Server) linkSubProcessHandler(c *gin.Context) {
	var req models.LinkSubProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse(models.BadRequestError(err.Error()), requestID(c)))
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse(err.(*models.APIError), requestID(c)))
		return
	}

	count := types.U128FromUint64(1)
	if req.CountInstances != "" {
		parsed, err := s.converter.HexToU128(req.CountInstances)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(models.BadRequestError(err.Error()), requestID(c)))
			return
		}
		count = parsed
	}

	if err := s.engine.LinkSubProcess(req.FlowID, req.ParentIndex, req.ChildFlowID, req.AttachedEvents, count); err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse(models.UpdateResponse{ID: req.FlowID}, requestID(c)))
}

// setFactoryInstanceHandler implements spec §6.2 command 3: POST /flows/factory.
func (s *Server) setFactoryInstanceHandler(c *gin.Context) {
	var req models.SetFactoryInstanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse(models.BadRequestError(err.Error()), requestID(c)))
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse(err.(*models.APIError), requestID(c)))
		return
	}

	if err := s.engine.SetFactoryInstance(req.FlowID, req.DataHash, req.InstantiateSelector, req.ExecuteScriptSelector); err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse(models.UpdateResponse{ID: req.FlowID}, requestID(c)))
}

// createRootInstanceHandler implements spec §6.2 command 4: POST /instances.
func (s *Server) createRootInstanceHandler(c *gin.Context) {
	var req models.CreateRootInstanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse(models.BadRequestError(err.Error()), requestID(c)))
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse(err.(*models.APIError), requestID(c)))
		return
	}

	instanceID, err := s.engine.CreateRootInstance(req.FlowID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.SuccessResponse(models.RootInstanceResponse{
		InstanceID: instanceID,
		FlowID:     req.FlowID,
	}, requestID(c)))
}

// continueExecutionHandler implements spec §6.2 command 5:
// POST /instances/continue.
func (s *Server) continueExecutionHandler(c *gin.Context) {
	var req models.ContinueExecutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse(models.BadRequestError(err.Error()), requestID(c)))
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse(err.(*models.APIError), requestID(c)))
		return
	}

	if err := s.engine.ContinueExecution(req.InstanceID, req.ElementIndex); err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse(models.UpdateResponse{ID: req.InstanceID}, requestID(c)))
}

// getFlowHandler renders a FlowDefinition for inspection.
func (s *Server) getFlowHandler(c *gin.Context) {
	flowID := c.Param("flow_id")

	flow, err := s.engine.GetFlow(flowID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	elements := make([]models.FlowElementResponse, 0)
	for elementIndex, entry := range flow.CondTable {
		elements = append(elements, models.FlowElementResponse{
			ElementIndex: elementIndex,
			Pre:          s.converter.U128ToHex(entry.Pre),
			Post:         s.converter.U128ToHex(entry.Post),
			TypeInfo:     s.converter.U128ToHex(entry.TypeInfo),
			Kind:         entry.Kind.String(),
			NextElem:     flow.GetAdyElements(elementIndex),
		})
	}

	c.JSON(http.StatusOK, models.SuccessResponse(models.FlowResponse{
		FlowID:       flow.FlowID,
		StartEvent:   flow.StartEvent,
		HasStart:     flow.HasStart,
		Elements:     elements,
		SubProcesses: flow.GetSubProcessList(),
		Events:       flow.GetEventList(),
	}, requestID(c)))
}

// getInstanceHandler renders an InstanceState for inspection.
func (s *Server) getInstanceHandler(c *gin.Context) {
	instanceID := c.Param("instance_id")

	instance, err := s.engine.GetInstance(instanceID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	childIDs := make([]string, 0)
	for _, ids := range instance.Children {
		childIDs = append(childIDs, ids...)
	}

	c.JSON(http.StatusOK, models.SuccessResponse(models.InstanceResponse{
		InstanceID:        instance.InstanceID,
		FlowID:            instance.IflowNode,
		TokensOnEdges:     s.converter.U128ToHex(instance.TokensOnEdges),
		StartedActivities: s.converter.U128ToHex(instance.StartedActivities),
		HasParent:         instance.HasParent,
		ParentInstanceID:  instance.IdataParent,
		IndexInParent:     instance.IndexInParent,
		Terminated:        instance.IsTerminated(),
		ChildIDs:          childIDs,
	}, requestID(c)))
}
