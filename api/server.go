package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"hotel-scraper/config"
	"hotel-scraper/models"
	"hotel-scraper/utils"
)

// ScrapeRunner is the orchestrator surface the API depends on.
type ScrapeRunner interface {
	RunJob(sites []string) (string, *models.ConsolidatedReport, error)
	Consolidate() (string, error)
}

// Server exposes scraping jobs over HTTP. Jobs run as goroutines inside
// this process; the store only tracks their state.
type Server struct {
	cfg    *config.Config
	logger *utils.Logger
	runner ScrapeRunner
	store  JobStore
	engine *gin.Engine
}

type startRequest struct {
	Sites []string `json:"sites"`
}

// NewServer builds the HTTP server with routes and middleware registered.
func NewServer(cfg *config.Config, logger *utils.Logger, runner ScrapeRunner, store JobStore) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.Default())

	s := &Server{
		cfg:    cfg,
		logger: logger,
		runner: runner,
		store:  store,
		engine: engine,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	// only the service-info root is open; everything else shares the key check
	s.engine.GET("/", s.handleRoot)

	keyed := APIKeyAuth(s.cfg.APIEnableAuth, s.cfg.APISecretKey)
	s.engine.GET("/health", keyed, s.handleHealth)

	auth := s.engine.Group("/scraper", keyed)
	auth.POST("/start", s.handleStart)
	auth.GET("/status/:id", s.handleStatus)
	auth.GET("/result/:id", s.handleResult)
	auth.GET("/jobs", s.handleListJobs)
	auth.DELETE("/jobs/:id", s.handleDeleteJob)
	auth.POST("/consolidate", s.handleConsolidate)
}

// Engine exposes the router, mainly for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run blocks serving HTTP on the configured port.
func (s *Server) Run() error {
	addr := ":" + s.cfg.APIPort
	s.logger.Info("API listening on %s (auth enabled: %v)", addr, s.cfg.APIEnableAuth)
	return s.engine.Run(addr)
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "hotel-scraper",
		"version": models.SystemVersion,
		"sites":   models.SiteOrder,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleStart(c *gin.Context) {
	var req startRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	sites := req.Sites
	if len(sites) == 0 {
		sites = models.SiteOrder
	}
	for _, site := range sites {
		if !models.IsValidSite(site) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":       fmt.Sprintf("invalid site: %s", site),
				"valid_sites": models.SiteOrder,
			})
			return
		}
	}

	job := s.store.Create(sites)
	go s.runJob(job.ID, sites)

	s.logger.Info("Job %s queued for sites %v", job.ID, sites)
	c.JSON(http.StatusOK, gin.H{
		"job_id": job.ID,
		"status": job.Status,
		"sites":  sites,
	})
}

// runJob drives one job through its lifecycle in the background.
func (s *Server) runJob(id string, sites []string) {
	s.store.Update(id, func(j *Job) {
		j.Status = StatusRunning
		j.StartedAt = time.Now().Format(time.RFC3339)
	})

	resultFile, _, err := s.runner.RunJob(sites)

	s.store.Update(id, func(j *Job) {
		j.CompletedAt = time.Now().Format(time.RFC3339)
		if err != nil {
			j.Status = StatusFailed
			j.ErrorMessage = err.Error()
			return
		}
		j.Status = StatusCompleted
		j.ResultFile = resultFile
	})

	if err != nil {
		s.logger.Error("Job %s failed: %v", id, err)
	} else {
		s.logger.Info("Job %s completed: %s", id, resultFile)
	}
}

func (s *Server) handleStatus(c *gin.Context) {
	job, ok := s.store.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}

	resp := gin.H{
		"job_id":     job.ID,
		"status":     job.Status,
		"created_at": job.CreatedAt,
		"sites":      job.Sites,
	}
	if job.StartedAt != "" {
		resp["started_at"] = job.StartedAt
		resp["elapsed_time_seconds"] = elapsedSeconds(job)
	}
	if job.CompletedAt != "" {
		resp["completed_at"] = job.CompletedAt
	}
	if job.ErrorMessage != "" {
		resp["error_message"] = job.ErrorMessage
	}
	if job.ResultFile != "" {
		resp["result_file"] = job.ResultFile
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleResult(c *gin.Context) {
	job, ok := s.store.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}

	switch job.Status {
	case StatusQueued, StatusRunning:
		c.JSON(http.StatusAccepted, gin.H{
			"job_id": job.ID,
			"status": job.Status,
			"detail": "job has not finished yet",
		})
	case StatusFailed:
		c.JSON(http.StatusInternalServerError, gin.H{
			"job_id": job.ID,
			"status": job.Status,
			"error":  job.ErrorMessage,
		})
	default:
		data, err := os.ReadFile(job.ResultFile)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "result file unavailable"})
			return
		}
		var report json.RawMessage = data
		c.JSON(http.StatusOK, gin.H{
			"job_id": job.ID,
			"status": job.Status,
			"data":   report,
		})
	}
}

func (s *Server) handleListJobs(c *gin.Context) {
	jobs := s.store.List()
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt > jobs[j].CreatedAt
	})
	c.JSON(http.StatusOK, gin.H{
		"total": len(jobs),
		"jobs":  jobs,
	})
}

func (s *Server) handleDeleteJob(c *gin.Context) {
	id := c.Param("id")
	if !s.store.Delete(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"job_id": id, "deleted": true})
}

func (s *Server) handleConsolidate(c *gin.Context) {
	path, err := s.runner.Consolidate()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      "completed",
		"result_file": path,
	})
}

// elapsedSeconds reports how long a job has been (or was) running, rounded
// to two decimal places.
func elapsedSeconds(job *Job) float64 {
	started, err := time.Parse(time.RFC3339, job.StartedAt)
	if err != nil {
		return 0
	}

	end := time.Now()
	if job.CompletedAt != "" {
		if completed, err := time.Parse(time.RFC3339, job.CompletedAt); err == nil {
			end = completed
		}
	}

	secs := end.Sub(started).Seconds()
	return float64(int(secs*100)) / 100
}
