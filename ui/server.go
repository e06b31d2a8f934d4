package ui

import (
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strconv"

	"gopower/app"
	"gopower/domain/power"
	"gopower/internal/config"
	"gopower/internal/errors"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*
var embeddedTemplates embed.FS

// Slider bounds for both rate controls; the API re-checks them since it is
// reachable without the page.
const (
	rateMin  = 0.01
	rateMax  = 0.10
	rateStep = 0.001

	defaultControl   = 0.05
	defaultTreatment = 0.06
)

// Server represents the web server for the power analysis UI
type Server struct {
	router    *gin.Engine
	sweeps    *app.SweepService
	simConfig config.SimulationConfig
	templates *template.Template
}

// NewServer creates a new web server instance
func NewServer(sweeps *app.SweepService, simConfig config.SimulationConfig, ginMode string) (*Server, error) {
	if ginMode != "" {
		gin.SetMode(ginMode)
	}

	templates, err := template.ParseFS(embeddedTemplates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		router:    gin.Default(),
		sweeps:    sweeps,
		simConfig: simConfig,
		templates: templates,
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/api/power/sweep", s.handleSweep)
}

// Start begins serving on the given address
func (s *Server) Start(addr string) error {
	return s.router.Run(addr)
}

// Router exposes the gin engine for tests
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleIndex renders the interactive page: two rate sliders bound to the
// sweep endpoint; every change re-runs the full sweep and replaces the chart.
func (s *Server) handleIndex(c *gin.Context) {
	data := gin.H{
		"RateMin":          rateMin,
		"RateMax":          rateMax,
		"RateStep":         rateStep,
		"DefaultControl":   defaultControl,
		"DefaultTreatment": defaultTreatment,
		"TargetPower":      s.simConfig.TargetPower,
		"Alpha":            s.simConfig.Alpha,
		"Repetitions":      s.simConfig.Repetitions,
	}
	s.renderTemplate(c, "index.html", data)
}

func (s *Server) renderTemplate(c *gin.Context, templateName string, data interface{}) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(c.Writer, templateName, data); err != nil {
		log.Printf("template render failed: %v", err)
		c.String(http.StatusInternalServerError, "template error")
	}
}

// handleSweep runs a full power sweep for the supplied rates and returns the
// curve as JSON. Failed sizes come back with an error marker, not a gap.
func (s *Server) handleSweep(c *gin.Context) {
	pControl, err := parseRate(c.Query("p_control"))
	if err != nil {
		appErr := errors.InvalidInput(fmt.Sprintf("p_control: %v", err))
		c.JSON(http.StatusBadRequest, gin.H{"error": appErr.Error(), "code": appErr.Code})
		return
	}
	pTreatment, err := parseRate(c.Query("p_treatment"))
	if err != nil {
		appErr := errors.InvalidInput(fmt.Sprintf("p_treatment: %v", err))
		c.JSON(http.StatusBadRequest, gin.H{"error": appErr.Error(), "code": appErr.Code})
		return
	}

	expConfig, err := s.simConfig.ExperimentConfig()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	result, err := s.sweeps.RunSweep(c.Request.Context(), app.SweepRequest{
		Config: expConfig,
		Rates:  power.GroupRates{Control: pControl, Treatment: pTreatment},
		Seed:   s.simConfig.BaseSeed(),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func parseRate(raw string) (float64, error) {
	if raw == "" {
		return 0, fmt.Errorf("missing")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", raw)
	}
	if v < rateMin || v > rateMax {
		return 0, fmt.Errorf("out of range [%g, %g]: %g", rateMin, rateMax, v)
	}
	return v, nil
}
