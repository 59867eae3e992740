package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/feral-file/ff-ingestion/internal/api/shared/dto"
	"github.com/feral-file/ff-ingestion/internal/api/shared/executor"
	"github.com/feral-file/ff-ingestion/internal/domain"
)

// Handler defines the interface for REST API handlers
type Handler interface {
	// GetPerson retrieves the person owning a distinct id
	// GET /v1/teams/:team_id/persons/:distinct_id
	GetPerson(c *gin.Context)

	// GetGroup retrieves a group by type index and key
	// GET /v1/teams/:team_id/groups/:group_type_index/:group_key
	GetGroup(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /healthz
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	service  string
	executor executor.Executor
}

// NewHandler creates a new REST API handler using the shared executor
func NewHandler(service string, exec executor.Executor) Handler {
	return &handler{
		service:  service,
		executor: exec,
	}
}

// GetPerson retrieves the person owning a distinct id
func (h *handler) GetPerson(c *gin.Context) {
	teamID, ok := parseTeamID(c)
	if !ok {
		return
	}

	distinctID := c.Param("distinct_id")
	if distinctID == "" {
		respondBadRequest(c, "Distinct ID is required")
		return
	}

	person, err := h.executor.GetPerson(c.Request.Context(), teamID, distinctID)
	if err != nil {
		respondError(c, err, "Failed to get person")
		return
	}

	if person == nil {
		respondNotFound(c, "Person not found")
		return
	}

	c.JSON(http.StatusOK, person)
}

// GetGroup retrieves a group by type index and key
func (h *handler) GetGroup(c *gin.Context) {
	teamID, ok := parseTeamID(c)
	if !ok {
		return
	}

	index, err := strconv.Atoi(c.Param("group_type_index"))
	if err != nil || index < 0 || index >= domain.MAX_GROUP_TYPES_PER_TEAM {
		respondBadRequest(c, "Invalid group type index")
		return
	}

	groupKey := c.Param("group_key")
	if groupKey == "" {
		respondBadRequest(c, "Group key is required")
		return
	}

	group, err := h.executor.GetGroup(c.Request.Context(), teamID, domain.GroupTypeIndex(index), groupKey)
	if err != nil {
		respondError(c, err, "Failed to get group")
		return
	}

	if group == nil {
		respondNotFound(c, "Group not found")
		return
	}

	c.JSON(http.StatusOK, group)
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{
		Status:  "ok",
		Service: h.service,
	})
}

func parseTeamID(c *gin.Context) (domain.TeamID, bool) {
	teamID, err := strconv.ParseInt(c.Param("team_id"), 10, 64)
	if err != nil || teamID <= 0 {
		respondBadRequest(c, "Invalid team ID")
		return 0, false
	}
	return domain.TeamID(teamID), true
}
