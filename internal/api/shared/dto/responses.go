package dto

import (
	"time"

	"github.com/feral-file/ff-ingestion/internal/domain"
)

// PersonResponse represents a reconciled person as served by the API
type PersonResponse struct {
	UUID                    string                         `json:"uuid"`
	TeamID                  domain.TeamID                  `json:"team_id"`
	DistinctIDs             []string                       `json:"distinct_ids"`
	Properties              domain.Properties              `json:"properties"`
	PropertiesLastUpdatedAt domain.PropertiesLastUpdatedAt `json:"properties_last_updated_at"`
	PropertiesLastOperation domain.PropertiesLastOperation `json:"properties_last_operation"`
	IsIdentified            bool                           `json:"is_identified"`
	CreatedAt               time.Time                      `json:"created_at"`
	Version                 int64                          `json:"version"`
}

// GroupResponse represents a reconciled group as served by the API
type GroupResponse struct {
	TeamID                  domain.TeamID                  `json:"team_id"`
	GroupTypeIndex          domain.GroupTypeIndex          `json:"group_type_index"`
	GroupKey                string                         `json:"group_key"`
	GroupProperties         domain.Properties              `json:"group_properties"`
	PropertiesLastUpdatedAt domain.PropertiesLastUpdatedAt `json:"properties_last_updated_at"`
	PropertiesLastOperation domain.PropertiesLastOperation `json:"properties_last_operation"`
	CreatedAt               time.Time                      `json:"created_at"`
	Version                 int64                          `json:"version"`
}

// MapPersonToDTO converts a domain person and its distinct ids to the API shape
func MapPersonToDTO(p *domain.Person, distinctIDs []string) *PersonResponse {
	if distinctIDs == nil {
		distinctIDs = []string{}
	}
	return &PersonResponse{
		UUID:                    p.UUID,
		TeamID:                  p.TeamID,
		DistinctIDs:             distinctIDs,
		Properties:              p.Properties,
		PropertiesLastUpdatedAt: p.PropertiesLastUpdatedAt,
		PropertiesLastOperation: p.PropertiesLastOperation,
		IsIdentified:            p.IsIdentified,
		CreatedAt:               p.CreatedAt.UTC(),
		Version:                 p.Version,
	}
}

// MapGroupToDTO converts a domain group to the API shape
func MapGroupToDTO(g *domain.Group) *GroupResponse {
	return &GroupResponse{
		TeamID:                  g.TeamID,
		GroupTypeIndex:          g.GroupTypeIndex,
		GroupKey:                g.GroupKey,
		GroupProperties:         g.GroupProperties,
		PropertiesLastUpdatedAt: g.PropertiesLastUpdatedAt,
		PropertiesLastOperation: g.PropertiesLastOperation,
		CreatedAt:               g.CreatedAt.UTC(),
		Version:                 g.Version,
	}
}

// HealthResponse is returned by the health endpoint
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}
