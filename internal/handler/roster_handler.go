package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opencampus/academ-api/internal/service"
	appErrors "github.com/opencampus/academ-api/pkg/errors"
	"github.com/opencampus/academ-api/pkg/response"
)

// RosterHandler exposes the joined read views and their exports.
type RosterHandler struct {
	rosters *service.RosterService
}

// NewRosterHandler constructs RosterHandler.
func NewRosterHandler(rosters *service.RosterService) *RosterHandler {
	return &RosterHandler{rosters: rosters}
}

// CourseMap godoc
// @Summary Course map of every assigned course, section and instructor
// @Tags Roster
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /roster/coursemap [get]
func (h *RosterHandler) CourseMap(c *gin.Context) {
	rows, err := h.rosters.CourseMap(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Dashboard godoc
// @Summary The calling student's dashboard of enrolled sections and coursework
// @Tags Roster
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /roster/dashboard [get]
func (h *RosterHandler) Dashboard(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	dashboard, err := h.rosters.StudentDashboard(c.Request.Context(), claims.ProfileID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dashboard, nil)
}

// Gradebook godoc
// @Summary Section gradebook pairing every student with their submission
// @Tags Roster
// @Produce json
// @Param id path int true "Section ID"
// @Success 200 {object} response.Envelope
// @Router /sections/{id}/gradebook [get]
func (h *RosterHandler) Gradebook(c *gin.Context) {
	sectionID, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	rows, err := h.rosters.SectionGradebook(c.Request.Context(), sectionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Roster godoc
// @Summary Students enrolled in a section
// @Tags Roster
// @Produce json
// @Param id path int true "Section ID"
// @Param course_id query int true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /sections/{id}/roster [get]
func (h *RosterHandler) Roster(c *gin.Context) {
	sectionID, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	courseID, err := parseIDQuery(c, "course_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	students, err := h.rosters.SectionRoster(c.Request.Context(), courseID, sectionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}

// ExportRoster godoc
// @Summary Export the section roster as CSV or PDF
// @Tags Roster
// @Produce text/csv
// @Produce application/pdf
// @Param id path int true "Section ID"
// @Param course_id query int true "Course ID"
// @Param format query string true "csv or pdf"
// @Success 200 {file} file
// @Router /sections/{id}/roster/export [get]
func (h *RosterHandler) ExportRoster(c *gin.Context) {
	sectionID, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	courseID, err := parseIDQuery(c, "course_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.rosters.ExportRoster(c.Request.Context(), courseID, sectionID, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveExport(c, file)
}

// ExportGradebook godoc
// @Summary Export the section gradebook as CSV or PDF
// @Tags Roster
// @Produce text/csv
// @Produce application/pdf
// @Param id path int true "Section ID"
// @Param format query string true "csv or pdf"
// @Success 200 {file} file
// @Router /sections/{id}/gradebook/export [get]
func (h *RosterHandler) ExportGradebook(c *gin.Context) {
	sectionID, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.rosters.ExportGradebook(c.Request.Context(), sectionID, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveExport(c, file)
}

func serveExport(c *gin.Context, file *service.ExportFile) {
	c.Header("Content-Disposition", "attachment; filename="+file.Filename)
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
