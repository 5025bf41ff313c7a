package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opencampus/academ-api/internal/service"
	appErrors "github.com/opencampus/academ-api/pkg/errors"
	"github.com/opencampus/academ-api/pkg/response"
)

// CourseworkHandler exposes assignment, submission and grading endpoints.
type CourseworkHandler struct {
	coursework *service.CourseworkService
}

// NewCourseworkHandler constructs CourseworkHandler.
func NewCourseworkHandler(coursework *service.CourseworkService) *CourseworkHandler {
	return &CourseworkHandler{coursework: coursework}
}

// ListAssignments godoc
// @Summary List the assignments linked to a section
// @Tags Coursework
// @Produce json
// @Param id path int true "Section ID"
// @Success 200 {object} response.Envelope
// @Router /sections/{id}/assignments [get]
func (h *CourseworkHandler) ListAssignments(c *gin.Context) {
	sectionID, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	assignments, err := h.coursework.ListAssignments(c.Request.Context(), sectionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

// GetAssignment godoc
// @Summary Get one assignment
// @Tags Coursework
// @Produce json
// @Param id path int true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id} [get]
func (h *CourseworkHandler) GetAssignment(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	assignment, err := h.coursework.GetAssignment(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// CreateAssignment godoc
// @Summary Create an assignment linked to a section
// @Tags Coursework
// @Accept json
// @Produce json
// @Param id path int true "Section ID"
// @Param payload body service.AddAssignmentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Router /sections/{id}/assignments [post]
func (h *CourseworkHandler) CreateAssignment(c *gin.Context) {
	sectionID, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.AddAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	assignments, err := h.coursework.AddAssignment(c.Request.Context(), sectionID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, assignments, nil)
}

// UpdateAssignment godoc
// @Summary Update an assignment
// @Tags Coursework
// @Accept json
// @Produce json
// @Param id path int true "Assignment ID"
// @Param payload body service.AddAssignmentRequest true "Assignment payload"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id} [put]
func (h *CourseworkHandler) UpdateAssignment(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.AddAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	assignments, err := h.coursework.EditAssignment(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

// DeleteAssignment godoc
// @Summary Delete an assignment and its section link
// @Tags Coursework
// @Produce json
// @Param id path int true "Section ID"
// @Param assignmentId path int true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /sections/{id}/assignments/{assignmentId} [delete]
func (h *CourseworkHandler) DeleteAssignment(c *gin.Context) {
	sectionID, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	assignmentID, err := parseIDParam(c, "assignmentId")
	if err != nil {
		response.Error(c, err)
		return
	}
	assignments, err := h.coursework.DeleteAssignment(c.Request.Context(), sectionID, assignmentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

// Submit godoc
// @Summary Submit or resubmit an assignment
// @Tags Coursework
// @Accept json
// @Produce json
// @Param payload body service.SubmitAssignmentRequest true "Submission payload"
// @Success 200 {object} response.Envelope
// @Router /submissions [post]
func (h *CourseworkHandler) Submit(c *gin.Context) {
	var req service.SubmitAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	submissions, err := h.coursework.SubmitAssignment(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, submissions, nil)
}

// ListSubmissions godoc
// @Summary List a student's submissions within a section
// @Tags Coursework
// @Produce json
// @Param student_id query int true "Student ID"
// @Param section_id query int true "Section ID"
// @Success 200 {object} response.Envelope
// @Router /submissions [get]
func (h *CourseworkHandler) ListSubmissions(c *gin.Context) {
	studentID, err := parseIDQuery(c, "student_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	sectionID, err := parseIDQuery(c, "section_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	submissions, err := h.coursework.ListSubmissions(c.Request.Context(), studentID, sectionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, submissions, nil)
}

// UpdateGrade godoc
// @Summary Grade a submission
// @Tags Coursework
// @Accept json
// @Produce json
// @Param payload body service.UpdateGradeRequest true "Grade payload"
// @Success 200 {object} response.Envelope
// @Router /grades [put]
func (h *CourseworkHandler) UpdateGrade(c *gin.Context) {
	var req service.UpdateGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	outcome, err := h.coursework.UpdateGrade(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, outcome, nil)
}
