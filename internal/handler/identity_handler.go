package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opencampus/academ-api/internal/service"
	appErrors "github.com/opencampus/academ-api/pkg/errors"
	"github.com/opencampus/academ-api/pkg/response"
)

// IdentityHandler exposes student and instructor account endpoints.
type IdentityHandler struct {
	identity *service.IdentityService
}

// NewIdentityHandler constructs IdentityHandler.
func NewIdentityHandler(identity *service.IdentityService) *IdentityHandler {
	return &IdentityHandler{identity: identity}
}

// ListStudents godoc
// @Summary List students
// @Tags Identity
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *IdentityHandler) ListStudents(c *gin.Context) {
	students, err := h.identity.ListStudents(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}

// CreateStudent godoc
// @Summary Register a student with a login account
// @Tags Identity
// @Accept json
// @Produce json
// @Param payload body service.CreateStudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Router /students [post]
func (h *IdentityHandler) CreateStudent(c *gin.Context) {
	var req service.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	student, err := h.identity.CreateStudent(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// UpdateStudent godoc
// @Summary Update a student profile and account
// @Tags Identity
// @Accept json
// @Produce json
// @Param id path int true "Student ID"
// @Param payload body service.UpdateStudentRequest true "Student payload"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [put]
func (h *IdentityHandler) UpdateStudent(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	student, err := h.identity.UpdateStudent(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// ListInstructors godoc
// @Summary List instructors
// @Tags Identity
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /instructors [get]
func (h *IdentityHandler) ListInstructors(c *gin.Context) {
	instructors, err := h.identity.ListInstructors(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, instructors, nil)
}

// CreateInstructor godoc
// @Summary Register an instructor with a login account
// @Tags Identity
// @Accept json
// @Produce json
// @Param payload body service.CreateInstructorRequest true "Instructor payload"
// @Success 201 {object} response.Envelope
// @Router /instructors [post]
func (h *IdentityHandler) CreateInstructor(c *gin.Context) {
	var req service.CreateInstructorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	instructor, err := h.identity.CreateInstructor(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, instructor)
}
