package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opencampus/academ-api/internal/service"
	appErrors "github.com/opencampus/academ-api/pkg/errors"
	"github.com/opencampus/academ-api/pkg/response"
)

// EnrollmentHandler exposes enrollment endpoints.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// Enroll godoc
// @Summary Enroll a student into a section
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body service.EnrollStudentRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Router /enrollments [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req service.EnrollStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	enrollment, err := h.enrollments.Enroll(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// Drop godoc
// @Summary Drop a student from a section
// @Tags Enrollments
// @Produce json
// @Param student_id query int true "Student ID"
// @Param section_id query int true "Section ID"
// @Success 204
// @Router /enrollments [delete]
func (h *EnrollmentHandler) Drop(c *gin.Context) {
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
	if err := h.enrollments.Drop(c.Request.Context(), studentID, sectionID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Delete godoc
// @Summary Delete an enrollment by id
// @Tags Enrollments
// @Produce json
// @Param id path int true "Enrollment ID"
// @Success 204
// @Router /enrollments/{id} [delete]
func (h *EnrollmentHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.enrollments.DeleteByID(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// List godoc
// @Summary List enrollments, optionally filtered by student or section
// @Tags Enrollments
// @Produce json
// @Param student_id query int false "Student ID"
// @Param section_id query int false "Section ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	if c.Query("student_id") != "" {
		studentID, err := parseIDQuery(c, "student_id")
		if err != nil {
			response.Error(c, err)
			return
		}
		enrollments, err := h.enrollments.ListForStudent(ctx, studentID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, enrollments, nil)
		return
	}

	if c.Query("section_id") != "" {
		sectionID, err := parseIDQuery(c, "section_id")
		if err != nil {
			response.Error(c, err)
			return
		}
		enrollments, err := h.enrollments.ListForSection(ctx, sectionID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, enrollments, nil)
		return
	}

	enrollments, err := h.enrollments.ListAll(ctx)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments, nil)
}
