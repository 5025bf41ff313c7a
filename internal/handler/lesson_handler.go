package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opencampus/academ-api/internal/models"
	"github.com/opencampus/academ-api/internal/service"
	appErrors "github.com/opencampus/academ-api/pkg/errors"
	"github.com/opencampus/academ-api/pkg/response"
)

// LessonHandler exposes lesson content endpoints. Sections are addressed by
// course code and section label; the instructor id comes from the token.
type LessonHandler struct {
	lessons *service.LessonService
}

// NewLessonHandler constructs LessonHandler.
func NewLessonHandler(lessons *service.LessonService) *LessonHandler {
	return &LessonHandler{lessons: lessons}
}

func (h *LessonHandler) sectionRef(c *gin.Context) (service.SectionRef, error) {
	claims := claimsFromContext(c)
	if claims == nil {
		return service.SectionRef{}, appErrors.ErrUnauthorized
	}
	return service.SectionRef{
		InstructorID: claims.ProfileID,
		CourseCode:   c.Query("course_code"),
		SectionLabel: c.Query("section_label"),
	}, nil
}

// List godoc
// @Summary List the lesson content of a section
// @Tags Lessons
// @Produce json
// @Param course_code query string true "Course code"
// @Param section_label query string true "Section label"
// @Success 200 {object} response.Envelope
// @Router /lessons [get]
func (h *LessonHandler) List(c *gin.Context) {
	ref, err := h.sectionRef(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	lessons, err := h.lessons.List(c.Request.Context(), ref)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lessons, nil)
}

// AddContent godoc
// @Summary Append one lesson content item
// @Tags Lessons
// @Accept json
// @Produce json
// @Param course_code query string true "Course code"
// @Param section_label query string true "Section label"
// @Param payload body service.AddLessonContentRequest true "Lesson content payload"
// @Success 201 {object} response.Envelope
// @Router /lessons [post]
func (h *LessonHandler) AddContent(c *gin.Context) {
	ref, err := h.sectionRef(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.AddLessonContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	lessons, err := h.lessons.AddContent(c.Request.Context(), ref, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, lessons, nil)
}

// UpdateContent godoc
// @Summary Rewrite the content of addressed lesson items
// @Tags Lessons
// @Accept json
// @Produce json
// @Param course_code query string true "Course code"
// @Param section_label query string true "Section label"
// @Param payload body []models.LessonContentUpdate true "Lesson updates"
// @Success 200 {object} response.Envelope
// @Router /lessons [put]
func (h *LessonHandler) UpdateContent(c *gin.Context) {
	ref, err := h.sectionRef(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var updates []models.LessonContentUpdate
	if err := c.ShouldBindJSON(&updates); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	lessons, err := h.lessons.UpdateContent(c.Request.Context(), ref, updates)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lessons, nil)
}

// DeleteItem godoc
// @Summary Delete one lesson content item
// @Tags Lessons
// @Accept json
// @Produce json
// @Param course_code query string true "Course code"
// @Param section_label query string true "Section label"
// @Param payload body service.DeleteLessonItemRequest true "Item key"
// @Success 200 {object} response.Envelope
// @Router /lessons/item [delete]
func (h *LessonHandler) DeleteItem(c *gin.Context) {
	ref, err := h.sectionRef(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.DeleteLessonItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	lessons, err := h.lessons.DeleteItem(c.Request.Context(), ref, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lessons, nil)
}

// DeleteGroup godoc
// @Summary Delete an entire lesson group
// @Tags Lessons
// @Produce json
// @Param course_code query string true "Course code"
// @Param section_label query string true "Section label"
// @Param lesson_name query string true "Lesson name"
// @Success 200 {object} response.Envelope
// @Router /lessons/group [delete]
func (h *LessonHandler) DeleteGroup(c *gin.Context) {
	ref, err := h.sectionRef(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	lessons, err := h.lessons.DeleteGroup(c.Request.Context(), ref, c.Query("lesson_name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lessons, nil)
}
