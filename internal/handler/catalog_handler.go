package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-enroll-api/internal/models"
	"github.com/noah-isme/uni-enroll-api/internal/service"
	appErrors "github.com/noah-isme/uni-enroll-api/pkg/errors"
	"github.com/noah-isme/uni-enroll-api/pkg/response"
)

type catalogService interface {
	GetActiveCourses(ctx context.Context, filter models.CourseFilter) ([]service.CatalogCourse, error)
	GetCourse(ctx context.Context, id int64, studentID string) (*service.CourseDetail, error)
}

// CatalogHandler exposes the public course catalog.
type CatalogHandler struct {
	catalog catalogService
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(catalog catalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// List godoc
// @Summary List active courses
// @Tags Catalog
// @Produce json
// @Param search query string false "Name or code substring"
// @Param creditsMin query int false "Minimum credits"
// @Param creditsMax query int false "Maximum credits"
// @Param startAfter query string false "Earliest start time (HH:MM)"
// @Param endBefore query string false "Latest end time (HH:MM)"
// @Success 200 {object} response.Envelope
// @Router /catalog [get]
func (h *CatalogHandler) List(c *gin.Context) {
	filter, err := parseCourseFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	courses, err := h.catalog.GetActiveCourses(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// Get godoc
// @Summary Get course detail
// @Tags Catalog
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CatalogHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid course id"))
		return
	}

	detail, err := h.catalog.GetCourse(c.Request.Context(), id, callerID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

func parseCourseFilter(c *gin.Context) (models.CourseFilter, error) {
	var filter models.CourseFilter
	filter.Search = c.Query("search")

	if raw := c.Query("creditsMin"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "invalid creditsMin")
		}
		filter.CreditsMin = &v
	}
	if raw := c.Query("creditsMax"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "invalid creditsMax")
		}
		filter.CreditsMax = &v
	}
	if raw := c.Query("startAfter"); raw != "" {
		v, err := models.ParseTimeOfDay(raw)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "invalid startAfter")
		}
		filter.StartAfter = &v
	}
	if raw := c.Query("endBefore"); raw != "" {
		v, err := models.ParseTimeOfDay(raw)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "invalid endBefore")
		}
		filter.EndBefore = &v
	}
	return filter, nil
}
