package rest

import (
	"context"
	"net/http"

	"github.com/dfryer1193/campusnav/api"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const jsonContentType = "application/json; charset=utf-8"

// Directory is the part of the navigation directory served over HTTP
type Directory interface {
	ClassroomListJSON(ctx context.Context) ([]byte, error)
	ClassroomJSON(ctx context.Context, name string) ([]byte, error)
	Ping(ctx context.Context) error
}

type ClassroomHandler struct {
	directory Directory
}

func NewClassroomHandler(directory Directory) *ClassroomHandler {
	return &ClassroomHandler{directory: directory}
}

func (h *ClassroomHandler) GetClassroomList(c *gin.Context) {
	body, err := h.directory.ClassroomListJSON(c.Request.Context())
	if err != nil {
		log.Warn().Err(err).Msg("Classroom list not available")
		c.JSON(http.StatusNotFound, api.Error{
			Error:  "classroom list not available",
			Reason: err.Error(),
		})
		return
	}

	c.Data(http.StatusOK, jsonContentType, body)
}

func (h *ClassroomHandler) GetClassroom(c *gin.Context) {
	name, ok := c.GetQuery("name")
	if !ok {
		c.JSON(http.StatusBadRequest, api.Error{
			Error:  "invalid request",
			Reason: "missing query parameter \"name\"",
		})
		return
	}

	body, err := h.directory.ClassroomJSON(c.Request.Context(), name)
	if err != nil {
		log.Warn().Err(err).Str("classroom", name).Msg("Classroom data not available")
		c.JSON(http.StatusNotFound, api.Error{
			Error:  "classroom data not available",
			Reason: err.Error(),
		})
		return
	}

	c.Data(http.StatusOK, jsonContentType, body)
}

func (h *ClassroomHandler) GetHealth(c *gin.Context) {
	if err := h.directory.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, api.Health{Status: "unavailable", Reason: err.Error()})
		return
	}
	c.JSON(http.StatusOK, api.Health{Status: "ok"})
}
