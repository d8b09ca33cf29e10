package rest

import "github.com/gin-gonic/gin"

func NewApi(router *gin.Engine, directory Directory) {
	h := NewClassroomHandler(directory)

	router.GET("/classroomlist", h.GetClassroomList)
	router.GET("/classroom", h.GetClassroom)
	router.GET("/healthz", h.GetHealth)
}
