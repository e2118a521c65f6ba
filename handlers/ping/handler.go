package ping

import (
	"cinema-backend/utils"

	"github.com/gin-gonic/gin"
)

type Handler struct{}

func New() *Handler {
	return &Handler{}
}

// @Summary Ping test
// @Description Liveness probe that answers pong.
// @Tags test
// @Produce json
// @Success 200 {object} utils.Response
// @Router /ping [get]
func (h *Handler) HandlePing(c *gin.Context) {
	utils.SendSuccess(c, 200, "Ping successful", gin.H{
		"message": "pong",
	})
}
