package middleware

import (
	"fmt"
	"net/http"

	"github.com/dfryer1193/campusnav/api"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func HandlePanics() gin.RecoveryFunc {
	return func(c *gin.Context, recovered any) {
		reason := fmt.Sprint(recovered)
		if err, ok := recovered.(error); ok {
			reason = err.Error()
		}

		log.Error().
			Str("request_id", c.GetString(RequestIDKey)).
			Str("path", c.Request.URL.Path).
			Str("reason", reason).
			Msg("Recovered from panic")

		c.AbortWithStatusJSON(http.StatusInternalServerError, api.Error{
			Error:  "internal error",
			Reason: reason,
		})
	}
}
