package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/dentika/clinic-api/pkg/httputil"
	"github.com/dentika/clinic-api/pkg/logger"
)

// ErrorHandler renders errors that handlers pushed onto the gin error
// list without writing a response themselves. Handlers normally
// respond directly; this is the fallback for the ones that only call
// c.Error.
func ErrorHandler(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		for _, e := range c.Errors {
			log.Error(e.Err, "request error",
				"request_id", c.GetString(ContextRequestID),
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
			)
		}

		httputil.RespondWithError(c, c.Errors.Last().Err)
	}
}
