package middleware

import (
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDKey = "request_id"

// RequestID tags every request with an X-Request-ID, minting one when the
// caller did not send its own, so log lines and error responses correlate.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// Logger writes one line per request in the same prefixed style the
// services log in, with the acting user on audited mutations.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		requestID, _ := c.Get(requestIDKey)
		line := fmt.Sprintf("http: [%v] %s %s -> %d in %s",
			requestID, c.Request.Method, c.Request.URL.Path,
			c.Writer.Status(), time.Since(start))
		if actorID, err := GetActorID(c); err == nil {
			line += " actor=" + actorID.String()
		}
		if len(c.Errors) > 0 {
			line += " errors=" + c.Errors.String()
		}
		log.Print(line)
	}
}

// Recovery turns panics into 500 responses without killing the process.
func Recovery() gin.HandlerFunc {
	return gin.Recovery()
}
