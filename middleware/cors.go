package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware admits the listed origins with credentials. An empty list
// or a "*" entry admits every origin without credentials.
func CORSMiddleware(allowed []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "Cache-Control", "X-Requested-With"},
		MaxAge:       12 * time.Hour,
	}

	var origins []string
	for _, o := range allowed {
		if o == "*" {
			origins = nil
			break
		}
		origins = append(origins, o)
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}
