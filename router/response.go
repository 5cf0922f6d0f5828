package router

import "github.com/gin-gonic/gin"

// Response is the JSON envelope every router answer uses.
type Response struct {
	Status  int               `json:"status"`
	Message string            `json:"message,omitempty"`
	Data    any               `json:"data,omitempty"`
	Headers map[string]string `json:"-"`
}

// JSONResponse writes resp with its status code and extra headers.
func JSONResponse(c *gin.Context, resp Response) {
	for name, value := range resp.Headers {
		c.Header(name, value)
	}
	c.JSON(resp.Status, resp)
}
