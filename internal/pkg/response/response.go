package response

import "github.com/gin-gonic/gin"

// Envelope is the body of every API response.
type Envelope struct {
	Success     bool   `json:"success"`
	Message     string `json:"message,omitempty"`
	Code        string `json:"code,omitempty"`
	Data        any    `json:"data,omitempty"`
	Count       *int   `json:"count,omitempty"`
	Total       *int64 `json:"total,omitempty"`
	TotalPages  *int   `json:"totalPages,omitempty"`
	CurrentPage *int   `json:"currentPage,omitempty"`
}

func Success(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, Envelope{Success: true, Data: data})
}

func Message(c *gin.Context, statusCode int, message string, data any) {
	c.JSON(statusCode, Envelope{Success: true, Message: message, Data: data})
}

// List writes data together with its element count.
func List(c *gin.Context, data any, count int) {
	c.JSON(200, Envelope{Success: true, Data: data, Count: &count})
}

// Page writes one page of a paginated listing.
func Page(c *gin.Context, data any, count int, total int64, totalPages, currentPage int) {
	c.JSON(200, Envelope{
		Success:     true,
		Data:        data,
		Count:       &count,
		Total:       &total,
		TotalPages:  &totalPages,
		CurrentPage: &currentPage,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, Envelope{Success: false, Code: code, Message: message})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, Envelope{Success: false, Code: code, Message: message, Data: details})
}
