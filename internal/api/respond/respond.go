package respond

import (
	"io"
	"net/http"

	"github.com/wb-go/wbf/ginext"

	"github.com/aliskhannn/media-editor/internal/api/dto"
)

// Success returns the envelope of a successful response.
func Success() dto.Envelope {
	return dto.Envelope{Success: true}
}

// Stream copies reader into the response with the given content type.
// A negative size sends the body without Content-Length.
func Stream(c *ginext.Context, status int, contentType string, size int64, reader io.Reader) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(status, size, contentType, reader, nil)
}

// JSON sends a JSON response with the specified HTTP status code and data.
// It uses the Gin context to encode the data into JSON format.
func JSON(c *ginext.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// OK sends a 200 OK JSON response. body should embed a successful dto.Envelope.
func OK(c *ginext.Context, body interface{}) {
	JSON(c, http.StatusOK, body)
}

// Created sends a 201 Created JSON response.
func Created(c *ginext.Context, body interface{}) {
	JSON(c, http.StatusCreated, body)
}

// Fail sends {"success": false, "message": ...} with the specified HTTP status code.
func Fail(c *ginext.Context, status int, err error) {
	JSON(c, status, dto.Envelope{Success: false, Message: err.Error()})
}
