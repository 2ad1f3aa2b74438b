package util

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

type HTTPError struct {
	Status  int
	Message string
}

func (he *HTTPError) Error() string {
	return fmt.Sprintf("%v (statusCode=%v)", he.Message, he.Status)
}

func BuildDbHTTPErr(err error) *HTTPError {
	log.Println("database error occurred", err)
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Message: "Server error",
	}
}

// BuildReadBackHTTPErr covers a row that vanished between a write and the
// read-back that renders the response.
func BuildReadBackHTTPErr(entity string) *HTTPError {
	log.Println(entity, "missing on read-back after write")
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Message: "Server error",
	}
}

func BuildJSONBindHTTPErr(err error) *HTTPError {
	return &HTTPError{
		Status:  http.StatusBadRequest,
		Message: err.Error(),
	}
}

var MalformedIdHTTPErr = &HTTPError{
	Status:  http.StatusBadRequest,
	Message: "id malformed",
}

type HandlerOpts struct {
	// SuccessStatus overrides the default 200 on success.
	SuccessStatus int
}

type Handler func(c *gin.Context) (interface{}, *HTTPError)

/*
	HandlerWrapper adapts a Handler into gin middleware, rendering every
	response as the {ok: ...} envelope. Payloads returned as gin.H are merged
	into the envelope.
*/
func HandlerWrapper(handler Handler, opts *HandlerOpts) gin.HandlerFunc {
	status := http.StatusOK
	if opts != nil && opts.SuccessStatus != 0 {
		status = opts.SuccessStatus
	}
	return func(c *gin.Context) {
		data, httpErr := handler(c)
		if httpErr != nil {
			c.JSON(httpErr.Status, gin.H{
				"ok":    false,
				"error": httpErr.Message,
			})
			return
		}
		res := gin.H{"ok": true}
		if payload, isMap := data.(gin.H); isMap {
			for key, val := range payload {
				res[key] = val
			}
		} else if data != nil {
			res["data"] = data
		}
		c.JSON(status, res)
	}
}
