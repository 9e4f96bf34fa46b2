package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

var errInvalidRequestBody = errors.New("invalid request body")

const endpointNotFoundMessage = "Endpoint is not found"

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func newAPIError(code int, message string) apiError {
	return apiError{
		Code:    code,
		Message: message,
	}
}

func (e apiError) Error() string {
	return e.Message
}

func abort(c *gin.Context, err apiError) {
	c.AbortWithStatusJSON(err.Code, gin.H{"error": err.Message})
}

func newStatusTextError(status int) apiError {
	return newAPIError(status, http.StatusText(status))
}

func newBadRequestError(message string) apiError {
	return newAPIError(http.StatusBadRequest, message)
}

func newNotFoundError(message string) apiError {
	return newAPIError(http.StatusNotFound, message)
}

// notFoundResponse keeps "status" ahead of "message" in the encoded body.
type notFoundResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// HandleNotFound answers every request that no route matched.
func HandleNotFound(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusNotFound, notFoundResponse{
		Status:  http.StatusNotFound,
		Message: endpointNotFoundMessage,
	})
}
