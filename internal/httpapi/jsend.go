package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// jsendResponse is the envelope of every JSON response.
type jsendResponse struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

func success(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, jsendResponse{Status: "success", Data: data})
}

// successItems wraps a list as {"items": [...]} plus optional extra keys.
func successItems[T any](c echo.Context, items []T, extra map[string]any) error {
	if items == nil {
		items = []T{}
	}
	data := make(map[string]any, len(extra)+1)
	for key, value := range extra {
		data[key] = value
	}
	data["items"] = items
	return success(c, data)
}

func fail(c echo.Context, code int, message string, data any) error {
	resp := jsendResponse{Status: "fail", Message: message}
	if data != nil {
		resp.Data = data
	}
	return c.JSON(code, resp)
}

func failValidation(c echo.Context, field, problem string) error {
	return fail(c, http.StatusBadRequest, "Validation failed", map[string]any{
		"validation_errors": map[string]string{field: problem},
	})
}

func failNotFound(c echo.Context, message string) error {
	return fail(c, http.StatusNotFound, message, nil)
}

func internalError(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, jsendResponse{
		Status:  "error",
		Message: message,
		Code:    http.StatusInternalServerError,
	})
}
