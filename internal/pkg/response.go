package pkg

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/simp-lee/learnhub/internal/domain"
)

// Response is the JSON envelope of every API response.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// ValidationErrorResponse is the envelope of a failed binding, with one rule
// per offending field.
type ValidationErrorResponse struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Response{Code: status, Message: message, Data: data})
}

// Success sends a 200 with data.
func Success(c *gin.Context, data any) {
	respond(c, http.StatusOK, "success", data)
}

// Created sends a 201 with the new resource.
func Created(c *gin.Context, data any) {
	respond(c, http.StatusCreated, "success", data)
}

// List sends one page of a collection.
func List[T any](c *gin.Context, page *domain.PageResult[T]) {
	respond(c, http.StatusOK, "success", page)
}

// Affected sends the row count of a bulk operation.
func Affected(c *gin.Context, count int64) {
	Success(c, gin.H{"count": count})
}

// Error maps err to its HTTP status and writes the envelope. Only the
// AppError message reaches the client; for 5xx responses the full error is
// attached to the context so the request log carries the cause.
func Error(c *gin.Context, err error) {
	status := domain.HTTPStatusCode(err)
	msg := "internal error"
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	respond(c, status, msg, nil)
}

// ValidationError sends a 400. validator.ValidationErrors become a field map;
// any other binding failure, like malformed JSON, is logged through the
// context and answered with a generic message.
func ValidationError(c *gin.Context, err error) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		_ = c.Error(err)
		respond(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		name := fe.Field()
		if name == fe.StructField() {
			name = strings.ToLower(name)
		}
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		fields[name] = rule
	}
	c.JSON(http.StatusBadRequest, ValidationErrorResponse{
		Code:    http.StatusBadRequest,
		Message: "validation error",
		Errors:  fields,
	})
}

// BindAndValidate binds the JSON, form or multipart body into obj. On failure
// it writes the 400 and returns false:
//
//	if !pkg.BindAndValidate(c, &req) { return }
func BindAndValidate(c *gin.Context, obj any) bool {
	useWireNames()
	if err := c.ShouldBind(obj); err != nil {
		ValidationError(c, err)
		return false
	}
	return true
}

var wireNamesOnce sync.Once

// useWireNames makes gin's validator report fields by their json (or form)
// name, so error keys match what the client sent.
func useWireNames() {
	wireNamesOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(wireName)
		}
	})
}

// wireName returns the json name of a field, then its form name. An empty
// result keeps the Go field name.
func wireName(f reflect.StructField) string {
	for _, key := range []string{"json", "form"} {
		name, _, _ := strings.Cut(f.Tag.Get(key), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return ""
}
