package middleware

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"eventforge.io/eventforge/internal/api/openapi"
	"eventforge.io/eventforge/internal/pkg/logger"
)

// Contract violation codes.
const (
	CodeOpenAPIRequestInvalid  = "OPENAPI_REQUEST_INVALID"
	CodeOpenAPIResponseInvalid = "OPENAPI_RESPONSE_INVALID"
)

// NewOpenAPIValidator validates request + response against the embedded contract.
// Contract paths are relative to basePath. Paths the contract does not
// describe pass through unchecked.
func NewOpenAPIValidator(basePath string) (gin.HandlerFunc, error) {
	doc, err := openapi.Load()
	if err != nil {
		return nil, err
	}
	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("create openapi router: %w", err)
	}
	basePath = normalizeBasePath(basePath)

	skipAuth := &openapi3filter.Options{
		// JWT and role checks run in their own middleware.
		AuthenticationFunc: func(context.Context, *openapi3filter.AuthenticationInput) error { return nil },
	}

	return func(c *gin.Context) {
		route, pathParams, err := findContractRoute(router, c.Request, basePath)
		if err != nil {
			if errors.Is(err, routers.ErrPathNotFound) || errors.Is(err, routers.ErrMethodNotAllowed) {
				c.Next()
				return
			}
			abortWithContractError(c, http.StatusBadRequest, CodeOpenAPIRequestInvalid, err.Error())
			return
		}

		reqInput := &openapi3filter.RequestValidationInput{
			Request:    c.Request,
			PathParams: pathParams,
			Route:      route,
			Options:    skipAuth,
		}
		if err := openapi3filter.ValidateRequest(c.Request.Context(), reqInput); err != nil {
			abortWithContractError(c, http.StatusBadRequest, CodeOpenAPIRequestInvalid, err.Error())
			return
		}

		buffered := &bufferedWriter{ResponseWriter: c.Writer, status: http.StatusOK}
		c.Writer = buffered
		c.Next()
		c.Writer = buffered.ResponseWriter

		respInput := &openapi3filter.ResponseValidationInput{
			RequestValidationInput: reqInput,
			Status:                 buffered.status,
			Header:                 buffered.Header().Clone(),
			Options:                skipAuth,
		}
		respInput.SetBodyBytes(buffered.body.Bytes())

		if err := openapi3filter.ValidateResponse(c.Request.Context(), respInput); err != nil {
			logger.Error("OpenAPI response validation failed",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Int("status", buffered.status),
				zap.Error(err),
			)
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    CodeOpenAPIResponseInvalid,
				"message": "response does not conform to OpenAPI contract",
			})
			return
		}

		buffered.ResponseWriter.WriteHeader(buffered.status)
		if _, err := buffered.ResponseWriter.Write(buffered.body.Bytes()); err != nil {
			logger.Warn("failed to flush buffered response",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
		}
	}, nil
}

// MustOpenAPIValidator is NewOpenAPIValidator that panics on setup failure.
func MustOpenAPIValidator(basePath string) gin.HandlerFunc {
	mw, err := NewOpenAPIValidator(basePath)
	if err != nil {
		panic(fmt.Sprintf("init openapi validator: %v", err))
	}
	return mw
}

func normalizeBasePath(basePath string) string {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" || basePath == "/" {
		return ""
	}
	return "/" + strings.Trim(basePath, "/")
}

// contractPath maps a request path to the contract's path space.
func contractPath(basePath, path string) string {
	switch {
	case basePath == "":
		return path
	case path == basePath:
		return "/"
	case strings.HasPrefix(path, basePath+"/"):
		return strings.TrimPrefix(path, basePath)
	default:
		return path
	}
}

// findContractRoute resolves req against the contract with the base path
// stripped. The request URL is left unchanged.
func findContractRoute(router routers.Router, req *http.Request, basePath string) (*routers.Route, map[string]string, error) {
	u := *req.URL
	u.Path = contractPath(basePath, req.URL.Path)
	u.RawPath = ""
	probe := req.Clone(req.Context())
	probe.URL = &u
	return router.FindRoute(probe)
}

func abortWithContractError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"code":    code,
		"message": message,
	})
}

// bufferedWriter holds the response until it has been validated.
type bufferedWriter struct {
	gin.ResponseWriter
	body    bytes.Buffer
	status  int
	written bool
}

func (w *bufferedWriter) WriteHeader(code int) {
	if w.written {
		return
	}
	w.status = code
	w.written = true
}

func (w *bufferedWriter) WriteHeaderNow() {
	w.written = true
}

func (w *bufferedWriter) Write(data []byte) (int, error) {
	w.written = true
	return w.body.Write(data)
}

func (w *bufferedWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

func (w *bufferedWriter) Status() int { return w.status }

func (w *bufferedWriter) Size() int {
	if !w.written {
		return -1
	}
	return w.body.Len()
}

func (w *bufferedWriter) Written() bool { return w.written }
