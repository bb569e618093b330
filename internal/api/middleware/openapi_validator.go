package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vme-analyzer.io/analyzer/internal/api/openapi"
	"vme-analyzer.io/analyzer/internal/pkg/logger"
)

const (
	codeRouteInvalid    = "OPENAPI_ROUTE_INVALID"
	codeRequestInvalid  = "OPENAPI_REQUEST_INVALID"
	codeResponseInvalid = "OPENAPI_RESPONSE_INVALID"

	responseInvalidMessage = "response does not conform to OpenAPI contract"
)

// Authentication is enforced by JWTAuth and RequirePermission later in the
// chain, so security requirements in the contract are accepted as given.
var skipAuthentication = &openapi3filter.Options{
	AuthenticationFunc: func(context.Context, *openapi3filter.AuthenticationInput) error { return nil },
}

// MustOpenAPIValidator is NewOpenAPIValidator for router setup; it panics
// when the embedded contract cannot be loaded.
func MustOpenAPIValidator(basePath string) gin.HandlerFunc {
	mw, err := NewOpenAPIValidator(basePath)
	if err != nil {
		panic(fmt.Sprintf("init openapi validator: %v", err))
	}
	return mw
}

// NewOpenAPIValidator validates request and response against the embedded
// API contract. Contract paths are matched after basePath is stripped.
// Paths the contract does not describe pass through.
func NewOpenAPIValidator(basePath string) (gin.HandlerFunc, error) {
	doc, err := openapi.Load()
	if err != nil {
		return nil, err
	}
	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("create contract router: %w", err)
	}
	v := &contractValidator{router: router, basePath: cleanBasePath(basePath)}
	return v.handle, nil
}

type contractValidator struct {
	router   routers.Router
	basePath string
}

func (v *contractValidator) handle(c *gin.Context) {
	probe := v.probeRequest(c.Request)

	route, params, err := v.router.FindRoute(probe)
	if err != nil {
		if isPathNotFound(err) {
			c.Next()
			return
		}
		abortContract(c, codeRouteInvalid, err.Error())
		return
	}

	reqInput := &openapi3filter.RequestValidationInput{
		Request:    probe,
		PathParams: params,
		Route:      route,
		Options:    skipAuthentication,
	}
	err = openapi3filter.ValidateRequest(c.Request.Context(), reqInput)
	// The filter drains the body and leaves a rewound copy on probe.
	c.Request.Body = probe.Body
	if err != nil {
		abortContract(c, codeRequestInvalid, err.Error())
		return
	}

	out := c.Writer
	capture := &capturedResponse{ResponseWriter: out}
	c.Writer = capture
	c.Next()
	c.Writer = out

	// A handler error nobody rendered is left for ErrorHandler.
	if !capture.Written() && len(c.Errors) > 0 {
		return
	}

	respInput := &openapi3filter.ResponseValidationInput{
		RequestValidationInput: reqInput,
		Status:                 capture.Status(),
		Header:                 capture.Header().Clone(),
		Options:                skipAuthentication,
	}
	if capture.body.Len() > 0 {
		respInput.SetBodyBytes(capture.body.Bytes())
	}
	if err := openapi3filter.ValidateResponse(c.Request.Context(), respInput); err != nil {
		logger.Error("OpenAPI response validation failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", capture.Status()),
			zap.Error(err),
		)
		capture.replace(http.StatusInternalServerError, gin.H{
			"code":    codeResponseInvalid,
			"message": responseInvalidMessage,
		})
	}

	if err := capture.flush(); err != nil {
		logger.Warn("flush validated response",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}
}

// probeRequest returns a shallow copy of req addressed by its contract path.
func (v *contractValidator) probeRequest(req *http.Request) *http.Request {
	probe := req.WithContext(req.Context())
	u := *req.URL
	u.Path = contractPath(v.basePath, u.Path)
	if u.RawPath != "" {
		u.RawPath = contractPath(v.basePath, u.RawPath)
	}
	probe.URL = &u
	return probe
}

func cleanBasePath(basePath string) string {
	basePath = strings.Trim(strings.TrimSpace(basePath), "/")
	if basePath == "" {
		return ""
	}
	return "/" + basePath
}

// contractPath strips basePath from path. Paths outside basePath are
// returned unchanged.
func contractPath(basePath, path string) string {
	switch {
	case path == "":
		return "/"
	case basePath == "":
		return path
	case path == basePath:
		return "/"
	}
	if rest, ok := strings.CutPrefix(path, basePath+"/"); ok {
		return "/" + rest
	}
	return path
}

func isPathNotFound(err error) bool {
	if errors.Is(err, routers.ErrPathNotFound) {
		return true
	}
	var routeErr *routers.RouteError
	if errors.As(err, &routeErr) {
		return routeErr.Reason == routers.ErrPathNotFound.Error()
	}
	return false
}

func abortContract(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"code":    code,
		"message": message,
	})
}

// capturedResponse holds status and body until the response is validated.
// Headers go straight to the wrapped writer's header map.
type capturedResponse struct {
	gin.ResponseWriter
	body   bytes.Buffer
	status int
}

func (w *capturedResponse) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
}

func (w *capturedResponse) WriteHeaderNow() {
	w.WriteHeader(http.StatusOK)
}

func (w *capturedResponse) Write(data []byte) (int, error) {
	w.WriteHeader(http.StatusOK)
	return w.body.Write(data)
}

func (w *capturedResponse) WriteString(s string) (int, error) {
	w.WriteHeader(http.StatusOK)
	return w.body.WriteString(s)
}

func (w *capturedResponse) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func (w *capturedResponse) Size() int { return w.body.Len() }

func (w *capturedResponse) Written() bool { return w.status != 0 }

func (w *capturedResponse) replace(status int, payload gin.H) {
	data, err := json.Marshal(payload)
	if err != nil {
		data = []byte(`{"code":"` + codeResponseInvalid + `","message":"` + responseInvalidMessage + `"}`)
	}
	w.status = status
	w.body.Reset()
	w.body.Write(data)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
}

func (w *capturedResponse) flush() error {
	w.ResponseWriter.WriteHeader(w.Status())
	w.ResponseWriter.WriteHeaderNow()
	if w.body.Len() == 0 {
		return nil
	}
	_, err := w.ResponseWriter.Write(w.body.Bytes())
	return err
}
