package http

import (
	"errors"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"webnova-quiz-service/internal/domain"
)

type errorBody struct {
	Error string `json:"error"`
}

var registerTagNames sync.Once

// useJSONFieldNames makes validation errors report the client-facing field names.
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
	})
}

// writeError maps err onto its status and a public message. Internal causes are logged, not returned.
func writeError(c *gin.Context, log *zap.Logger, err error) {
	kind := domain.KindOf(err)
	status := kind.HTTPStatus()
	if status >= 500 {
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.String("kind", kind.String()),
			zap.Error(err))
	}
	c.AbortWithStatusJSON(status, errorBody{Error: domain.PublicMessage(err)})
}

// bindJSON decodes the body into obj. Missing required fields are reported together.
func bindJSON(c *gin.Context, obj any) error {
	err := c.ShouldBindJSON(obj)
	if errors.Is(err, io.EOF) {
		// An empty body is treated as an empty object.
		err = binding.Validator.ValidateStruct(obj)
	}
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.Errorf(domain.KindBadRequest, "Invalid JSON body")
	}
	var missing, invalid []string
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
		} else {
			invalid = append(invalid, fe.Field())
		}
	}
	if len(missing) > 0 {
		return domain.Errorf(domain.KindBadRequest, "Missing fields: %s", strings.Join(missing, ", "))
	}
	return domain.Errorf(domain.KindBadRequest, "Invalid fields: %s", strings.Join(invalid, ", "))
}
