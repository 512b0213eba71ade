package routes

import (
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"eventhub/models"
)

var fieldNamesOnce sync.Once

// useJSONFieldNames makes validation details report json names (eventId,
// not EventID).
func useJSONFieldNames() {
	fieldNamesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

func fail(c *gin.Context, err error) { _ = c.Error(err) }

func bindFailed(c *gin.Context, err error) { _ = c.Error(err).SetType(gin.ErrorTypeBind) }

// pathID parses the :id parameter; on failure it records a validation error.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, models.Validation("Invalid id"))
		return uuid.Nil, false
	}
	return id, true
}
