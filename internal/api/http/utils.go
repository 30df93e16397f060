package http

import (
	"errors"
	"fmt"
	"io"

	"github.com/GriffinCanCode/TestBench/backend/internal/utils"
	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
)

var errEmptyBody = errors.New("request body is required")

var jsonValidator = utils.DefaultJSONValidator()

// bindJSON reads a size-limited body and decodes it into v
func bindJSON(c *gin.Context, v interface{}) error {
	if c.Request.Body == nil {
		return errEmptyBody
	}

	limit := int64(jsonValidator.MaxSize())
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, limit+1))
	if err != nil {
		return fmt.Errorf("reading body: %w", err)
	}
	if len(data) == 0 {
		return errEmptyBody
	}
	if err := jsonValidator.ValidateJSON(data); err != nil {
		return err
	}
	if err := sonic.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}
