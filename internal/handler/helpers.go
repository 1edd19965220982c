package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	pkgerrors "github.com/itsJino/slainte-llm/internal/pkg/errors"
)

// failJSON exposes a fault to operators: diagnostic endpoints answer with
// the raw message instead of folding errors into the body. Input faults map
// to 400, everything else to 500.
func failJSON(c *gin.Context, err error) {
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	status := http.StatusInternalServerError
	if pkgerrors.IsInvalid(err) {
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
