package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sentiment-health/api-go/reports"
	"github.com/sirupsen/logrus"
)

type ExportController struct {
	Reporter *reports.Reporter
	Log      *logrus.Logger
}

func NewExportController(reporter *reports.Reporter, log *logrus.Logger) *ExportController {
	return &ExportController{Reporter: reporter, Log: log}
}

func (ec *ExportController) Export(c *gin.Context) {
	format := c.DefaultQuery("format", reports.FormatCSV)
	scope := c.DefaultQuery("scope", reports.ScopeAll)

	if format != reports.FormatCSV && format != reports.FormatXLSX {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be csv or xlsx", "success": false})
		return
	}
	if scope != reports.ScopeAll && scope != reports.ScopeReviewed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scope must be all or reviewed", "success": false})
		return
	}

	rows, err := ec.Reporter.ExportRows(c.Request.Context(), scope)
	if err != nil {
		ec.Log.WithError(err).Error("export query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export data", "success": false})
		return
	}

	var buf bytes.Buffer
	contentType, err := reports.Write(&buf, format, rows)
	if err != nil {
		ec.Log.WithError(err).Error("export encoding failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export data", "success": false})
		return
	}

	filename := fmt.Sprintf("sentiment_%s_%s.%s", scope, time.Now().Format("20060102"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
