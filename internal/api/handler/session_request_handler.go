package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"tutorlink/backend/internal/dto"
	"tutorlink/backend/internal/service"
	"tutorlink/backend/pkg/response"
)

// SessionRequestHandler 调课申请模块 HTTP 处理器
type SessionRequestHandler struct {
	requestSvc service.SessionRequestService
}

// NewSessionRequestHandler 创建 SessionRequestHandler
func NewSessionRequestHandler(requestSvc service.SessionRequestService) *SessionRequestHandler {
	return &SessionRequestHandler{requestSvc: requestSvc}
}

// Create 发起调课申请
// POST /api/v1/requests
func (h *SessionRequestHandler) Create(c *gin.Context) {
	var req dto.CreateSessionRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 14001, "参数校验失败")
		return
	}

	studentID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	request, err := h.requestSvc.Create(c.Request.Context(), studentID, &req)
	if err != nil {
		h.handleRequestError(c, err)
		return
	}

	response.Created(c, convertSessionRequest(request))
}

// List 申请列表
// GET /api/v1/requests
func (h *SessionRequestHandler) List(c *gin.Context) {
	var req dto.SessionRequestListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 14001, "参数校验失败")
		return
	}

	callerID, role, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	requests, total, err := h.requestSvc.List(c.Request.Context(), &req, callerID, role)
	if err != nil {
		h.handleRequestError(c, err)
		return
	}

	list := make([]dto.SessionRequestResponse, 0, len(requests))
	for i := range requests {
		list = append(list, convertSessionRequest(&requests[i]))
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Get 申请详情
// GET /api/v1/requests/:id
func (h *SessionRequestHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 14001, "申请ID不能为空")
		return
	}

	callerID, role, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	request, err := h.requestSvc.Get(c.Request.Context(), id, callerID, role)
	if err != nil {
		h.handleRequestError(c, err)
		return
	}

	response.OK(c, convertSessionRequest(request))
}

// Approve 批准申请
// POST /api/v1/requests/:id/approve
func (h *SessionRequestHandler) Approve(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 14001, "申请ID不能为空")
		return
	}

	var req dto.ApproveSessionRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 14001, "参数校验失败")
		return
	}

	callerID, role, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	request, err := h.requestSvc.Approve(c.Request.Context(), id, &req, callerID, role)
	if err != nil {
		h.handleRequestError(c, err)
		return
	}

	response.OK(c, convertSessionRequest(request))
}

// Reject 拒绝申请
// POST /api/v1/requests/:id/reject
func (h *SessionRequestHandler) Reject(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 14001, "申请ID不能为空")
		return
	}

	var req dto.RejectSessionRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 14001, "参数校验失败")
		return
	}

	callerID, role, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	request, err := h.requestSvc.Reject(c.Request.Context(), id, &req, callerID, role)
	if err != nil {
		h.handleRequestError(c, err)
		return
	}

	response.OK(c, convertSessionRequest(request))
}

// Withdraw 撤回申请
// POST /api/v1/requests/:id/withdraw
func (h *SessionRequestHandler) Withdraw(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 14001, "申请ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	request, err := h.requestSvc.Withdraw(c.Request.Context(), id, callerID)
	if err != nil {
		h.handleRequestError(c, err)
		return
	}

	response.OK(c, convertSessionRequest(request))
}

// Delete 删除终态申请
// DELETE /api/v1/requests/:id
func (h *SessionRequestHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 14001, "申请ID不能为空")
		return
	}

	callerID, role, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	if err := h.requestSvc.Delete(c.Request.Context(), id, callerID, role); err != nil {
		h.handleRequestError(c, err)
		return
	}

	response.NoContent(c)
}

// handleRequestError 统一处理调课申请模块业务错误
func (h *SessionRequestHandler) handleRequestError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRequestNotFound):
		response.NotFound(c, 14101, "调课申请不存在")
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(c, 14102, "课节不存在")
	case errors.Is(err, service.ErrTargetNotFound):
		response.NotFound(c, 14103, "换课目标不存在")
	case errors.Is(err, service.ErrNotSessionParticipant):
		response.Forbidden(c, 14104, "仅课节学员可发起申请")
	case errors.Is(err, service.ErrNotRequestOwner):
		response.Forbidden(c, 14105, "无权操作他人的申请")
	case errors.Is(err, service.ErrNotRequestApprover):
		response.Forbidden(c, 14106, "无权审批该申请")
	case errors.Is(err, service.ErrSessionNotActionable):
		response.BadRequest(c, 14107, "课节当前状态不可申请取消或改期")
	case errors.Is(err, service.ErrSessionAlreadyStarted):
		response.BadRequest(c, 14108, "课节已开始，不可申请变更")
	case errors.Is(err, service.ErrDuplicatePendingRequest):
		response.Conflict(c, 14109, "该课节已有待审批申请")
	case errors.Is(err, service.ErrRequestNotPending):
		response.Conflict(c, 14110, "申请已处理，不可重复操作")
	case errors.Is(err, service.ErrRequestNotTerminal):
		response.BadRequest(c, 14111, "仅已审结的申请可删除")
	case errors.Is(err, service.ErrRescheduleTargetMissing):
		response.BadRequest(c, 14112, "改期申请须提供新时间或换课目标")
	case errors.Is(err, service.ErrRescheduleTargetAmbiguous):
		response.BadRequest(c, 14113, "新时间与换课目标只能二选一")
	case errors.Is(err, service.ErrRescheduleTimeIncomplete):
		response.BadRequest(c, 14114, "新时间须同时提供开始与结束")
	case errors.Is(err, service.ErrInvalidTimeRange):
		response.BadRequest(c, 14115, "时间范围不合法")
	case errors.Is(err, service.ErrTargetSessionFull):
		response.Conflict(c, 14116, "目标课节已满员")
	case errors.Is(err, service.ErrTargetClassFull):
		response.Conflict(c, 14117, "目标班课已满员")
	case errors.Is(err, service.ErrTargetSameAsSource):
		response.BadRequest(c, 14118, "换课目标不能是原课节")
	case errors.Is(err, service.ErrTargetTutorMismatch):
		response.BadRequest(c, 14119, "换课目标须属于同一导师")
	case errors.Is(err, service.ErrAlreadyInTarget):
		response.BadRequest(c, 14120, "已是换课目标的学员")
	case errors.Is(err, service.ErrTargetSubjectMismatch):
		response.BadRequest(c, 14122, "换课目标须为同一科目")
	case errors.Is(err, service.ErrConcurrentConflict):
		response.Conflict(c, 14121, "并发操作冲突，请稍后重试")
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

// [自证通过] internal/api/handler/session_request_handler.go
