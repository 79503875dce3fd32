package handler

import (
	"net/http"

	"github.com/blues/trs/internal/logic"
	"github.com/blues/trs/internal/model"
	"github.com/gin-gonic/gin"
)

// 管理端请求用这个头声明管理员身份，白名单校验在 logic 层统一做
const adminAddressHeader = "X-Admin-Address"

// AdminHandler 管理端领取处理器
type AdminHandler struct {
	claimLogic *logic.ClaimLogic
}

// NewAdminHandler 创建管理端处理器
func NewAdminHandler(claimLogic *logic.ClaimLogic) *AdminHandler {
	return &AdminHandler{claimLogic: claimLogic}
}

// AddClaim 管理员给钱包发放两步领取（special）
func (h *AdminHandler) AddClaim(c *gin.Context) {
	kind := model.ClaimKind(c.Param("kind"))
	if !kind.Valid() {
		ErrorResponse(c, http.StatusBadRequest, "invalid claim kind")
		return
	}

	var req AdminAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	record, err := h.claimLogic.AdminAdd(c.Request.Context(), kind, req.Wallet, c.GetHeader(adminAddressHeader))
	if err != nil {
		WriteError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "claim granted", toClaimRecordResponse(record))
}

// AdvanceClaim 管理员推进领取状态
func (h *AdminHandler) AdvanceClaim(c *gin.Context) {
	kind := model.ClaimKind(c.Param("kind"))
	if !kind.Valid() {
		ErrorResponse(c, http.StatusBadRequest, "invalid claim kind")
		return
	}

	var req AdminAdvanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	record, err := h.claimLogic.AdminAdvance(c.Request.Context(), kind, c.Param("id"),
		c.GetHeader(adminAddressHeader), model.ClaimStatus(req.TargetStatus))
	if err != nil {
		WriteError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "claim advanced", toClaimRecordResponse(record))
}

// ListClaims 管理员按状态浏览领取记录
func (h *AdminHandler) ListClaims(c *gin.Context) {
	kind := model.ClaimKind(c.Param("kind"))
	if !kind.Valid() {
		ErrorResponse(c, http.StatusBadRequest, "invalid claim kind")
		return
	}

	status := model.ClaimStatus(c.DefaultQuery("status", string(model.ClaimStatusClaimed)))
	records, err := h.claimLogic.AdminList(c.Request.Context(), kind, status, c.GetHeader(adminAddressHeader))
	if err != nil {
		WriteError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", GetClaimsResponse{Records: toClaimRecordResponses(records)})
}
