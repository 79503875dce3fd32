package handler

import (
	"net/http"

	"github.com/blues/trs/internal/claim"
	"github.com/blues/trs/internal/logic"
	"github.com/blues/trs/internal/model"
	"github.com/gin-gonic/gin"
)

// ClaimHandler 领取处理器
type ClaimHandler struct {
	claimLogic *logic.ClaimLogic
}

// NewClaimHandler 创建领取处理器
func NewClaimHandler(claimLogic *logic.ClaimLogic) *ClaimHandler {
	return &ClaimHandler{claimLogic: claimLogic}
}

// SubmitClaim 用户发起领取
func (h *ClaimHandler) SubmitClaim(c *gin.Context) {
	kind := model.ClaimKind(c.Param("kind"))
	if !kind.Valid() {
		ErrorResponse(c, http.StatusBadRequest, "invalid claim kind")
		return
	}

	var req SubmitClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	record, err := h.claimLogic.Submit(c.Request.Context(), logic.ClaimRequest{
		Kind:         kind,
		Wallet:       req.Wallet,
		Signature:    req.Signature,
		TxHash:       req.TxHash,
		Amount:       req.Amount,
		TelegramId:   req.TelegramId,
		ForwardedFor: c.GetHeader("X-Forwarded-For"),
		RemoteAddr:   c.Request.RemoteAddr,
	})
	if err != nil {
		WriteError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "claim recorded", toClaimRecordResponse(record))
}

// GetClaimStatus 查询领取资格
func (h *ClaimHandler) GetClaimStatus(c *gin.Context) {
	kind := model.ClaimKind(c.Param("kind"))
	if !kind.Valid() {
		ErrorResponse(c, http.StatusBadRequest, "invalid claim kind")
		return
	}

	wallet := c.Query("wallet")
	result, err := h.claimLogic.Status(c.Request.Context(), kind, wallet)
	if err != nil {
		WriteError(c, err)
		return
	}

	resp := ClaimStatusResponse{Eligible: result.Eligible}
	if !result.Eligible {
		resp.Record = toClaimRecordResponse(result.Record)
		resp.RetryAfter = claim.FormatRemaining(result.RetryAfter)
	}
	SuccessResponse(c, http.StatusOK, "", resp)
}
