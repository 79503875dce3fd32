package handler

import (
	"time"

	"github.com/blues/trs/internal/model"
)

// 通用响应结构
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// SubmitClaimRequest 用户领取请求体
type SubmitClaimRequest struct {
	Wallet     string `json:"wallet" binding:"required"`
	Signature  string `json:"signature"`
	TxHash     string `json:"tx_hash"`
	Amount     string `json:"amount"`
	TelegramId string `json:"telegram_id"`
}

// AdminAddRequest 管理员发放请求体
type AdminAddRequest struct {
	Wallet string `json:"wallet" binding:"required"`
}

// AdminAdvanceRequest 管理员推进状态请求体
type AdminAdvanceRequest struct {
	TargetStatus string `json:"target_status" binding:"required"`
}

// ClaimRecordResponse 领取记录响应模型
type ClaimRecordResponse struct {
	Id           string     `json:"id"`
	Kind         string     `json:"kind"`
	Wallet       string     `json:"wallet"`
	Amount       string     `json:"amount"`
	RewardAmount string     `json:"rewardAmount"`
	Status       string     `json:"status"`
	ExternalRef  string     `json:"externalRef,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	ClaimedAt    *time.Time `json:"claimedAt,omitempty"`
	PaidAt       *time.Time `json:"paidAt,omitempty"`
}

// ClaimStatusResponse 资格查询响应
type ClaimStatusResponse struct {
	Eligible   bool                 `json:"eligible"`
	RetryAfter string               `json:"retryAfter,omitempty"`
	Record     *ClaimRecordResponse `json:"record,omitempty"`
}

// GetClaimsResponse 领取记录列表响应
type GetClaimsResponse struct {
	Records []ClaimRecordResponse `json:"records"`
}

func toClaimRecordResponse(record *model.ClaimRecord) *ClaimRecordResponse {
	if record == nil {
		return nil
	}
	resp := &ClaimRecordResponse{
		Id:           record.Id,
		Kind:         string(record.Kind),
		Wallet:       record.Wallet,
		Amount:       record.Amount.String(),
		RewardAmount: record.RewardAmount.String(),
		Status:       string(record.Status),
		CreatedAt:    record.CreatedAt,
		ClaimedAt:    record.ClaimedAt,
		PaidAt:       record.PaidAt,
	}
	if record.ExternalRef != nil {
		resp.ExternalRef = *record.ExternalRef
	}
	return resp
}

func toClaimRecordResponses(records []model.ClaimRecord) []ClaimRecordResponse {
	out := make([]ClaimRecordResponse, 0, len(records))
	for i := range records {
		out = append(out, *toClaimRecordResponse(&records[i]))
	}
	return out
}
