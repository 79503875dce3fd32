package social

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/blues/trs/internal/claim"
	"github.com/blues/trs/internal/config"
	"github.com/blues/trs/internal/logger"
)

// 支持的外部校验名
const (
	CheckTwitterLike    = "twitter_like"
	CheckTwitterFollow  = "twitter_follow"
	CheckTelegramMember = "telegram_member"
)

// Service 外部社交校验协作方。OAuth 授权流程和机器人轮询由各自的服务负责，
// 这里只调用它们暴露的校验接口。实现 verify.ExternalService
type Service struct {
	httpClient      *http.Client
	twitterBaseUrl  string
	telegramBaseUrl string
	telegramChatId  string
}

// New 创建外部校验服务
func New(cfg config.SocialConfig) *Service {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Service{
		httpClient:      &http.Client{Timeout: timeout},
		twitterBaseUrl:  cfg.TwitterBaseUrl,
		telegramBaseUrl: cfg.TelegramBaseUrl,
		telegramChatId:  cfg.TelegramChatId,
	}
}

// Verify 按校验名分发。成功返回凭证ID；不满足返回 PreconditionError；
// 对端限流或不可用返回 claim.ErrTemporary
func (s *Service) Verify(ctx context.Context, check, subject string) (string, error) {
	switch check {
	case CheckTelegramMember:
		return s.telegramMember(ctx, subject)
	case CheckTwitterLike, CheckTwitterFollow:
		return s.twitterCheck(ctx, check, subject)
	default:
		return "", fmt.Errorf("unknown verification check: %s", check)
	}
}

// telegramMember 查询用户是否在指定群里
func (s *Service) telegramMember(ctx context.Context, userId string) (string, error) {
	endpoint := fmt.Sprintf("%s/getChatMember?chat_id=%s&user_id=%s",
		s.telegramBaseUrl, url.QueryEscape(s.telegramChatId), url.QueryEscape(userId))

	var result struct {
		Ok     bool `json:"ok"`
		Result struct {
			Status string `json:"status"`
		} `json:"result"`
	}
	if err := s.getJson(ctx, endpoint, &result); err != nil {
		return "", err
	}

	switch result.Result.Status {
	case "member", "administrator", "creator":
		return fmt.Sprintf("telegram:%s:%s", s.telegramChatId, userId), nil
	}
	return "", &claim.PreconditionError{
		Reason:   "not a member of the Telegram group",
		Guidance: "join the Telegram group and try again",
	}
}

// twitterCheck 调用 Twitter 校验网关确认点赞/关注
func (s *Service) twitterCheck(ctx context.Context, check, subject string) (string, error) {
	endpoint := fmt.Sprintf("%s/verify?check=%s&subject=%s",
		s.twitterBaseUrl, url.QueryEscape(check), url.QueryEscape(subject))

	var result struct {
		Verified bool   `json:"verified"`
		Id       string `json:"id"`
	}
	if err := s.getJson(ctx, endpoint, &result); err != nil {
		return "", err
	}

	if !result.Verified {
		return "", &claim.PreconditionError{
			Reason:   "twitter action not found",
			Guidance: "please like or follow the tweet and try again",
		}
	}
	return result.Id, nil
}

func (s *Service) getJson(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		logger.Warn("External verification request failed: %v", err)
		return fmt.Errorf("%w: %v", claim.ErrTemporary, err)
	}
	defer resp.Body.Close()

	// 限流和服务端错误都算临时失败，不能据此拒绝用户
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return fmt.Errorf("%w: upstream returned %d", claim.ErrTemporary, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected verification response: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", claim.ErrTemporary, err)
	}
	return nil
}
