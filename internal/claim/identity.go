package claim

import (
	"net"
	"regexp"
	"strings"

	"github.com/blues/trs/internal/model"
)

var walletPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// NormalizeWallet 校验并归一化钱包地址：严格 0x+40 位十六进制，统一转小写
func NormalizeWallet(wallet string) (string, error) {
	wallet = strings.TrimSpace(wallet)
	if !walletPattern.MatchString(wallet) {
		return "", &InvalidIdentityError{Field: "wallet", Value: wallet}
	}
	return strings.ToLower(wallet), nil
}

// NormalizeTxHash 校验交易哈希格式（0x+64 位十六进制），统一转小写
func NormalizeTxHash(txHash string) (string, error) {
	txHash = strings.TrimSpace(txHash)
	if len(txHash) != 66 || !strings.HasPrefix(txHash, "0x") {
		return "", &InvalidIdentityError{Field: "tx_hash", Value: txHash}
	}
	for _, r := range txHash[2:] {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') && (r < 'A' || r > 'F') {
			return "", &InvalidIdentityError{Field: "tx_hash", Value: txHash}
		}
	}
	return strings.ToLower(txHash), nil
}

// ClientIp 从转发头链路提取客户端 IP，取第一跳；没有转发头时回退到连接层地址
func ClientIp(forwardedFor, remoteAddr string) string {
	if forwardedFor != "" {
		parts := strings.Split(forwardedFor, ",")
		ip := strings.TrimSpace(parts[0])
		if ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}

// SubjectKey 拼接领取唯一键，各部分按 kind 的配置决定
func SubjectKey(kind model.ClaimKind, parts ...string) string {
	return string(kind) + ":" + strings.Join(parts, ":")
}
