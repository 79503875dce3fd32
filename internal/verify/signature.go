package verify

import (
	"fmt"
	"strings"
	"time"

	"github.com/blues/trs/internal/claim"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// SignMessage 构造待签名的规范消息。消息里带上日历日，
// 同一个签名换一天重放就对不上了
func SignMessage(wallet string, day time.Time) string {
	return fmt.Sprintf("trs-claim:%s:%s", wallet, day.UTC().Format("2006-01-02"))
}

// Signature 校验钱包对当日领取消息的 personal_sign 签名，
// 恢复出的地址必须等于声称的钱包（大小写不敏感）
func (v *Verifier) Signature(wallet, sigHex string, day time.Time) error {
	sig, err := hexutil.Decode(sigHex)
	if err != nil || len(sig) != 65 {
		return &claim.InvalidIdentityError{Field: "signature", Value: sigHex}
	}

	// personal_sign 的 v 值通常是 27/28，恢复公钥需要 0/1
	if sig[64] >= 27 {
		sig[64] -= 27
	}

	hash := accounts.TextHash([]byte(SignMessage(wallet, day)))
	pub, err := crypto.SigToPub(hash, sig)
	if err != nil {
		return &claim.InvalidIdentityError{Field: "signature", Value: sigHex}
	}

	recovered := strings.ToLower(crypto.PubkeyToAddress(*pub).Hex())
	if recovered != strings.ToLower(wallet) {
		return &claim.PreconditionError{
			Reason:   "signature does not match wallet",
			Guidance: "sign today's claim message with the connected wallet and try again",
		}
	}
	return nil
}
