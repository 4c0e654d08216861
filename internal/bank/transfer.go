// internal/bank/transfer.go
//
// 跨帳戶轉帳協定。轉帳為「單一臨界區內」的原子操作：
// 1) 解析收款人（帳號或名稱）→ 2) 檢核本人／金額／餘額 →
// 3) 同步扣款與入帳 → 4) 同步雙邊日誌。
// 任一步驟失敗皆不會改變任何帳戶狀態，雙方餘額總和恆定。

package bank

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// RecipientKind 表示收款人識別方式。
type RecipientKind int

const (
	// ByAccountNumber 以帳號指定收款人。
	ByAccountNumber RecipientKind = iota
	// ByName 以名稱指定收款人（不分大小寫，取第一個相符者）。
	ByName
)

// ParseRecipientKind 解析傳輸層送來的識別方式字串（"account" / "name"）。
func ParseRecipientKind(s string) (RecipientKind, error) {
	switch strings.ToLower(s) {
	case "", "account":
		return ByAccountNumber, nil
	case "name":
		return ByName, nil
	default:
		return 0, fmt.Errorf("unknown recipient kind %q", s)
	}
}

// TransferReceipt 為成功轉帳的結果：總結訊息、雙邊紀錄文字與最新快照。
// 傳輸層可直接轉繪，無需回查。
type TransferReceipt struct {
	Message  string   `json:"message"`
	Outgoing string   `json:"outgoing"`
	Incoming string   `json:"incoming"`
	From     *Account `json:"from"`
	To       *Account `json:"to"`
}

// Transfer 自 from 帳戶轉出 amount 至指定收款人。
// 檢核順序固定：收款人不存在 → 本人轉帳 → 金額非法 → 餘額不足；
// 商業規則失敗一律以領域錯誤回報，不會 panic。
func (s *Store) Transfer(from int64, recipient string, by RecipientKind, amount decimal.Decimal) (*TransferReceipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sender, ok := s.accts[from]
	if !ok {
		return nil, ErrNotFound
	}

	var to *Account
	switch by {
	case ByAccountNumber:
		n, err := strconv.ParseInt(strings.TrimSpace(recipient), 10, 64)
		if err == nil {
			to = s.accts[n]
		}
	case ByName:
		to = s.findByNameLocked(recipient)
	}
	if to == nil {
		return nil, ErrNotFound
	}
	if to.AccountNumber == sender.AccountNumber {
		return nil, ErrSameAccount
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrBadAmount
	}
	if amount.GreaterThan(sender.Balance) {
		return nil, ErrInsufficient
	}

	sender.Balance = sender.Balance.Sub(amount)
	to.Balance = to.Balance.Add(amount)

	out := fmt.Sprintf("Transferred %s to %s (Acc: %d, Routing: %s)",
		amount.StringFixed(2), to.Name, to.AccountNumber, to.RoutingCode)
	in := fmt.Sprintf("Received %s from %s (Acc: %d, Routing: %s)",
		amount.StringFixed(2), sender.Name, sender.AccountNumber, sender.RoutingCode)

	// 收款方若尚無紀錄序列，Append 會自動建立。
	s.ledger.Append(sender.AccountNumber, out, sender.Balance)
	s.ledger.Append(to.AccountNumber, in, to.Balance)

	fromCp, toCp := *sender, *to
	return &TransferReceipt{
		Message:  "Transfer successful!",
		Outgoing: out,
		Incoming: in,
		From:     &fromCp,
		To:       &toCp,
	}, nil
}
