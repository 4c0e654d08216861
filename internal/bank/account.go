// Package bank 定義核心領域模型與業務規則。
// 本檔定義 Account（客戶帳戶實體）：純查詢方法（PIN 驗證、安全問答驗證、
// 個人資料文字輸出）皆置於此；所有「會改變狀態」的操作一律經由 Store
// 在臨界區內執行，Account 本身不含鎖或儲存細節。

package bank

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TimeLayout 為全系統統一的時間戳格式（秒級精度）。
// 交易紀錄與個人資料顯示皆採用此格式。
const TimeLayout = "2006-01-02 15:04:05"

// Account represents one customer account.
// EncodedPin 與 SecurityAnswer 不輸出至 JSON，避免透過 API 洩漏憑證。
type Account struct {
	Name             string          `json:"name"`
	AccountNumber    int64           `json:"account_number"`
	RoutingCode      string          `json:"routing_code"`
	MobileNumber     string          `json:"mobile_number"`
	Balance          decimal.Decimal `json:"balance"`
	EncodedPin       int             `json:"-"`
	SecurityQuestion string          `json:"security_question"`
	SecurityAnswer   string          `json:"-"`
	Email            string          `json:"email"`
	Address          string          `json:"address"`
	LastAccess       time.Time       `json:"last_access"`
	Portrait         string          `json:"portrait,omitempty"`
}

// keyComponent 回傳此帳戶的 PIN 金鑰成分（帳號末三碼）。
func (a *Account) keyComponent() int {
	return int(a.AccountNumber % 1000)
}

// DecodedPin 還原此帳戶的明文 PIN；純函式，無任何副作用。
func (a *Account) DecodedPin() int {
	return DecodePin(a.EncodedPin, a.keyComponent())
}

// VerifyPin 比對輸入的 PIN 是否正確。
func (a *Account) VerifyPin(candidate int) bool {
	return a.DecodedPin() == candidate
}

// VerifySecurityAnswer 以不分大小寫方式比對安全問題答案。
func (a *Account) VerifySecurityAnswer(candidate string) bool {
	return strings.EqualFold(candidate, a.SecurityAnswer)
}

// touch 更新最後存取時間（秒級精度）。僅供 Store 於臨界區內呼叫。
func (a *Account) touch() {
	a.LastAccess = time.Now().Truncate(time.Second)
}

// ProfileText 輸出帳戶的文字版個人資料。
// withBalance=false 時隱藏餘額（供權限較低的檢視情境使用）。
func (a *Account) ProfileText(withBalance bool) string {
	var b strings.Builder
	if a.Portrait != "" {
		b.WriteString("[IMAGE]\n")
	}
	b.WriteString("--- User Profile ---\n")
	fmt.Fprintf(&b, " Name: %s\n", a.Name)
	fmt.Fprintf(&b, " Account Number: %d\n", a.AccountNumber)
	fmt.Fprintf(&b, " Routing Code: %s\n", a.RoutingCode)
	fmt.Fprintf(&b, " Mobile Number: %s\n", a.MobileNumber)
	fmt.Fprintf(&b, " Email: %s\n", a.Email)
	fmt.Fprintf(&b, " Address: %s\n", a.Address)
	if withBalance {
		fmt.Fprintf(&b, " Balance: %s\n", a.Balance.StringFixed(2))
	}
	fmt.Fprintf(&b, " Last Access: %s\n", a.LastAccess.Format(TimeLayout))
	b.WriteString("-------------------------")
	return b.String()
}
