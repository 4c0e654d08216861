// internal/bank/ledger.go
//
// Ledger 為「帳號 → 交易紀錄序列」的 append-only 日誌。
// 生命週期：帳戶建立時初始化空序列；每次餘額異動（或 PIN / 手機號變更）
// 追加一筆；帳戶刪除時整段移除。序列只增不改，順序即插入順序。
// Ledger 由 Store 獨佔持有，本身不加鎖。

package bank

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// recordSeparator 為交易紀錄文字行的欄位分隔符。
// 引擎產生的描述文字不會包含此分隔符；若帳戶名稱刻意帶入 " | "，
// 行解析會失真（與帳戶序列化格式的未跳脫欄位屬同類既知限制）。
const recordSeparator = " | "

// balancePrefix 標記紀錄行尾端的餘額快照欄位。
const balancePrefix = "Balance: "

// Record 為單筆交易紀錄（值型別，建立後不再修改）。
type Record struct {
	Time        time.Time       `json:"time"`
	Description string          `json:"description"`
	Balance     decimal.Decimal `json:"balance"`
}

// Line 將紀錄輸出為單行文字，即持久化與人工檢視用的格式：
//
//	2006-01-02 15:04:05 | Cash Deposit: 500.00 | Balance: 1500.00
func (r Record) Line() string {
	return r.Time.Format(TimeLayout) + recordSeparator +
		r.Description + recordSeparator +
		balancePrefix + r.Balance.StringFixed(2)
}

// ParseRecordLine 為 Line 的反函式，供持久化層還原交易紀錄。
// 描述文字可能含分隔符以外的任意字元，因此以「第一段為時間戳、
// 最後一段為餘額」的方式切分，中段整併回描述。
func ParseRecordLine(line string) (Record, error) {
	var rec Record
	ts, rest, ok := strings.Cut(line, recordSeparator)
	if !ok {
		return rec, fmt.Errorf("malformed history line: %q", line)
	}
	at := strings.LastIndex(rest, recordSeparator+balancePrefix)
	if at < 0 {
		return rec, fmt.Errorf("malformed history line: %q", line)
	}
	desc := rest[:at]
	balText := rest[at+len(recordSeparator)+len(balancePrefix):]

	when, err := time.ParseInLocation(TimeLayout, ts, time.Local)
	if err != nil {
		return rec, fmt.Errorf("malformed history line: bad timestamp %q", ts)
	}
	bal, err := decimal.NewFromString(balText)
	if err != nil {
		return rec, fmt.Errorf("malformed history line: bad balance %q", balText)
	}
	rec = Record{Time: when, Description: desc, Balance: bal}
	return rec, nil
}

// Ledger 保存所有帳戶的交易紀錄序列。
type Ledger struct {
	entries map[int64][]Record
}

// NewLedger 建立空白日誌。
func NewLedger() *Ledger {
	return &Ledger{entries: make(map[int64][]Record)}
}

// Init 確保指定帳號存在一段（可為空的）紀錄序列。
// 帳戶建立時呼叫，使新帳戶在持久化輸出中即有對應條目。
func (l *Ledger) Init(account int64) {
	if _, ok := l.entries[account]; !ok {
		l.entries[account] = []Record{}
	}
}

// Append 以目前時間（秒級精度）追加一筆紀錄；序列不存在時自動建立。
func (l *Ledger) Append(account int64, description string, balance decimal.Decimal) {
	l.entries[account] = append(l.entries[account], Record{
		Time:        time.Now().Truncate(time.Second),
		Description: description,
		Balance:     balance,
	})
}

// History 回傳指定帳號的完整紀錄拷貝（最舊在前）。
// 無任何紀錄時回傳空序列而非錯誤。
func (l *Ledger) History(account int64) []Record {
	out := make([]Record, len(l.entries[account]))
	copy(out, l.entries[account])
	return out
}

// Remove 移除指定帳號的整段紀錄；僅於帳戶刪除時使用。
func (l *Ledger) Remove(account int64) {
	delete(l.entries, account)
}

// Export 匯出全部紀錄的深拷貝，供持久化層使用。
func (l *Ledger) Export() map[int64][]Record {
	out := make(map[int64][]Record, len(l.entries))
	for acc, recs := range l.entries {
		cp := make([]Record, len(recs))
		copy(cp, recs)
		out[acc] = cp
	}
	return out
}

// Restore 以持久化資料重建日誌，整體取代現有內容。
func (l *Ledger) Restore(entries map[int64][]Record) {
	l.entries = make(map[int64][]Record, len(entries))
	for acc, recs := range entries {
		cp := make([]Record, len(recs))
		copy(cp, recs)
		l.entries[acc] = cp
	}
}
