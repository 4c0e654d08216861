// internal/bank/errors.go
//
// 本檔集中定義「領域錯誤（domain errors）」。
// 這些錯誤屬於商業邏輯層級（非系統錯誤），一律以回傳值回報、就地回復，
// 絕不終止行程；上層 HTTP handler 會將其轉換成適當的 HTTP 狀態碼。
// 統一集中管理錯誤類別能確保 API 回傳行為一致、方便測試與維護。

package bank

import "errors"

var (
	// ErrNotFound 代表帳戶不存在（含轉帳收款人查無）。
	// 對應 HTTP 狀態碼 404 Not Found。
	ErrNotFound = errors.New("account not found")

	// ErrBadAmount 代表金額非法（<= 0）。
	// 對應 HTTP 狀態碼 400 Bad Request。
	ErrBadAmount = errors.New("amount must be > 0")

	// ErrInsufficient 代表餘額不足，導致提款或轉帳失敗。
	// 對應 HTTP 狀態碼 409 Conflict。
	ErrInsufficient = errors.New("insufficient balance")

	// ErrSameAccount 代表轉帳收款人即為付款人本人。
	// 對應 HTTP 狀態碼 400 Bad Request。
	ErrSameAccount = errors.New("cannot transfer to your own account")

	// ErrWrongPin 代表 PIN 驗證失敗。
	// 對應 HTTP 狀態碼 403 Forbidden。
	ErrWrongPin = errors.New("incorrect pin")

	// ErrPinRange 代表 PIN 不是 1000–9999 的四位數。
	ErrPinRange = errors.New("pin must be a 4-digit number")

	// ErrMobileMismatch 代表更新手機號時舊號碼比對失敗。
	ErrMobileMismatch = errors.New("incorrect old mobile number")

	// ErrBadMobile 代表手機號不是恰好十位數字。
	ErrBadMobile = errors.New("mobile number must be exactly 10 digits")

	// ErrWrongAnswer 代表安全問題答案錯誤（忘記 PIN 流程）。
	// 對應 HTTP 狀態碼 403 Forbidden。
	ErrWrongAnswer = errors.New("incorrect security answer")

	// ErrNegativeBalance 代表開戶初始餘額為負。
	ErrNegativeBalance = errors.New("initial balance cannot be negative")

	// ErrMissingField 代表開戶必填欄位缺漏。
	ErrMissingField = errors.New("all required fields must be provided")

	// ErrSessionLocked 代表 PIN 驗證會話已因連續錯誤而鎖定。
	// 對應 HTTP 狀態碼 423 Locked。
	ErrSessionLocked = errors.New("too many incorrect attempts")
)
