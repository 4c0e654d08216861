// internal/storage/codec.go
//
// 定義「資料持久化層 (storage layer)」的序列化格式。
// 帳戶：一行一戶、逗號分隔的 11 欄文字（人工可檢視、可手動修復），
// 欄位順序固定：name, account number, routing code, mobile, balance,
// encoded pin, security question, security answer, email, address, portrait。
// 交易日誌：JSON 物件，鍵為帳號（字串）、值為已格式化的紀錄行陣列。
//
// 跳脫規則：portrait 欄（base64 資料可能含逗號）在寫入前以保留記號
// 取代所有逗號、讀取時還原。其餘自由文字欄位「不」跳脫——此為既有
// 格式的已知限制，為相容既存資料而原樣保留。
//
// ───────────────────────────────
// 設計理念：
// - **獨立層 (storage)**：不關心商業邏輯，只處理編解碼。
// - **部分失敗容忍**：單行毀損只跳過該行，不中止整批載入。
// - **確定性輸出**：同一狀態編碼結果恆相同，便於差異比對與備份。
// ───────────────────────────────
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"atmledger/internal/bank"
)

// fieldDelimiter 為帳戶記錄的欄位分隔字元。
const fieldDelimiter = ","

// escapedDelimiter 為 portrait 欄內逗號的保留跳脫記號。
const escapedDelimiter = "[COMMA]"

// minAccountFields 為一行帳戶記錄的最少欄位數（portrait 可省略）。
const minAccountFields = 10

// ErrBadRecord 代表單行帳戶記錄格式毀損。
// 載入端應跳過該行並記錄缺陷，而非中止整批載入。
var ErrBadRecord = errors.New("malformed account record")

// EncodeAccount 將帳戶編碼為單行記錄。
// 最後存取時間不落地：載入本身即視為一次存取，解碼時重新取時。
func EncodeAccount(a bank.Account) string {
	portrait := strings.ReplaceAll(a.Portrait, fieldDelimiter, escapedDelimiter)
	fields := []string{
		a.Name,
		strconv.FormatInt(a.AccountNumber, 10),
		a.RoutingCode,
		a.MobileNumber,
		a.Balance.String(),
		strconv.Itoa(a.EncodedPin),
		a.SecurityQuestion,
		a.SecurityAnswer,
		a.Email,
		a.Address,
		portrait,
	}
	return strings.Join(fields, fieldDelimiter)
}

// DecodeAccount 為 EncodeAccount 的反函式。
// 欄位不足 10 個回傳 ErrBadRecord；第 11 欄起全數併回 portrait
// 並還原跳脫。解碼成功即刷新最後存取時間（載入視為存取）。
func DecodeAccount(line string) (bank.Account, error) {
	var a bank.Account
	tokens := strings.Split(line, fieldDelimiter)
	if len(tokens) < minAccountFields {
		return a, fmt.Errorf("%w: %d fields, want >= %d", ErrBadRecord, len(tokens), minAccountFields)
	}

	number, err := strconv.ParseInt(tokens[1], 10, 64)
	if err != nil {
		return a, fmt.Errorf("%w: bad account number %q", ErrBadRecord, tokens[1])
	}
	balance, err := decimal.NewFromString(tokens[4])
	if err != nil {
		return a, fmt.Errorf("%w: bad balance %q", ErrBadRecord, tokens[4])
	}
	encodedPin, err := strconv.Atoi(tokens[5])
	if err != nil {
		return a, fmt.Errorf("%w: bad encoded pin %q", ErrBadRecord, tokens[5])
	}

	portrait := ""
	if len(tokens) > minAccountFields {
		portrait = strings.ReplaceAll(
			strings.Join(tokens[minAccountFields:], fieldDelimiter),
			escapedDelimiter, fieldDelimiter)
	}

	a = bank.Account{
		Name:             tokens[0],
		AccountNumber:    number,
		RoutingCode:      tokens[2],
		MobileNumber:     tokens[3],
		Balance:          balance,
		EncodedPin:       encodedPin,
		SecurityQuestion: tokens[6],
		SecurityAnswer:   tokens[7],
		Email:            tokens[8],
		Address:          tokens[9],
		Portrait:         portrait,
		LastAccess:       time.Now().Truncate(time.Second),
	}
	return a, nil
}

// EncodeAccounts 將全部帳戶編碼為換行分隔的單一 blob。
func EncodeAccounts(accts []bank.Account) string {
	lines := make([]string, 0, len(accts))
	for _, a := range accts {
		lines = append(lines, EncodeAccount(a))
	}
	return strings.Join(lines, "\n")
}

// DecodeAccounts 解碼帳戶 blob；毀損的行逐行回報於 defects，
// 其餘照常載入（部分失敗容忍）。空白行直接略過。
func DecodeAccounts(blob string) (accts []bank.Account, defects []error) {
	if strings.TrimSpace(blob) == "" {
		return nil, nil
	}
	for i, line := range strings.Split(blob, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		a, err := DecodeAccount(line)
		if err != nil {
			defects = append(defects, fmt.Errorf("line %d: %w", i+1, err))
			continue
		}
		accts = append(accts, a)
	}
	return accts, defects
}

// EncodeHistory 將交易日誌編碼為 JSON 物件：
// 鍵為帳號（字串）、值為依序輸出的紀錄行陣列。
// 使用縮排格式輸出，方便人類閱讀（例如除錯或手動檢視）。
func EncodeHistory(history map[int64][]bank.Record) ([]byte, error) {
	out := make(map[string][]string, len(history))
	for account, recs := range history {
		lines := make([]string, 0, len(recs))
		for _, r := range recs {
			lines = append(lines, r.Line())
		}
		out[strconv.FormatInt(account, 10)] = lines
	}
	return json.MarshalIndent(out, "", "  ")
}

// DecodeHistory 為 EncodeHistory 的反函式：順序保留、逐行還原紀錄。
// 鍵或單行解析失敗回報於 defects 並跳過；JSON 本體毀損才回傳 err。
func DecodeHistory(data []byte) (history map[int64][]bank.Record, defects []error, err error) {
	if len(data) == 0 {
		return map[int64][]bank.Record{}, nil, nil
	}
	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("decode history: %w", err)
	}
	history = make(map[int64][]bank.Record, len(raw))
	for key, lines := range raw {
		account, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			defects = append(defects, fmt.Errorf("history key %q: %w", key, err))
			continue
		}
		recs := make([]bank.Record, 0, len(lines))
		for _, line := range lines {
			r, err := bank.ParseRecordLine(line)
			if err != nil {
				defects = append(defects, fmt.Errorf("account %d: %w", account, err))
				continue
			}
			recs = append(recs, r)
		}
		history[account] = recs
	}
	return history, defects, nil
}
