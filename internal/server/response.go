// internal/server/response.go
//
// 本檔負責統一 HTTP 回應格式與「領域錯誤 → HTTP 狀態碼」的對應。
// 透過集中管理 JSON 與錯誤輸出，可確保整個 REST API 的一致性與可維護性。
// 商業規則失敗一律以 {"error": "..."} 回傳對應狀態碼，不終止行程。
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"atmledger/internal/bank"
)

// writeJSON 統一輸出成功回應。
// - code：HTTP 狀態碼（例如 200, 201）
// - v：可被 JSON 序列化的物件（map、struct、slice 皆可）
// 實務上所有成功路徑皆應透過此函式回傳，以維持一致格式。
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr 統一輸出錯誤回應：{"error": "..."} 加上由 statusOf 決定的狀態碼。
func writeErr(w http.ResponseWriter, err error) {
	writeJSON(w, statusOf(err), map[string]string{"error": err.Error()})
}

// statusOf 將領域錯誤映射為 HTTP 狀態碼。
// 未知錯誤視為伺服器端問題（500），領域錯誤皆有明確對應。
func statusOf(err error) int {
	switch {
	case errors.Is(err, bank.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, bank.ErrInsufficient):
		return http.StatusConflict
	case errors.Is(err, bank.ErrSessionLocked):
		return http.StatusLocked
	case errors.Is(err, bank.ErrWrongPin), errors.Is(err, bank.ErrWrongAnswer):
		return http.StatusForbidden
	case errors.Is(err, bank.ErrBadAmount),
		errors.Is(err, bank.ErrSameAccount),
		errors.Is(err, bank.ErrPinRange),
		errors.Is(err, bank.ErrMobileMismatch),
		errors.Is(err, bank.ErrBadMobile),
		errors.Is(err, bank.ErrNegativeBalance),
		errors.Is(err, bank.ErrMissingField):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
