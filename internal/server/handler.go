// internal/server/handler.go
//
// Package server
// ─────────────────────────────────────────────
// 提供 HTTP RESTful 介面，作為 bank 模組的應用層 (Application Layer)。
// 每個 handler 僅負責：
//  1. 接收與解析 HTTP 請求（已驗證的原始輸入：字串、數字、blob）
//  2. 呼叫 bank 層執行商業邏輯——合法性判斷全部在核心，傳輸層不自作主張
//  3. 回傳標準化 JSON 回應（成功即附最新狀態，呼叫端無需回查）
//  4. 成功變更狀態後呼叫 s.persist()，將當前狀態寫入持久化檔案
//
// 此設計使邏輯分層清晰：
//   - bank：純商業邏輯，與 HTTP 無關。
//   - server：處理傳輸層（Transport Layer）。
//   - storage：負責持久化。
package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"atmledger/internal/bank"
)

// Server 為 HTTP 層核心結構：
// - store：注入商業邏輯層（帳戶儲存庫）。
// - persist：注入持久化鉤子，讓 server 不需關心儲存實作細節。
// - sessions：各帳戶進行中的 PIN 驗證會話（顯式狀態機，非阻塞重試）。
type Server struct {
	store   *bank.Store
	persist func() error
	log     *zap.Logger

	sessMu   sync.Mutex
	sessions map[int64]*bank.AuthSession
}

// NewServer 建立新的 HTTP 伺服器。
// persist 可為 nil；若提供則會於每次成功變更後觸發。log 可為 nil。
func NewServer(store *bank.Store, persist func() error, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		store:    store,
		persist:  persist,
		log:      log,
		sessions: make(map[int64]*bank.AuthSession),
	}
}

// persisted 觸發持久化鉤子；失敗只記錄日誌，不影響已回應的操作結果。
func (s *Server) persisted() {
	if s.persist == nil {
		return
	}
	if err := s.persist(); err != nil {
		s.log.Error("persist failed", zap.Error(err))
	}
}

// decodeBody 解析 JSON 請求本體；格式錯誤時直接回應 400 並回傳 false。
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

// accountParam 解析路徑中的帳號；非數字回應 400 並回傳 false。
func (s *Server) accountParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	n, err := strconv.ParseInt(chi.URLParam(r, "number"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid account number"})
		return 0, false
	}
	return n, true
}

// health 提供健康檢查端點：GET /health。
// 可供監控系統或 Docker liveness probe 使用。
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// createAccount 處理 POST /accounts：開戶。
// 成功回傳 201 與新帳戶快照（含已配發的帳號）。
func (s *Server) createAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name             string          `json:"name"`
		MobileNumber     string          `json:"mobile_number"`
		Pin              int             `json:"pin"`
		Balance          decimal.Decimal `json:"balance"`
		SecurityQuestion string          `json:"security_question"`
		SecurityAnswer   string          `json:"security_answer"`
		Email            string          `json:"email"`
		Address          string          `json:"address"`
		Portrait         string          `json:"portrait"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}
	a, err := s.store.Create(bank.Params{
		Name:             req.Name,
		MobileNumber:     req.MobileNumber,
		Pin:              req.Pin,
		Balance:          req.Balance,
		SecurityQuestion: req.SecurityQuestion,
		SecurityAnswer:   req.SecurityAnswer,
		Email:            req.Email,
		Address:          req.Address,
		Portrait:         req.Portrait,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
	s.persisted()
}

// listAccounts 處理 GET /accounts：列出所有帳戶快照。
func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.List())
}

// deleteAccounts 處理 DELETE /accounts：刪除「名稱與 PIN 皆相符」的帳戶。
// 名稱非唯一鍵，同名同 PIN 的帳戶會一併刪除（領域層既定語意）。
func (s *Server) deleteAccounts(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Pin  int    `json:"pin"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}
	if !s.store.Delete(req.Name, req.Pin) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found or invalid pin"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "account deleted"})
	s.persisted()
}

// getAccount 處理 GET /accounts/{number}：單一帳戶快照。
func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	n, ok := s.accountParam(w, r)
	if !ok {
		return
	}
	a, err := s.store.Get(n)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// authenticate 處理 POST /accounts/{number}/authenticate：
// 驅動該帳戶的 PIN 驗證會話一步。連續錯滿上限回應 423 並結束會話
// （下次請求重新開始）；驗證通過亦結束會話並回傳帳戶快照。
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) {
	n, ok := s.accountParam(w, r)
	if !ok {
		return
	}
	var req struct {
		Pin int `json:"pin"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}

	s.sessMu.Lock()
	sess, ok := s.sessions[n]
	if !ok {
		sess = bank.NewAuthSession(s.store, n)
		s.sessions[n] = sess
	}
	state, a, err := sess.Submit(req.Pin)
	if state != bank.AuthAwaitingPin {
		// 驗證通過或鎖定都結束本輪會話；重新嘗試須另起會話。
		delete(s.sessions, n)
	}
	s.sessMu.Unlock()

	resp := map[string]any{
		"state":         state.String(),
		"attempts_left": sess.AttemptsLeft(),
	}
	if err != nil {
		resp["error"] = err.Error()
		writeJSON(w, statusOf(err), resp)
		return
	}
	resp["account"] = a
	writeJSON(w, http.StatusOK, resp)
	s.persisted() // 成功驗證會更新最後存取時間
}

// deposit 處理 POST /accounts/{number}/deposit：存款。
func (s *Server) deposit(w http.ResponseWriter, r *http.Request) {
	s.amountOp(w, r, s.store.Deposit)
}

// withdraw 處理 POST /accounts/{number}/withdraw:提款。
func (s *Server) withdraw(w http.ResponseWriter, r *http.Request) {
	s.amountOp(w, r, s.store.Withdraw)
}

// amountOp 為存提款共用骨架：解析金額、執行、回傳最新快照並持久化。
func (s *Server) amountOp(w http.ResponseWriter, r *http.Request, op func(int64, decimal.Decimal) (*bank.Account, error)) {
	n, ok := s.accountParam(w, r)
	if !ok {
		return
	}
	var req struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}
	a, err := op(n, req.Amount)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
	s.persisted()
}

// changePin 處理 POST /accounts/{number}/pin：變更 PIN。
func (s *Server) changePin(w http.ResponseWriter, r *http.Request) {
	n, ok := s.accountParam(w, r)
	if !ok {
		return
	}
	var req struct {
		Old int `json:"old"`
		New int `json:"new"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}
	a, err := s.store.ChangePin(n, req.Old, req.New)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "PIN changed successfully!",
		"account": a,
	})
	s.persisted()
}

// updateMobile 處理 POST /accounts/{number}/mobile：變更手機號。
func (s *Server) updateMobile(w http.ResponseWriter, r *http.Request) {
	n, ok := s.accountParam(w, r)
	if !ok {
		return
	}
	var req struct {
		Old string `json:"old"`
		New string `json:"new"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}
	a, err := s.store.UpdateMobile(n, req.Old, req.New)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Mobile number updated successfully!",
		"account": a,
	})
	s.persisted()
}

// recoverPin 處理 POST /accounts/{number}/recover-pin：
// 忘記 PIN 流程——安全問題答案正確即回傳明文 PIN。純查詢，不持久化。
func (s *Server) recoverPin(w http.ResponseWriter, r *http.Request) {
	n, ok := s.accountParam(w, r)
	if !ok {
		return
	}
	var req struct {
		Answer string `json:"answer"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}
	pin, err := s.store.RecoverPin(n, req.Answer)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"pin": pin})
}

// history 處理 GET /accounts/{number}/history：交易紀錄查詢（最舊在前）。
func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	n, ok := s.accountParam(w, r)
	if !ok {
		return
	}
	recs, err := s.store.History(n)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

// transfer 處理轉帳：
//
//	POST /transfer → JSON {from, recipient, by, amount}
//
// by 為 "account"（預設）或 "name"。成功後同時回傳雙邊最新餘額與
// 兩筆日誌文字，呼叫端可直接轉繪。
func (s *Server) transfer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		From      int64           `json:"from"`
		Recipient string          `json:"recipient"`
		By        string          `json:"by"`
		Amount    decimal.Decimal `json:"amount"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}
	kind, err := bank.ParseRecipientKind(req.By)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	receipt, err := s.store.Transfer(req.From, req.Recipient, kind, req.Amount)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
	s.persisted()
}

// totalBalance 處理 GET /stats/total：全行餘額總和。
func (s *Server) totalBalance(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"total": s.store.TotalBalance()})
}
