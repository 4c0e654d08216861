// internal/server/router.go
//
// 本檔負責 HTTP 路由註冊。
// 與 handler.go 分離，讓系統具備更高的擴充彈性：
//   - 可支援 API 版本化（/api/v1, /api/v2）
//   - 可方便插入中介層（middleware，例如驗證、日誌、CORS）
//   - 讓 Server 結構保持單一職責（handler 專注邏輯、router 專注綁定）
//
// 本模組的設計理念：
//   - handler.go 定義「如何處理請求」
//   - router.go 定義「請求如何被導向」
//   - main.go 組裝整體應用（注入 Store、Storage、Persist Hook）
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Router 建立並回傳整個 HTTP 處理鏈（chi 路由器）。
// 採明確路由註冊（非反射式），確保高可讀性與低魔法性。
// 所有端點同時掛載於根路徑與 /api/v1 之下，方便未來版本分支。
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	// 同時保留根路徑，方便本地開發或測試；
	// 若想強制所有 API 都走 /api/v1，移除下行即可。
	s.routes(r)
	r.Route("/api/v1", s.routes)

	return r
}

// routes 註冊全部端點；被根路徑與各 API 版本共用。
func (s *Server) routes(r chi.Router) {
	// 健康檢查：可供監控或 Docker liveness probe 使用。
	r.Get("/health", s.health)

	// 帳戶集合操作。
	r.Get("/accounts", s.listAccounts)
	r.Post("/accounts", s.createAccount)
	r.Delete("/accounts", s.deleteAccounts)

	// 單一帳戶操作。
	r.Route("/accounts/{number}", func(r chi.Router) {
		r.Get("/", s.getAccount)
		r.Post("/authenticate", s.authenticate)
		r.Post("/deposit", s.deposit)
		r.Post("/withdraw", s.withdraw)
		r.Post("/pin", s.changePin)
		r.Post("/mobile", s.updateMobile)
		r.Post("/recover-pin", s.recoverPin)
		r.Get("/history", s.history)
	})

	// 轉帳與統計。
	r.Post("/transfer", s.transfer)
	r.Get("/stats/total", s.totalBalance)
}
