// cmd/server/main.go

// 本服務提供帳戶管理、PIN 驗證、存提款、轉帳與交易紀錄查詢的 RESTful API。
// 此檔案負責初始化模組（config, bank, storage, server），
// 並啟動 HTTP 伺服器；同時支援啟動時載入與結束時保存持久化檔案。

package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"atmledger/internal/bank"
	"atmledger/internal/config"
	"atmledger/internal/server"
	"atmledger/internal/storage"
)

func main() {
	// 載入 .env（不存在即略過，環境變數仍可由外部提供）
	_ = godotenv.Load()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg := config.Load()

	// 初始化帳戶儲存庫並自上次的持久化檔案還原狀態；
	// 毀損的單行記錄由 storage 層跳過並記錄，不影響啟動。
	store := bank.NewStore()
	files := storage.NewFileStore(cfg.AccountsFile, cfg.HistoryFile, logger)
	accts, history, err := files.Load()
	if err != nil {
		logger.Fatal("failed to load persisted state", zap.Error(err))
	}
	store.Restore(accts, history)
	logger.Info("state loaded",
		zap.Int("accounts", len(accts)),
		zap.String("accounts_file", cfg.AccountsFile),
		zap.String("history_file", cfg.HistoryFile))

	// persist 函式：將當前儲存庫快照整份寫回持久化檔案
	persist := func() error {
		snapshot, ledger := store.Snapshot()
		return files.Save(snapshot, ledger)
	}

	// 初始化伺服器並注入 persist 回呼，以便在每次成功變更後自動儲存
	s := server.NewServer(store, persist, logger)

	// 啟動背景 goroutine 監聽 SIGINT/SIGTERM 訊號，安全結束前保存狀態
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		if err := persist(); err != nil {
			logger.Error("final persist failed", zap.Error(err))
		}
		_ = logger.Sync()
		os.Exit(0)
	}()

	logger.Info("ledger server running", zap.String("addr", cfg.Addr))
	// 啟動 HTTP 伺服器；使用自定義 router 提供所有 API
	logger.Fatal("server stopped", zap.Error(http.ListenAndServe(cfg.Addr, s.Router())))
}
