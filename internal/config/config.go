// internal/config/config.go
//
// 服務組態：全部由環境變數提供、皆有合理預設值。
// .env 檔由 main 以 godotenv 載入，本套件只讀取行程環境。
package config

import "os"

// Config 為服務啟動所需的全部組態。
type Config struct {
	// Addr 為 HTTP 監聽位址。
	Addr string
	// AccountsFile 為帳戶 blob 的檔案路徑。
	AccountsFile string
	// HistoryFile 為交易日誌 JSON 的檔案路徑。
	HistoryFile string
}

// Load 讀取環境變數組態；未設定的項目採用預設值。
func Load() Config {
	return Config{
		Addr:         getEnv("LEDGER_ADDR", ":8080"),
		AccountsFile: getEnv("LEDGER_ACCOUNTS_FILE", "accounts.txt"),
		HistoryFile:  getEnv("LEDGER_HISTORY_FILE", "history.json"),
	}
}

// getEnv 讀取環境變數，空值時回傳預設。
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
