// internal/storage/filestore_test.go
//
// FileStore 的整合測試：整份存讀 round-trip、首次啟動（檔案不存在）、
// 毀損行跳過後照常完成載入。
// 使用 t.TempDir() 確保測試不汙染本機環境。

package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"atmledger/internal/bank"
)

// newTestStore 建立指向暫存目錄的 FileStore 與兩個檔案路徑。
func newTestStore(t *testing.T) (*FileStore, string, string) {
	t.Helper()
	dir := t.TempDir()
	accounts := filepath.Join(dir, "accounts.txt")
	history := filepath.Join(dir, "history.json")
	return NewFileStore(accounts, history, nil), accounts, history
}

// TestFileStoreRoundTrip 驗證 Save → Load 後帳戶與日誌完全一致。
func TestFileStoreRoundTrip(t *testing.T) {
	fs, accountsPath, _ := newTestStore(t)

	accts := []bank.Account{
		sampleAccount(124000000000, "Alice"),
		sampleAccount(124000000001, "Bob"),
	}
	accts[0].Portrait = "blob,with,commas"
	history := map[int64][]bank.Record{
		124000000000: {{
			Time:        time.Date(2024, 6, 1, 9, 0, 0, 0, time.Local),
			Description: "Cash Deposit: 10.00",
			Balance:     decimal.RequireFromString("10.00"),
		}},
	}

	if err := fs.Save(accts, history); err != nil {
		t.Fatalf("Save err=%v", err)
	}
	// 驗證檔案確實落地
	if _, err := os.Stat(accountsPath); err != nil {
		t.Fatalf("accounts file not written: %v", err)
	}

	gotAccts, gotHistory, err := fs.Load()
	if err != nil {
		t.Fatalf("Load err=%v", err)
	}
	if len(gotAccts) != 2 || gotAccts[0].Name != "Alice" || gotAccts[0].Portrait != "blob,with,commas" {
		t.Fatalf("accounts mismatch: %+v", gotAccts)
	}
	if len(gotHistory[124000000000]) != 1 {
		t.Fatalf("history mismatch: %+v", gotHistory)
	}
}

// TestFileStoreFirstRun 驗證檔案不存在視為首次啟動：空狀態、無錯誤。
func TestFileStoreFirstRun(t *testing.T) {
	fs, _, _ := newTestStore(t)
	accts, history, err := fs.Load()
	if err != nil {
		t.Fatalf("Load err=%v", err)
	}
	if len(accts) != 0 || len(history) != 0 {
		t.Fatalf("expect empty state, got accts=%v history=%v", accts, history)
	}
}

// TestFileStoreSkipsBadLines 驗證帳戶檔內毀損的行被跳過，
// 其後合法行照常載入（部分失敗容忍）。
func TestFileStoreSkipsBadLines(t *testing.T) {
	fs, accountsPath, historyPath := newTestStore(t)

	good := EncodeAccount(sampleAccount(124000000000, "Alice"))
	blob := "short,broken,line\n" + good + "\n"
	if err := os.WriteFile(accountsPath, []byte(blob), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(historyPath, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	accts, _, err := fs.Load()
	if err != nil {
		t.Fatalf("Load err=%v", err)
	}
	if len(accts) != 1 || accts[0].Name != "Alice" {
		t.Fatalf("accounts=%+v want only Alice", accts)
	}
}

// TestFileStoreAtomicWriteLeavesNoTemp 驗證寫入完成後暫存檔不殘留。
func TestFileStoreAtomicWriteLeavesNoTemp(t *testing.T) {
	fs, accountsPath, historyPath := newTestStore(t)
	if err := fs.Save(nil, map[int64][]bank.Record{}); err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{accountsPath + ".tmp", historyPath + ".tmp"} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Fatalf("temp file left behind: %s", p)
		}
	}
}

// TestFileStoreEndToEndWithStore 驗證與 bank.Store 的整條持久化鏈：
// 操作 → Snapshot → Save → Load → Restore 後狀態一致。
func TestFileStoreEndToEndWithStore(t *testing.T) {
	fs, _, _ := newTestStore(t)

	s := bank.NewStore()
	a, err := s.Create(bank.Params{
		Name:             "Alice",
		MobileNumber:     "9876543210",
		Pin:              1234,
		Balance:          decimal.RequireFromString("1000"),
		SecurityQuestion: "Favorite color?",
		SecurityAnswer:   "Blue",
		Email:            "alice@example.com",
		Address:          "1 Main Street",
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Deposit(a.AccountNumber, decimal.RequireFromString("500")); err != nil {
		t.Fatal(err)
	}

	accts, history := s.Snapshot()
	if err := fs.Save(accts, history); err != nil {
		t.Fatal(err)
	}

	loadedAccts, loadedHistory, err := fs.Load()
	if err != nil {
		t.Fatal(err)
	}
	s2 := bank.NewStore()
	s2.Restore(loadedAccts, loadedHistory)

	g, err := s2.Get(a.AccountNumber)
	if err != nil {
		t.Fatal(err)
	}
	if !g.Balance.Equal(decimal.RequireFromString("1500")) || !g.VerifyPin(1234) {
		t.Fatalf("restored account mismatch: %+v", g)
	}
	recs, _ := s2.History(a.AccountNumber)
	if len(recs) != 1 || recs[0].Description != "Cash Deposit: 500.00" {
		t.Fatalf("restored history mismatch: %+v", recs)
	}
}
