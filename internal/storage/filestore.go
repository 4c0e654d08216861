// internal/storage/filestore.go
//
// 提供帳戶 blob 與交易日誌的檔案存取實作。
// 採「原子寫入」策略 (atomic write)：先寫入 .tmp 檔，再以 rename() 取代原檔，
// 可避免中途寫入失敗導致檔案損壞，是常見的安全儲存設計模式。
// 存讀皆為「整份讀寫」：明確的 save/load，不串流、不增量。
package storage

import (
	"os"

	"go.uber.org/zap"

	"atmledger/internal/bank"
)

// FileStore 負責兩個持久化檔案的整份存取：
// 帳戶 blob（換行分隔文字）與交易日誌（JSON）。
type FileStore struct {
	accountsPath string
	historyPath  string
	log          *zap.Logger
}

// NewFileStore 建立檔案儲存器；log 可為 nil（改用 no-op logger）。
func NewFileStore(accountsPath, historyPath string, log *zap.Logger) *FileStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &FileStore{accountsPath: accountsPath, historyPath: historyPath, log: log}
}

// atomicWrite 先寫入暫存檔、再原子改名取代正式檔案。
// 寫入中斷（例如停電或程式崩潰）時，原檔不會損壞。
func atomicWrite(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Save 將帳戶與交易日誌整份寫入對應檔案（皆為原子寫入）。
func (f *FileStore) Save(accts []bank.Account, history map[int64][]bank.Record) error {
	if err := atomicWrite(f.accountsPath, []byte(EncodeAccounts(accts))); err != nil {
		return err
	}
	data, err := EncodeHistory(history)
	if err != nil {
		return err
	}
	return atomicWrite(f.historyPath, data)
}

// Load 整份讀回帳戶與交易日誌。
// 檔案不存在視為首次啟動，回傳空狀態；毀損的單行記錄跳過並記錄缺陷，
// 不中止載入（部分失敗容忍）。
func (f *FileStore) Load() ([]bank.Account, map[int64][]bank.Record, error) {
	accts, err := f.loadAccounts()
	if err != nil {
		return nil, nil, err
	}
	history, err := f.loadHistory()
	if err != nil {
		return nil, nil, err
	}
	return accts, history, nil
}

func (f *FileStore) loadAccounts() ([]bank.Account, error) {
	data, err := os.ReadFile(f.accountsPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	accts, defects := DecodeAccounts(string(data))
	for _, d := range defects {
		f.log.Warn("skipping invalid account record",
			zap.String("file", f.accountsPath), zap.Error(d))
	}
	return accts, nil
}

func (f *FileStore) loadHistory() (map[int64][]bank.Record, error) {
	data, err := os.ReadFile(f.historyPath)
	if os.IsNotExist(err) {
		return map[int64][]bank.Record{}, nil
	}
	if err != nil {
		return nil, err
	}
	history, defects, err := DecodeHistory(data)
	if err != nil {
		return nil, err
	}
	for _, d := range defects {
		f.log.Warn("skipping invalid history entry",
			zap.String("file", f.historyPath), zap.Error(d))
	}
	return history, nil
}
