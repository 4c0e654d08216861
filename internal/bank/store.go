// internal/bank/store.go

// 本檔定義核心商業邏輯：開戶、PIN 驗證與變更、存提款、查詢、刪除與交易日誌。
// 採用單一互斥鎖 (sync.Mutex) 保障所有狀態變更「原子且序列化」，避免競爭條件。
// 金額一律以 decimal.Decimal 儲存與運算，避免浮點誤差。

package bank

import (
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

// RoutingCode 為全行共用的固定清算代碼，每個帳戶皆相同。
const RoutingCode = "BANK0001234"

// baseAccountNumber 為帳號命名空間下限：第一個帳戶即取此值，
// 其後嚴格遞增配發。
const baseAccountNumber int64 = 124000000000

// mobilePattern 檢查手機號：恰好十位十進位數字。
var mobilePattern = regexp.MustCompile(`^\d{10}$`)

// Store 為聚合根 (Aggregate Root)：獨佔持有全部帳戶與交易日誌。
// - mu：序列化所有讀寫，確保跨帳戶操作（轉帳）原子完成。
// - accts：帳戶索引表（帳號 → *Account），內部指標只在臨界區內修改。
// - ledger：各帳戶的 append-only 交易紀錄，與餘額異動同臨界區更新。
// - lastAllocated：帳號配發高水位，保證號碼即使在刪帳後也不重用。
type Store struct {
	mu            sync.Mutex
	accts         map[int64]*Account
	ledger        *Ledger
	lastAllocated int64
}

// NewStore 建立空白帳戶儲存庫（僅就緒的 in-memory 狀態，無外部依賴）。
func NewStore() *Store {
	return &Store{
		accts:  make(map[int64]*Account),
		ledger: NewLedger(),
	}
}

// nextAccountNumberLocked 配發下一個帳號；呼叫端必須已持有 mu。
// 規則：max(現存帳號最大值, 高水位, base) + 1；儲存庫從未配發過任何
// 帳號時直接回傳 base。高水位確保刪除最大帳號後號碼不被重用。
func (s *Store) nextAccountNumberLocked() int64 {
	high := s.lastAllocated
	for n := range s.accts {
		if n > high {
			high = n
		}
	}
	if high < baseAccountNumber {
		return baseAccountNumber
	}
	return high + 1
}

// NextAccountNumber 回傳下一個將被配發的帳號（不實際配發）。
func (s *Store) NextAccountNumber() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextAccountNumberLocked()
}

// Params 為開戶所需的全部欄位；除 Portrait 外皆為必填。
type Params struct {
	Name             string
	MobileNumber     string
	Pin              int
	Balance          decimal.Decimal
	SecurityQuestion string
	SecurityAnswer   string
	Email            string
	Address          string
	Portrait         string
}

// validate 檢查開戶欄位格式；回傳第一個發現的領域錯誤。
func (p Params) validate() error {
	switch "" {
	case p.Name, p.MobileNumber, p.SecurityQuestion, p.SecurityAnswer, p.Email, p.Address:
		return ErrMissingField
	}
	if !mobilePattern.MatchString(p.MobileNumber) {
		return ErrBadMobile
	}
	if !validPin(p.Pin) {
		return ErrPinRange
	}
	if p.Balance.IsNegative() {
		return ErrNegativeBalance
	}
	return nil
}

// Create 驗證欄位、配發帳號、建立帳戶並初始化空白交易序列。
// 回傳淺拷貝（非內部指標）避免呼叫端越權修改內部狀態。
func (s *Store) Create(p Params) (*Account, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.nextAccountNumberLocked()
	a := &Account{
		Name:             p.Name,
		AccountNumber:    n,
		RoutingCode:      RoutingCode,
		MobileNumber:     p.MobileNumber,
		Balance:          p.Balance,
		EncodedPin:       EncodePin(p.Pin, int(n%1000)),
		SecurityQuestion: p.SecurityQuestion,
		SecurityAnswer:   p.SecurityAnswer,
		Email:            p.Email,
		Address:          p.Address,
		Portrait:         p.Portrait,
	}
	a.touch()
	s.accts[n] = a
	s.ledger.Init(n)
	s.lastAllocated = n
	cp := *a
	return &cp, nil
}

// Get 依帳號取得帳戶的目前快照；若不存在回傳 ErrNotFound。
// 回傳的是值拷貝，避免外部直接改寫內部指標。
func (s *Store) Get(account int64) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accts[account]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

// FindByName 依名稱（不分大小寫）找出第一個相符帳戶。
// 名稱並非唯一鍵，此查詢僅為 best-effort：同名帳戶中回傳帳號最小者。
func (s *Store) FindByName(name string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.findByNameLocked(name)
	if a == nil {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

// findByNameLocked 為 FindByName 的臨界區內版本，也供轉帳解析收款人。
// 依帳號排序後掃描，確保「第一個相符」結果可重現。
func (s *Store) findByNameLocked(name string) *Account {
	for _, n := range s.sortedNumbersLocked() {
		if strings.EqualFold(s.accts[n].Name, name) {
			return s.accts[n]
		}
	}
	return nil
}

// sortedNumbersLocked 回傳現存帳號的遞增排序；呼叫端必須已持有 mu。
func (s *Store) sortedNumbersLocked() []int64 {
	nums := make([]int64, 0, len(s.accts))
	for n := range s.accts {
		nums = append(nums, n)
	}
	sort.Slice(nums, func(i, j int) bool { return nums[i] < nums[j] })
	return nums
}

// List 回傳所有帳戶的拷貝快照（依帳號遞增排序）；不暴露內部指標。
func (s *Store) List() []*Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Account, 0, len(s.accts))
	for _, n := range s.sortedNumbersLocked() {
		cp := *s.accts[n]
		out = append(out, &cp)
	}
	return out
}

// Authenticate 驗證 PIN；成功時更新最後存取時間並回傳帳戶快照。
func (s *Store) Authenticate(account int64, pin int) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accts[account]
	if !ok {
		return nil, ErrNotFound
	}
	if !a.VerifyPin(pin) {
		return nil, ErrWrongPin
	}
	a.touch()
	cp := *a
	return &cp, nil
}

// RecoverPin 為「忘記 PIN」流程：安全問題答案正確即回傳明文 PIN。
// 可逆混淆正是為了支援此流程而非安全控制，詳見 pincodec.go。
func (s *Store) RecoverPin(account int64, answer string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accts[account]
	if !ok {
		return 0, ErrNotFound
	}
	if !a.VerifySecurityAnswer(answer) {
		return 0, ErrWrongAnswer
	}
	return a.DecodedPin(), nil
}

// Delete 移除「名稱完全相符且 PIN 驗證通過」的所有帳戶及其交易紀錄，
// 回傳是否至少移除一筆。名稱非唯一鍵：同名同 PIN 的多個帳戶會一併刪除，
// 呼叫端須自行承擔此不精確性。
func (s *Store) Delete(name string, pin int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := false
	for n, a := range s.accts {
		if a.Name == name && a.VerifyPin(pin) {
			delete(s.accts, n)
			s.ledger.Remove(n)
			removed = true
		}
	}
	return removed
}

// Deposit 存款：金額需 > 0；若帳戶不存在回傳 ErrNotFound。
// 於臨界區內同時更新餘額與追加日誌，確保兩者一致性。
func (s *Store) Deposit(account int64, amount decimal.Decimal) (*Account, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrBadAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accts[account]
	if !ok {
		return nil, ErrNotFound
	}
	a.Balance = a.Balance.Add(amount)
	s.ledger.Append(account, "Cash Deposit: "+amount.StringFixed(2), a.Balance)
	cp := *a
	return &cp, nil
}

// Withdraw 提款：金額需 > 0 且不得超過餘額（維持非負）；不存在則 ErrNotFound。
// 同樣於臨界區內一併更新餘額與日誌，避免部分成功。
func (s *Store) Withdraw(account int64, amount decimal.Decimal) (*Account, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrBadAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accts[account]
	if !ok {
		return nil, ErrNotFound
	}
	if amount.GreaterThan(a.Balance) {
		return nil, ErrInsufficient
	}
	a.Balance = a.Balance.Sub(amount)
	s.ledger.Append(account, "Cash Withdrawal: "+amount.StringFixed(2), a.Balance)
	cp := *a
	return &cp, nil
}

// ChangePin 變更 PIN：舊 PIN 比對失敗回傳 ErrWrongPin；新 PIN 超出
// 四位數範圍回傳 ErrPinRange。成功時重新編碼並追加「PIN Changed」紀錄
// （餘額不變，紀錄的餘額快照即當前餘額）。
func (s *Store) ChangePin(account int64, oldPin, newPin int) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accts[account]
	if !ok {
		return nil, ErrNotFound
	}
	if !a.VerifyPin(oldPin) {
		return nil, ErrWrongPin
	}
	if !validPin(newPin) {
		return nil, ErrPinRange
	}
	a.EncodedPin = EncodePin(newPin, a.keyComponent())
	s.ledger.Append(account, "PIN Changed", a.Balance)
	cp := *a
	return &cp, nil
}

// UpdateMobile 變更手機號：舊號碼比對失敗回傳 ErrMobileMismatch；
// 新號碼不是恰好十位數字回傳 ErrBadMobile。成功時追加紀錄。
func (s *Store) UpdateMobile(account int64, oldMobile, newMobile string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accts[account]
	if !ok {
		return nil, ErrNotFound
	}
	if a.MobileNumber != oldMobile {
		return nil, ErrMobileMismatch
	}
	if !mobilePattern.MatchString(newMobile) {
		return nil, ErrBadMobile
	}
	a.MobileNumber = newMobile
	s.ledger.Append(account, "Mobile Number Updated", a.Balance)
	cp := *a
	return &cp, nil
}

// History 回傳指定帳戶的交易紀錄（值拷貝），避免外部修改內部切片。
func (s *Store) History(account int64) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accts[account]; !ok {
		return nil, ErrNotFound
	}
	return s.ledger.History(account), nil
}

// TotalBalance 回傳全行餘額總和（經理端「在庫總金額」檢視）。
func (s *Store) TotalBalance() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, a := range s.accts {
		total = total.Add(a.Balance)
	}
	return total
}

// Snapshot 匯出全部狀態的拷貝供持久化：帳戶依帳號遞增排序
// （確保編碼輸出具確定性）、交易日誌深拷貝。
func (s *Store) Snapshot() ([]Account, map[int64][]Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	accts := make([]Account, 0, len(s.accts))
	for _, n := range s.sortedNumbersLocked() {
		accts = append(accts, *s.accts[n])
	}
	return accts, s.ledger.Export()
}

// Restore 以持久化資料重建儲存庫狀態，整體取代現有內容。
// 帳號高水位一併重建，維持「號碼不重用」的配發保證。
func (s *Store) Restore(accts []Account, history map[int64][]Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accts = make(map[int64]*Account, len(accts))
	s.lastAllocated = 0
	for i := range accts {
		cp := accts[i]
		s.accts[cp.AccountNumber] = &cp
		if cp.AccountNumber > s.lastAllocated {
			s.lastAllocated = cp.AccountNumber
		}
	}
	s.ledger.Restore(history)
	for n := range s.accts {
		s.ledger.Init(n)
	}
}
