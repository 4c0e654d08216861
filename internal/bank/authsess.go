// internal/bank/authsess.go
//
// PIN 驗證會話：以顯式狀態機取代互動式重複詢問。
// 狀態流轉：AwaitingPin → (Verified | AwaitingPin(剩餘次數遞減) | Locked)。
// 由呼叫端逐次餵入 PIN 驅動，本身不阻塞、不提示；連續錯滿上限即鎖定，
// 鎖定後的會話不再接受輸入，呼叫端須另開新會話重新開始。

package bank

// maxPinAttempts 為單一會話允許的 PIN 嘗試次數上限。
const maxPinAttempts = 3

// AuthState 為 PIN 驗證會話的狀態。
type AuthState int

const (
	// AuthAwaitingPin 表示尚待輸入（或上次輸入錯誤、仍有剩餘次數）。
	AuthAwaitingPin AuthState = iota
	// AuthVerified 表示 PIN 驗證通過。
	AuthVerified
	// AuthLocked 表示已連續錯滿上限，會話鎖定。
	AuthLocked
)

// String 輸出狀態名稱，供 API 回應與日誌使用。
func (st AuthState) String() string {
	switch st {
	case AuthVerified:
		return "verified"
	case AuthLocked:
		return "locked"
	default:
		return "awaiting_pin"
	}
}

// AuthSession 為單一帳戶的 PIN 驗證會話。
// 非併發安全：會話屬單一操作流程，序列化由上層負責。
type AuthSession struct {
	store        *Store
	account      int64
	state        AuthState
	attemptsLeft int
}

// NewAuthSession 為指定帳戶開啟新的驗證會話。
func NewAuthSession(s *Store, account int64) *AuthSession {
	return &AuthSession{
		store:        s,
		account:      account,
		state:        AuthAwaitingPin,
		attemptsLeft: maxPinAttempts,
	}
}

// State 回傳目前狀態。
func (as *AuthSession) State() AuthState { return as.state }

// AttemptsLeft 回傳剩餘嘗試次數。
func (as *AuthSession) AttemptsLeft() int { return as.attemptsLeft }

// Submit 餵入一次 PIN 輸入並回傳最新狀態與驗證通過的帳戶快照。
// 驗證成功會同步更新帳戶的最後存取時間（委由 Store.Authenticate）。
// 帳戶不存在屬呼叫端給錯輸入，直接回報 ErrNotFound、不消耗嘗試次數。
func (as *AuthSession) Submit(pin int) (AuthState, *Account, error) {
	switch as.state {
	case AuthLocked:
		return AuthLocked, nil, ErrSessionLocked
	case AuthVerified:
		a, err := as.store.Get(as.account)
		return AuthVerified, a, err
	}

	a, err := as.store.Authenticate(as.account, pin)
	switch err {
	case nil:
		as.state = AuthVerified
		return AuthVerified, a, nil
	case ErrWrongPin:
		as.attemptsLeft--
		if as.attemptsLeft <= 0 {
			as.state = AuthLocked
			return AuthLocked, nil, ErrSessionLocked
		}
		return AuthAwaitingPin, nil, ErrWrongPin
	default:
		return as.state, nil, err
	}
}
