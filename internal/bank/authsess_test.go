// internal/bank/authsess_test.go
//
// PIN 驗證會話狀態機測試：AwaitingPin → Verified / Locked 的流轉、
// 嘗試次數遞減、鎖定後拒絕輸入、帳戶不存在不消耗次數。

package bank

import (
	"errors"
	"testing"
)

// TestAuthSessionVerifies 驗證正確 PIN 一次通過並回傳帳戶快照。
func TestAuthSessionVerifies(t *testing.T) {
	s := NewStore()
	a, _ := s.Create(validParams("A", "0"))

	sess := NewAuthSession(s, a.AccountNumber)
	state, got, err := sess.Submit(1234)
	if err != nil || state != AuthVerified {
		t.Fatalf("state=%v err=%v", state, err)
	}
	if got == nil || got.AccountNumber != a.AccountNumber {
		t.Fatalf("account=%+v", got)
	}
	if sess.State() != AuthVerified {
		t.Fatal("session state not verified")
	}
}

// TestAuthSessionRetryThenVerify 驗證錯誤後仍可於剩餘次數內通過。
func TestAuthSessionRetryThenVerify(t *testing.T) {
	s := NewStore()
	a, _ := s.Create(validParams("A", "0"))

	sess := NewAuthSession(s, a.AccountNumber)
	state, _, err := sess.Submit(1111)
	if state != AuthAwaitingPin || !errors.Is(err, ErrWrongPin) {
		t.Fatalf("state=%v err=%v", state, err)
	}
	if sess.AttemptsLeft() != 2 {
		t.Fatalf("attempts left=%d want=2", sess.AttemptsLeft())
	}
	if state, _, err = sess.Submit(1234); state != AuthVerified || err != nil {
		t.Fatalf("state=%v err=%v", state, err)
	}
}

// TestAuthSessionLocksAfterThreeFailures 驗證連錯三次即鎖定，
// 鎖定後即使 PIN 正確也拒絕。
func TestAuthSessionLocksAfterThreeFailures(t *testing.T) {
	s := NewStore()
	a, _ := s.Create(validParams("A", "0"))

	sess := NewAuthSession(s, a.AccountNumber)
	_, _, _ = sess.Submit(1111)
	_, _, _ = sess.Submit(2222)
	state, _, err := sess.Submit(3333)
	if state != AuthLocked || !errors.Is(err, ErrSessionLocked) {
		t.Fatalf("state=%v err=%v", state, err)
	}
	// 鎖定後正確 PIN 亦無效
	if state, _, err = sess.Submit(1234); state != AuthLocked || !errors.Is(err, ErrSessionLocked) {
		t.Fatalf("locked session accepted input: state=%v err=%v", state, err)
	}
	// 另開新會話可重新嘗試
	fresh := NewAuthSession(s, a.AccountNumber)
	if state, _, err := fresh.Submit(1234); state != AuthVerified || err != nil {
		t.Fatalf("fresh session: state=%v err=%v", state, err)
	}
}

// TestAuthSessionUnknownAccount 驗證帳戶不存在直接回報、不消耗嘗試次數。
func TestAuthSessionUnknownAccount(t *testing.T) {
	s := NewStore()
	sess := NewAuthSession(s, 42)
	state, _, err := sess.Submit(1234)
	if !errors.Is(err, ErrNotFound) || state != AuthAwaitingPin {
		t.Fatalf("state=%v err=%v", state, err)
	}
	if sess.AttemptsLeft() != maxPinAttempts {
		t.Fatalf("attempts consumed for unknown account: %d", sess.AttemptsLeft())
	}
}

// TestAuthStateString 驗證狀態名稱輸出（供 API 與日誌）。
func TestAuthStateString(t *testing.T) {
	for st, want := range map[AuthState]string{
		AuthAwaitingPin: "awaiting_pin",
		AuthVerified:    "verified",
		AuthLocked:      "locked",
	} {
		if st.String() != want {
			t.Fatalf("%d => %q want %q", st, st.String(), want)
		}
	}
}
