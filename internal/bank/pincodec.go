// internal/bank/pincodec.go
//
// PIN 可逆混淆 (reversible obfuscation)。
// 以固定常數加上「帳號末三碼」組成每帳戶金鑰，對 PIN 做位元 XOR。
// XOR 為自反運算，因此編碼與解碼共用同一實作。
//
// 注意：這「不是」加密安全機制，僅避免 PIN 以十進位明文形式落地；
// 任何持有帳號的元件都能還原 PIN。為維持既有持久化資料的相容性，
// 此行為必須原樣保留，不得升級為雜湊或真正的加密。

package bank

// pinKeyBase 為金鑰固定成分；與帳戶金鑰成分相加後作為 XOR 金鑰。
const pinKeyBase = 0xA5A5

// PIN 合法範圍：四位數字。
const (
	PinMin = 1000
	PinMax = 9999
)

// EncodePin 以帳戶金鑰成分混淆 PIN。
func EncodePin(pin, keyComponent int) int {
	return pin ^ (pinKeyBase + keyComponent)
}

// DecodePin 還原被混淆的 PIN。與 EncodePin 互為反函式：
// DecodePin(EncodePin(p, k), k) == p 對所有合法 p、k 成立。
func DecodePin(value, keyComponent int) int {
	return value ^ (pinKeyBase + keyComponent)
}

// validPin 檢查 PIN 是否為合法四位數。
func validPin(pin int) bool {
	return pin >= PinMin && pin <= PinMax
}
