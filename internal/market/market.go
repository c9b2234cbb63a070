package market

import "fmt"

// Mainland exchanges keyed by the first three digits of a security code.
// 200 and 900 are the Shenzhen and Shanghai B share ranges.
var prefixes = map[string]string{
	"000": "sz",
	"001": "sz",
	"002": "sz",
	"200": "sz",
	"300": "sz",
	"600": "sh",
	"601": "sh",
	"603": "sh",
	"605": "sh",
	"900": "sh",
}

const (
	Shenzhen = "sz"
	Shanghai = "sh"
)

// Resolve returns the exchange ("sz" or "sh") a security code belongs to.
func Resolve(code string) (string, bool) {
	if len(code) < 3 {
		return "", false
	}
	mkt, ok := prefixes[code[:3]]
	return mkt, ok
}

// Symbol returns the provider wire symbol for a code, e.g. "sz000001".
func Symbol(code string) (string, error) {
	mkt, ok := Resolve(code)
	if !ok {
		return "", fmt.Errorf("unknown market for code %q", code)
	}
	return mkt + code, nil
}
