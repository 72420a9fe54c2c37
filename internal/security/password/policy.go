package password

import "unicode"

// Policy replica las reglas de registro: largo 8..32 y al menos una
// mayúscula, una minúscula, un dígito y un símbolo.
type Policy struct {
	MinLength     int
	MaxLength     int
	RequireUpper  bool
	RequireLower  bool
	RequireDigit  bool
	RequireSymbol bool
}

var DefaultPolicy = Policy{
	MinLength:     8,
	MaxLength:     32,
	RequireUpper:  true,
	RequireLower:  true,
	RequireDigit:  true,
	RequireSymbol: true,
}

func (p Policy) Validate(plain string) bool {
	if len(plain) < p.MinLength {
		return false
	}
	if p.MaxLength > 0 && len(plain) > p.MaxLength {
		return false
	}
	var upper, lower, digit, symbol bool
	for _, r := range plain {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}
	if p.RequireUpper && !upper {
		return false
	}
	if p.RequireLower && !lower {
		return false
	}
	if p.RequireDigit && !digit {
		return false
	}
	if p.RequireSymbol && !symbol {
		return false
	}
	return true
}
