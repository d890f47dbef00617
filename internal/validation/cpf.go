package validation

import "strings"

// NormalizeCPF strips punctuation, keeping digits only.
func NormalizeCPF(cpf string) string {
	var b strings.Builder
	b.Grow(len(cpf))
	for _, r := range cpf {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// cpfMask is the punctuated form; a '9' marks a digit position.
const cpfMask = "999.999.999-99"

// IsValidCPF checks the format and both check digits of a Brazilian CPF. Only
// eleven bare digits or the exact mask ("529.982.247-25") are accepted.
func IsValidCPF(cpf string) bool {
	digits, ok := cpfDigits(strings.TrimSpace(cpf))
	if !ok {
		return false
	}

	allSame := true
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return false
	}

	return checkDigit(digits[:9]) == int(digits[9]-'0') &&
		checkDigit(digits[:10]) == int(digits[10]-'0')
}

func checkDigit(prefix string) int {
	sum := 0
	weight := len(prefix) + 1
	for i := 0; i < len(prefix); i++ {
		sum += int(prefix[i]-'0') * (weight - i)
	}
	rem := sum * 10 % 11
	if rem == 10 {
		return 0
	}
	return rem
}

func cpfDigits(cpf string) (string, bool) {
	switch len(cpf) {
	case 11:
		for i := 0; i < len(cpf); i++ {
			if !isDigit(cpf[i]) {
				return "", false
			}
		}
		return cpf, true
	case len(cpfMask):
		digits := make([]byte, 0, 11)
		for i := 0; i < len(cpf); i++ {
			if cpfMask[i] != '9' {
				if cpf[i] != cpfMask[i] {
					return "", false
				}
				continue
			}
			if !isDigit(cpf[i]) {
				return "", false
			}
			digits = append(digits, cpf[i])
		}
		return string(digits), true
	}
	return "", false
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
