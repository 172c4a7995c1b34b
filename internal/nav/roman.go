package nav

var romanValues = map[byte]int{
	'I': 1,
	'V': 5,
	'X': 10,
	'L': 50,
	'C': 100,
	'D': 500,
	'M': 1000,
}

// RomanValue converts a roman numeral to its integer value using standard
// subtractive notation: a smaller value immediately preceding a larger one is
// subtracted, otherwise values are summed left to right. Lower- and
// upper-case input are both accepted. Returns 0 for input containing
// non-roman characters.
func RomanValue(s string) int {
	total := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		v, ok := romanValues[c]
		if !ok {
			return 0
		}
		if i+1 < len(s) {
			next := s[i+1]
			if next >= 'a' && next <= 'z' {
				next -= 'a' - 'A'
			}
			if nv, ok := romanValues[next]; ok && v < nv {
				total -= v
				continue
			}
		}
		total += v
	}
	return total
}
