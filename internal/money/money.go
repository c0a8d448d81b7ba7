// Package money formats integer minor-unit amounts for display. All amounts
// in the system are carried as int64 cents; floats never enter the domain.
package money

import "fmt"

// Format renders a minor-unit amount as a dollar string, e.g. 1999 -> "$19.99".
func Format(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s$%d.%02d", sign, minor/100, minor%100)
}
