package ui

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Number groups thousands: 12345 -> "12,345".
func Number(n int) string {
	return printer.Sprintf("%d", n)
}

// XP formats an XP amount.
func XP(n int) string {
	return printer.Sprintf("%d XP", n)
}

// SignedXP formats an award: "+1,200 XP".
func SignedXP(n int) string {
	if n < 0 {
		return printer.Sprintf("%d XP", n)
	}
	return printer.Sprintf("+%d XP", n)
}
