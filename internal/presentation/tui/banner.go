package tui

import (
	"fmt"

	"github.com/muesli/termenv"

	"github.com/airband-io/airband/pkg/domain"
)

// PrintBanner outputs the airband ASCII banner.
func PrintBanner() {
	p := termenv.ColorProfile()
	// Sky-to-horizon gradient.
	s1 := termenv.String("      _      _                     _ ").Foreground(p.Color("#38bdf8"))
	s2 := termenv.String("  __ _(_)_ _| |__  __ _ _ _  __| |").Foreground(p.Color("#0ea5e9"))
	s3 := termenv.String(" / _` | | '_| '_ \\/ _` | ' \\/ _` |").Foreground(p.Color("#0284c7"))
	s4 := termenv.String(" \\__,_|_|_| |_.__/\\__,_|_||_\\__,_|").Foreground(p.Color("#0369a1"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println()
}

// RoleColor returns the terminal style for a transcript role.
func RoleColor(role domain.Role) termenv.Color {
	p := termenv.ColorProfile()
	switch role {
	case domain.RoleATC:
		return p.Color("#38bdf8")
	case domain.RolePilot:
		return p.Color("#4ade80")
	case domain.RoleCrew:
		return p.Color("#facc15")
	case domain.RoleSystem:
		return p.Color("#f87171")
	default:
		return p.Color("#e5e7eb")
	}
}

// Speaker renders a colored speaker prefix like "ATC:".
func Speaker(label string, role domain.Role) string {
	return termenv.String(label + ":").Foreground(RoleColor(role)).Bold().String()
}
