package main

import (
	"strconv"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var countPrinter = message.NewPrinter(language.English)

// formatCount renders n with thousands separators.
func formatCount(n int64) string {
	return countPrinter.Sprintf("%d", n)
}

func formatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

func shortDigest(sum string) string {
	if len(sum) <= 12 {
		return sum
	}
	return sum[:12]
}

// percent renders part as a share of total, or "-" when total is zero.
func percent(part, total int64) string {
	if total <= 0 {
		return "-"
	}
	return strconv.FormatFloat(float64(part)*100/float64(total), 'f', 1, 64) + "%"
}
