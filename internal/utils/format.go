package utils

import (
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var blankLine = regexp.MustCompile(`\n\s*\n`)

// notAvailable stands in for amounts that are not finite numbers
const notAvailable = "n/a"

func finite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}

// FormatCurrency renders an amount as dollars with cents and thousands separators
func FormatCurrency(value float64) string {
	if !finite(value) {
		return notAvailable
	}
	amount := decimal.NewFromFloat(value).Round(2)

	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Abs()
	}

	fixed := amount.StringFixed(2)
	whole, cents, _ := strings.Cut(fixed, ".")
	return sign + "$" + groupThousands(whole) + "." + cents
}

// FormatPercent renders a rate such as 16.5 as "16.50%"
func FormatPercent(value float64) string {
	if !finite(value) {
		return notAvailable
	}
	return decimal.NewFromFloat(value).StringFixed(2) + "%"
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var builder strings.Builder
	head := len(digits) % 3
	if head > 0 {
		builder.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if builder.Len() > 0 {
			builder.WriteByte(',')
		}
		builder.WriteString(digits[i : i+3])
	}
	return builder.String()
}

// SplitParagraphs splits generated text on blank lines, dropping empty paragraphs
func SplitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var paragraphs []string
	for _, part := range blankLine.Split(text, -1) {
		if p := strings.TrimSpace(part); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}
