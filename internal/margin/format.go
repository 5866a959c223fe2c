package margin

import (
	"strconv"
	"strings"

	"github.com/fekuna/omnipos-margin-service/internal/model"
)

type FormatStyle string

const (
	FormatInline FormatStyle = "inline"
	FormatList   FormatStyle = "list"
	FormatFull   FormatStyle = "full"
)

// ParseFormatStyle maps a query-string value to a style, defaulting to full.
func ParseFormatStyle(raw string) FormatStyle {
	switch FormatStyle(raw) {
	case FormatInline:
		return FormatInline
	case FormatList:
		return FormatList
	default:
		return FormatFull
	}
}

// FormatMarginInfo renders a margin record as an HTML fragment for the admin
// list screens. Percentages always use 1 decimal place; currency amounts use
// the configured decimal places. A nil record, or options that hide every
// line, produce an empty string - the formatter never invents a margin line.
func FormatMarginInfo(info *model.MarginInfo, style FormatStyle, opts model.DisplayOptions) string {
	if info == nil {
		return ""
	}

	parts := []string{}
	if opts.ShowMarginPercentage {
		parts = append(parts, "Margin: "+strconv.FormatFloat(info.MarginPercentage, 'f', 1, 64)+"%")
	}
	if opts.ShowPriceWithoutMargin {
		parts = append(parts, "Price without margin: "+formatAmount(info.PriceWithoutMargin, opts.DecimalPlaces))
	}

	if len(parts) == 0 {
		return ""
	}

	switch style {
	case FormatInline:
		return strings.Join(parts, " | ")
	case FormatList:
		return "<ul><li>" + strings.Join(parts, "</li><li>") + "</li></ul>"
	default:
		return `<div class="margin-info">` + strings.Join(parts, "<br>") + "</div>"
	}
}

func formatAmount(value float64, decimalPlaces int) string {
	if decimalPlaces < 0 {
		decimalPlaces = 0
	}
	return strconv.FormatFloat(value, 'f', decimalPlaces, 64)
}
