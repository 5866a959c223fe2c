package margin

import (
	"testing"

	"github.com/fekuna/omnipos-margin-service/internal/model"
)

func sampleInfo() *model.MarginInfo {
	return &model.MarginInfo{
		Category:           "premium",
		MarginPercentage:   30,
		PriceWithMargin:    130,
		PriceWithoutMargin: 100,
		MarginAmount:       30,
	}
}

func TestFormatMarginInfoStyles(t *testing.T) {
	opts := model.DefaultDisplayOptions()

	tests := []struct {
		name  string
		style FormatStyle
		want  string
	}{
		{"inline", FormatInline, "Margin: 30.0% | Price without margin: 100.00"},
		{"list", FormatList, "<ul><li>Margin: 30.0%</li><li>Price without margin: 100.00</li></ul>"},
		{"full", FormatFull, `<div class="margin-info">Margin: 30.0%<br>Price without margin: 100.00</div>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatMarginInfo(sampleInfo(), tt.style, opts); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatMarginInfoNilRecord(t *testing.T) {
	if got := FormatMarginInfo(nil, FormatFull, model.DefaultDisplayOptions()); got != "" {
		t.Errorf("nil record should format to empty string, got %q", got)
	}
}

func TestFormatMarginInfoAllLinesHidden(t *testing.T) {
	opts := model.DefaultDisplayOptions()
	opts.ShowMarginPercentage = false
	opts.ShowPriceWithoutMargin = false

	if got := FormatMarginInfo(sampleInfo(), FormatInline, opts); got != "" {
		t.Errorf("expected empty string when every line is hidden, got %q", got)
	}
}

func TestFormatMarginInfoDecimalPlaces(t *testing.T) {
	opts := model.DefaultDisplayOptions()
	opts.ShowMarginPercentage = false
	opts.DecimalPlaces = 0

	if got := FormatMarginInfo(sampleInfo(), FormatInline, opts); got != "Price without margin: 100" {
		t.Errorf("got %q", got)
	}

	opts.DecimalPlaces = -3
	if got := FormatMarginInfo(sampleInfo(), FormatInline, opts); got != "Price without margin: 100" {
		t.Errorf("negative decimal places should clamp to 0, got %q", got)
	}
}

func TestParseFormatStyle(t *testing.T) {
	if got := ParseFormatStyle("inline"); got != FormatInline {
		t.Errorf("got %q", got)
	}
	if got := ParseFormatStyle("list"); got != FormatList {
		t.Errorf("got %q", got)
	}
	if got := ParseFormatStyle(""); got != FormatFull {
		t.Errorf("empty style should default to full, got %q", got)
	}
	if got := ParseFormatStyle("bogus"); got != FormatFull {
		t.Errorf("unknown style should default to full, got %q", got)
	}
}
