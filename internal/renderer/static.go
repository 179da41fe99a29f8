package renderer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"mstern/restockwatch/helpers"
	"mstern/restockwatch/internal/scrape"
	"mstern/restockwatch/logger"
)

// staticRenderer serves retailers whose product pages arrive fully formed
// in the initial markup. It fetches the page over plain HTTP with
// browser-like headers and answers the interrogation scripts from the
// parsed document instead of a live page. Geometry is unknown in this
// mode, so elements are reported with nominal non-zero size and in-viewport
// position.
type staticRenderer struct {
	doc    *goquery.Document
	markup string
	log    *logger.Logger
}

func newStaticRenderer() Renderer {
	return &staticRenderer{log: logger.ForRenderer()}
}

var staticCurrencyRe = regexp.MustCompile(`\$\d[\d,]*(?:\.\d{1,2})?`)

const (
	controlSelector = "button, input[type='submit'], a[role='button'], a.btn, a.button"
	statusSelector  = "button, [class*='availability'], [class*='fulfillment'], [class*='status'], [class*='stock'], [class*='condition'], [class*='error'], [class*='sold-out'], [class*='unavailable']"
)

func (s *staticRenderer) Load(ctx context.Context, url, userAgent string) error {
	body, err := helpers.FetchWithBrowserHeaders(url, userAgent)
	if err != nil {
		return err
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("failed to read page body: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(raw)))
	if err != nil {
		return fmt.Errorf("failed to parse page markup: %w", err)
	}

	s.doc = doc
	s.markup = string(raw)
	s.log.Debug().Str("url", url).Int("bytes", len(raw)).Msg("Fetched static page")
	return nil
}

// Evaluate answers the known interrogation scripts from the parsed
// document. The result is marshalled through JSON so out gets the same
// shapes a live script evaluation would produce.
func (s *staticRenderer) Evaluate(ctx context.Context, js string, out interface{}) error {
	if s.doc == nil {
		return fmt.Errorf("no page loaded")
	}

	var result interface{}
	switch js {
	case PriceScript:
		result = s.priceTexts()
	case ControlScript:
		result = s.controls()
	case StatusScript:
		result = StatusPayload{StatusTexts: s.statusTexts(), Channels: map[string]string{}}
	case ReadyStateScript:
		result = "complete"
	default:
		return fmt.Errorf("unknown interrogation script")
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (s *staticRenderer) Markup(ctx context.Context) (string, error) {
	if s.doc == nil {
		return "", fmt.Errorf("no page loaded")
	}
	return s.markup, nil
}

func (s *staticRenderer) Close() error {
	s.doc = nil
	s.markup = ""
	return nil
}

func (s *staticRenderer) priceTexts() []scrape.PriceText {
	var out []scrape.PriceText
	s.doc.Find("span, div, p, td, li, b, strong, h1, h2, h3").Each(func(_ int, sel *goquery.Selection) {
		if sel.Children().Length() > 0 {
			return
		}
		text := strings.TrimSpace(sel.Text())
		if text == "" || len(text) > 160 || !staticCurrencyRe.MatchString(text) {
			return
		}
		context := ""
		if parent := sel.Parent(); parent.Length() > 0 {
			context = strings.TrimSpace(parent.Text())
			if len(context) > 200 {
				context = context[:200]
			}
		}
		out = append(out, scrape.PriceText{
			Text:    text,
			Context: context,
			Height:  1, // geometry unknown; mark as rendered
		})
	})
	return out
}

func (s *staticRenderer) controls() []scrape.Control {
	var out []scrape.Control
	s.doc.Find(controlSelector).Each(func(_ int, sel *goquery.Selection) {
		label := strings.TrimSpace(sel.Text())
		if label == "" {
			label = strings.TrimSpace(sel.AttrOr("value", ""))
		}

		_, hasDisabledAttr := sel.Attr("disabled")
		disabled := hasDisabledAttr ||
			sel.AttrOr("aria-disabled", "") == "true" ||
			sel.HasClass("disabled")

		out = append(out, scrape.Control{
			Label:    label,
			Disabled: disabled,
			Width:    1,
			Height:   1,
		})
	})
	return out
}

func (s *staticRenderer) statusTexts() []string {
	var out []string
	s.doc.Find(statusSelector).Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text != "" && len(text) <= 300 {
			out = append(out, text)
		}
	})
	return out
}
