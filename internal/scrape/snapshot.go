package scrape

// Snapshot is the structured view of one rendered product page, assembled
// by the orchestrator from the renderer's interrogation rounds (or built
// directly from static markup for server-rendered retailers). Everything
// downstream of the renderer operates on this value; extractors and
// policies never touch the live page.
type Snapshot struct {
	URL            string
	ViewportHeight float64
	PriceTexts     []PriceText
	Controls       []Control
	StatusTexts    []string
	ChannelTexts   map[string]string
	Markup         string
}

// PriceText is one text node that looked price-like to the interrogation
// script, with enough geometry to judge visibility.
type PriceText struct {
	Text    string  `json:"text"`
	Context string  `json:"context"`
	FontPx  float64 `json:"fontPx"`
	Top     float64 `json:"top"`
	Left    float64 `json:"left"`
	Height  float64 `json:"height"`
}

// Control is one clickable buy-path control (button or button-like link).
type Control struct {
	Label    string  `json:"label"`
	Disabled bool    `json:"disabled"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
}

// defaultViewportHeight is assumed when the snapshot carries no viewport
// geometry (static-markup snapshots).
const defaultViewportHeight = 900.0

func (s *Snapshot) viewportHeight() float64 {
	if s.ViewportHeight > 0 {
		return s.ViewportHeight
	}
	return defaultViewportHeight
}
