package renderer

// Fixed, versioned interrogation scripts evaluated against the rendered
// page. The core's logic is tested against the structured results these
// return, not against script execution itself.

// PriceScript collects every leaf element whose rendered text carries a
// dollar amount, with geometry and font size. Result: []scrape.PriceText.
const PriceScript = `(() => {
  const out = [];
  const re = /\$\d[\d,]*(?:\.\d{1,2})?/;
  const walker = document.createTreeWalker(document.body, NodeFilter.SHOW_ELEMENT);
  while (walker.nextNode()) {
    const el = walker.currentNode;
    if (el.children.length > 0) continue;
    const text = (el.textContent || '').trim();
    if (!text || text.length > 160 || !re.test(text)) continue;
    const rect = el.getBoundingClientRect();
    const style = window.getComputedStyle(el);
    const parentText = el.parentElement ? (el.parentElement.textContent || '').trim().slice(0, 200) : '';
    out.push({
      text: text,
      context: parentText,
      fontPx: parseFloat(style.fontSize) || 0,
      top: rect.top,
      left: rect.left,
      height: rect.height,
    });
    if (out.length >= 50) break;
  }
  return out;
})()`

// ControlScript collects every clickable buy-path control with its label,
// disabled state and rendered size. Result: []scrape.Control.
const ControlScript = `(() => {
  const out = [];
  const els = document.querySelectorAll("button, input[type='submit'], a[role='button'], a.btn, a.button");
  for (const el of els) {
    const rect = el.getBoundingClientRect();
    const label = (el.innerText || el.value || '').trim();
    out.push({
      label: label,
      disabled: el.disabled === true || el.getAttribute('aria-disabled') === 'true' || el.classList.contains('disabled'),
      width: rect.width,
      height: rect.height,
    });
  }
  return out;
})()`

// StatusScript collects, in document order, the text of every button and
// every element whose class hints at availability/fulfillment/status/
// condition/error semantics, plus the per-channel fulfillment region texts
// (reported separately so channel verdicts stay out of the dealbreaker
// scan). Result: StatusPayload.
const StatusScript = `(() => {
  const texts = [];
  const sel = "button, [class*='availability'], [class*='fulfillment'], [class*='status'], [class*='stock'], [class*='condition'], [class*='error'], [class*='sold-out'], [class*='unavailable']";
  for (const el of document.querySelectorAll(sel)) {
    if (el.closest("[data-test*='fulfillment-cell']")) continue;
    const t = (el.innerText || '').trim();
    if (t && t.length <= 300) texts.push(t);
  }
  const channels = {};
  const cells = {
    shipping: "[data-test='fulfillment-cell-shipping']",
    pickup: "[data-test='fulfillment-cell-pickup']",
    delivery: "[data-test='fulfillment-cell-delivery']",
  };
  for (const name in cells) {
    const el = document.querySelector(cells[name]);
    if (el) channels[name] = (el.innerText || '').trim();
  }
  return { statusTexts: texts, channels: channels, viewportHeight: window.innerHeight };
})()`

// ReadyStateScript probes whether client-side rendering finished before
// extraction runs.
const ReadyStateScript = `document.readyState`
