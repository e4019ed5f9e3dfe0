package gui

import "fyne.io/fyne/v2"

// Page with text lines under a dashed capture rectangle.
const iconSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 16 16" width="16" height="16">
  <rect x="3" y="2" width="10" height="12" rx="1" fill="#ffffff" stroke="#333333" stroke-width="0.8"/>
  <line x1="5" y1="5" x2="11" y2="5" stroke="#333333" stroke-width="0.8" stroke-linecap="round"/>
  <line x1="5" y1="7.5" x2="11" y2="7.5" stroke="#333333" stroke-width="0.8" stroke-linecap="round"/>
  <line x1="5" y1="10" x2="9" y2="10" stroke="#333333" stroke-width="0.8" stroke-linecap="round"/>
  <rect x="1.5" y="3.5" width="13" height="8" fill="none" stroke="#0078d4" stroke-width="1.2" stroke-dasharray="2,1" opacity="0.8"/>
</svg>`

// Icon is the application and window icon.
var Icon = fyne.NewStaticResource("spectacle-ocr.svg", []byte(iconSVG))
