// Package result holds the value produced by one barcode or OCR attempt.
package result

// Outcome is the recognized text of a single attempt. It is never mutated
// after construction.
type Outcome struct {
	Text        string
	Success     bool
	Err         string
	FromBarcode bool
}

// Text is a successful OCR outcome; text may be empty.
func Text(text string) Outcome {
	return Outcome{Text: text, Success: true}
}

// Barcode is a successful barcode decode.
func Barcode(payload string) Outcome {
	return Outcome{Text: payload, Success: true, FromBarcode: true}
}

// Failure is an unsuccessful attempt with a user-facing message.
func Failure(msg string) Outcome {
	return Outcome{Err: msg}
}
