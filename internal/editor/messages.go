package editor

// Messages holds the user-facing strings of the editor.
type Messages struct {
	SelectGallery string
	NewGallery    string
	Load          string
	AreYouSure    string
	Failed        string
	Errors        map[string]string
}

// DefaultMessages returns the stock English strings.
func DefaultMessages() Messages {
	return Messages{
		SelectGallery: "Select gallery or name a new gallery...",
		NewGallery:    "New gallery...",
		Load:          "Load",
		AreYouSure:    "Are you sure you want to replace the images in this gallery?",
		Failed:        "Failed!",
		Errors: map[string]string{
			"empty-name":    "Empty gallery name",
			"invalid-input": "Missing IDs",
			"need-confirm":  "Are you sure you want to replace this gallery?",
		},
	}
}

// ErrorText picks the localized message for an error code, falling back
// to the server message and then to Failed.
func (m Messages) ErrorText(code, serverMessage string) string {
	if text, ok := m.Errors[code]; ok && text != "" {
		return text
	}
	if serverMessage != "" {
		return serverMessage
	}
	return m.Failed
}
