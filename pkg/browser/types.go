package browser

// ConsoleMessage is a captured browser console message.
type ConsoleMessage struct {
	Level string `json:"level"` // "log", "warn", "error", "info"
	Text  string `json:"text"`
}

// RequestEntry records one network request and, once received, its
// response status. Status stays "pending" until the response arrives.
type RequestEntry struct {
	Method string `json:"method"`
	URL    string `json:"url"`
	Status string `json:"status"` // "pending" or HTTP status, e.g. "200"
}

// DialogInfo describes a native dialog event raised by the page.
type DialogInfo struct {
	Kind          string // "alert", "confirm", "prompt", "beforeunload"
	Message       string
	DefaultPrompt string
}

// FileChooserInfo describes an intercepted file-chooser opening.
type FileChooserInfo struct {
	Multiple bool
}

// PageInfo is the current URL and title of a page.
type PageInfo struct {
	URL   string
	Title string
}
