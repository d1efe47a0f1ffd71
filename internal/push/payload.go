package push

// Payload is the JSON document handed to the service worker. The field names
// line up with what the web client's notificationclick handler expects.
type Payload struct {
	Title string         `json:"title"`
	Body  string         `json:"body"`
	Icon  string         `json:"icon"`
	Badge string         `json:"badge"`
	Data  map[string]any `json:"data"`
}

const (
	defaultIcon  = "/favicon.png"
	defaultBadge = "/favicon.png"
	defaultURL   = "/#notifications"
)

// NewPayload builds a payload with the standard icon set. When the data map
// carries no target url the client falls back to the notifications view.
func NewPayload(title, body string, data map[string]any) Payload {
	if data == nil {
		data = map[string]any{}
	}
	if _, ok := data["url"]; !ok {
		data["url"] = defaultURL
	}
	return Payload{
		Title: title,
		Body:  body,
		Icon:  defaultIcon,
		Badge: defaultBadge,
		Data:  data,
	}
}
