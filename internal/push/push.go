package push

// Message is a single outbound push notification.
type Message struct {
	DeviceToken string
	Platform    string
	Title       string
	Body        string
	Data        map[string]string
}

// Sender delivers push messages to a device.
type Sender interface {
	Send(msg *Message) error
}
