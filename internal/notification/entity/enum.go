package entity

// Channel is the transport a delivery goes out on. Values are persisted.
type Channel int16

const (
	ChannelUnknown Channel = 0
	ChannelSMS     Channel = 3
)

func (c Channel) String() string {
	if c == ChannelSMS {
		return "sms"
	}
	return "unknown"
}

// DeliveryStatus tracks one delivery log row. Values are persisted.
type DeliveryStatus int16

const (
	DeliveryStatusUnknown DeliveryStatus = 0
	DeliveryStatusQueued  DeliveryStatus = 1
	DeliveryStatusSent    DeliveryStatus = 3
	DeliveryStatusFailed  DeliveryStatus = 4
)

var deliveryStatusNames = map[DeliveryStatus]string{
	DeliveryStatusQueued: "queued",
	DeliveryStatusSent:   "sent",
	DeliveryStatusFailed: "failed",
}

func (s DeliveryStatus) String() string {
	if name, ok := deliveryStatusNames[s]; ok {
		return name
	}
	return "unknown"
}

// Final reports whether no further send will be attempted for the log.
func (s DeliveryStatus) Final() bool {
	return s == DeliveryStatusSent
}
