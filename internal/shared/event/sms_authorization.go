package event

const SMSAuthorizationRequestedDestination string = "sms_authorization_requested"
const SMSAuthorizationRequestedConsumerNotification string = "sms_authorization_requested_notification"

// SMSAuthorizationRequestedMessage asks the notification module to deliver an
// authorization text. The text already contains the code.
type SMSAuthorizationRequestedMessage struct {
	MessageID      string `json:"message_id"`
	UserID         string `json:"user_id"`
	OrganizationID string `json:"organization_id"`
	OperationID    string `json:"operation_id"`
	OperationName  string `json:"operation_name"`
	MessageText    string `json:"message_text"`
}
