package enums

type ChatEntryType string

const (
	ChatEntryTypeMessage      ChatEntryType = "message"
	ChatEntryTypeNotification ChatEntryType = "notification"
	ChatEntryTypeCommand      ChatEntryType = "command"
)
