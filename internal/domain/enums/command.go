package enums

type CommandType string

const (
	CommandTypeKick   CommandType = "kick"
	CommandTypeMute   CommandType = "mute"
	CommandTypeUnmute CommandType = "unmute"
	CommandTypeWarn   CommandType = "warn"
)

func (t CommandType) Valid() bool {
	switch t {
	case CommandTypeKick, CommandTypeMute, CommandTypeUnmute, CommandTypeWarn:
		return true
	}
	return false
}

type CommandStatus string

const (
	CommandStatusPending   CommandStatus = "pending"
	CommandStatusDelivered CommandStatus = "delivered"
	CommandStatusExecuted  CommandStatus = "executed"
	CommandStatusFailed    CommandStatus = "failed"
)
