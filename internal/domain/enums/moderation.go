package enums

type ActionType string

const (
	ActionTypeKick   ActionType = "kick"
	ActionTypeBan    ActionType = "ban"
	ActionTypeUnban  ActionType = "unban"
	ActionTypeMute   ActionType = "mute"
	ActionTypeUnmute ActionType = "unmute"
)

func (a ActionType) Valid() bool {
	switch a {
	case ActionTypeKick, ActionTypeBan, ActionTypeUnban, ActionTypeMute, ActionTypeUnmute:
		return true
	}
	return false
}

type ActionScope string

const (
	ActionScopeServer ActionScope = "server"
	ActionScopeGlobal ActionScope = "global"
)

type BanType string

const (
	BanTypePermanent BanType = "permanent"
	BanTypeTemporary BanType = "temporary"
	BanTypeServer    BanType = "server"
)

type ActionStatus string

const (
	ActionStatusSuccess ActionStatus = "success"
	ActionStatusFailed  ActionStatus = "failed"
)
