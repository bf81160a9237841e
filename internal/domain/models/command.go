package models

type CommandType string

const (
	CommandStart          CommandType = "/start"
	CommandHelp           CommandType = "/help"
	CommandAddAvito       CommandType = "/add_avito"
	CommandRename         CommandType = "/rename"
	CommandAccounts       CommandType = "/accounts"
	CommandDeleteAccount  CommandType = "/delete_account"
	CommandClearReminders CommandType = "/clear_reminders"
	CommandAvitoLink      CommandType = "/avito_link"
	CommandLink           CommandType = "/link"
	CommandUnlink         CommandType = "/unlink"
	CommandMute           CommandType = "/mute"
	CommandHours          CommandType = "/hours"
	CommandDigest         CommandType = "/digest"
	CommandUnknown        CommandType = "unknown"
)

type Command struct {
	Type     CommandType
	ChatID   int64
	UserID   int64
	Args     string
	Private  bool
	Group    bool
	Username string
}
