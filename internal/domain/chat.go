package domain

type ChatKind int

const (
	ChatUnknown ChatKind = iota
	ChatPrivate
	ChatGroup
	ChatSupergroup
)

// ParseChatKind maps a Telegram chat type string to a ChatKind. Dispatch on
// chat kind happens once at the update boundary, never per handler.
func ParseChatKind(t string) ChatKind {
	switch t {
	case "private":
		return ChatPrivate
	case "group":
		return ChatGroup
	case "supergroup":
		return ChatSupergroup
	}
	return ChatUnknown
}

func (k ChatKind) IsGroup() bool {
	return k == ChatGroup || k == ChatSupergroup
}
