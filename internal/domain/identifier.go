package domain

import "strings"

// IdentifierKind различает способы адресации канала
type IdentifierKind int

const (
	IdentifierHandle     IdentifierKind = iota // публичный @username
	IdentifierInviteHash                       // хеш из приватной invite-ссылки
)

func (k IdentifierKind) String() string {
	switch k {
	case IdentifierHandle:
		return "handle"
	case IdentifierInviteHash:
		return "invite_hash"
	default:
		return "unknown"
	}
}

// Identifier is a parsed channel identifier. It never touches the network.
type Identifier struct {
	Kind  IdentifierKind
	Value string
}

func Handle(name string) Identifier { return Identifier{Kind: IdentifierHandle, Value: name} }

func InviteHash(hash string) Identifier { return Identifier{Kind: IdentifierInviteHash, Value: hash} }

func (i Identifier) IsHandle() bool { return i.Kind == IdentifierHandle }

func (i Identifier) String() string { return i.Kind.String() + ":" + i.Value }

const deepLinkHost = "t.me/"

// ParseIdentifier разбирает строку вида @name, t.me/name, t.me/name/hash.
// Символы не валидируются: мусор превращается в (скорее всего невалидный) Handle,
// и ошибка всплывёт позже при резолве.
func ParseIdentifier(raw string) Identifier {
	if name, ok := strings.CutPrefix(raw, "@"); ok {
		return Handle(name)
	}

	rest := raw
	if idx := strings.LastIndex(raw, deepLinkHost); idx >= 0 {
		rest = raw[idx+len(deepLinkHost):]
	}

	parts := strings.Split(rest, "/")
	if len(parts) > 1 {
		return InviteHash(parts[1])
	}
	return Handle(parts[0])
}
