package domain

// EntityKind тип сущности, которую вернул резолв username
type EntityKind int

const (
	EntityUser EntityKind = iota
	EntityBasicGroup
	EntityChannel    // broadcast-канал
	EntitySupergroup // мегагруппа, в протоколе тоже канал
)

func (k EntityKind) String() string {
	switch k {
	case EntityUser:
		return "user"
	case EntityBasicGroup:
		return "basic_group"
	case EntityChannel:
		return "channel"
	case EntitySupergroup:
		return "supergroup"
	default:
		return "unknown"
	}
}

// IsChannel reports whether the entity can be addressed as a channel.
func (k EntityKind) IsChannel() bool {
	return k == EntityChannel || k == EntitySupergroup
}

// Entity is one resolution candidate.
type Entity struct {
	Kind       EntityKind
	ID         int64
	AccessHash int64
	Title      string
}

// ChannelReference адресует канал во всех последующих вызовах.
// Строится только из успешно разрезолвленного Handle.
type ChannelReference struct {
	ID         int64
	AccessHash int64
}

// Message описывает сообщение из истории канала
type Message struct {
	ID   int64
	Date int32
	Text string
}

// ReportReason категория жалобы. Используется только ReportReasonViolence.
type ReportReason int

const (
	ReportReasonViolence ReportReason = iota
)

func (r ReportReason) String() string {
	if r == ReportReasonViolence {
		return "violence"
	}
	return "unknown"
}

// ReportOutcome результат обработки одного идентификатора
type ReportOutcome struct {
	Identifier string
	Message    string
	Success    bool
	Err        error
}

// MembershipAction join или leave
type MembershipAction int

const (
	ActionJoin MembershipAction = iota
	ActionLeave
)

func (a MembershipAction) String() string {
	switch a {
	case ActionJoin:
		return "join"
	case ActionLeave:
		return "leave"
	default:
		return "unknown"
	}
}

type MembershipOutcome struct {
	Identifier string
	Action     MembershipAction
	Success    bool
	Err        error
}
