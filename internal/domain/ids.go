package domain

import "strconv"

// ChannelID identifies a chat channel. A ticket's channel doubles as its primary key.
type ChannelID int64

// UserID identifies a guild member.
type UserID int64

// MessageID identifies a message inside a channel.
type MessageID int64

func (c ChannelID) String() string { return strconv.FormatInt(int64(c), 10) }

func (u UserID) String() string { return strconv.FormatInt(int64(u), 10) }

func (m MessageID) String() string { return strconv.FormatInt(int64(m), 10) }

// ParseChannelID parses a decimal channel id.
func ParseChannelID(raw string) (ChannelID, error) {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return ChannelID(v), nil
}

// ParseUserID parses a decimal user id.
func ParseUserID(raw string) (UserID, error) {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return UserID(v), nil
}
