package domain

type ChannelID string
type UserID string

// Creator is the denormalized author snapshot embedded in every channel
// record. It is copied from the creator's identity at creation time and
// never updated afterwards.
type Creator struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatar"`
}

// Channel is a single record in the remote channel log. Records are
// immutable once appended; there is no edit or delete operation.
type Channel struct {
	ID        ChannelID `json:"id"`
	Name      string    `json:"name"`
	Details   string    `json:"details"`
	CreatedBy Creator   `json:"createdBy"`
}

// Identity is the caller's own account record, owned by the identity
// store. The core only ever writes AvatarURL.
type Identity struct {
	UID         UserID `json:"uid"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl"`
}

// DirectoryRecord is the per-user profile snapshot kept in the user
// directory, used to render channel creators and member lists. It is an
// eventually consistent copy of identity fields, not the authoritative
// record.
type DirectoryRecord struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatar"`
}
