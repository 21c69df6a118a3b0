package domain

import "errors"

var (
	ErrChannelNameRequired    = errors.New("channel name is required")
	ErrChannelDetailsRequired = errors.New("channel details are required")
	ErrChannelNotFound        = errors.New("channel not found")
	ErrAlreadySubscribed      = errors.New("already subscribed")
	ErrNotSubscribed          = errors.New("not subscribed")
	ErrDecodeFailed           = errors.New("image decode failed")
	ErrUploadFailed           = errors.New("avatar upload failed")
	ErrPersistenceFailed      = errors.New("remote write failed")
	ErrPipelineStage          = errors.New("operation not valid in current pipeline stage")
	ErrIdentityNotFound       = errors.New("identity not found")
	ErrRecordNotFound         = errors.New("directory record not found")
	ErrBlobNotFound           = errors.New("blob not found")
	ErrNameTaken              = errors.New("display name already registered")
	ErrBadCredentials         = errors.New("invalid name or password")
)
