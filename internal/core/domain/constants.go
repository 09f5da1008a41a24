package domain

import "errors"

var (
	ErrAlreadyAcknowledged = errors.New("interaction has already been acknowledged")
	ErrResponseMissing     = errors.New("original interaction response is not available")
	ErrNoChannel           = errors.New("interaction has no channel to fall back to")
	ErrShardFatal          = errors.New("fatal shard connection error")
	ErrCommandNotFound     = errors.New("command not found")
	ErrUnsupportedEvent    = errors.New("unsupported interaction event")
	ErrHandlerPanic        = errors.New("command handler panicked")
	ErrDuplicateCommand    = errors.New("command already exists")
	ErrDuplicateEntry      = errors.New("entry already exists")
)

const (
	UnhandledCommandNotice = "❌ Unhandled command: this command has not yet been implemented"
	MaintenanceNotice      = "❌ Test mode is enabled and the command will be ignored\n" +
		"If you think this is not intentional, message the bot owner."
	RateLimitedNotice   = "⏳ You're sending commands too fast, slow down a little."
	GenericFailureTitle = "❌ An error has occurred, tell the bot owner about it"
	NotOwnerNotice      = "❌ You're definitely not the bot owner"
)
