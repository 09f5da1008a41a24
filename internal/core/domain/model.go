package domain

import (
	"context"
	"strconv"
	"time"
)

type InteractionKind int

const (
	KindCommand InteractionKind = iota + 1
	KindComponent
)

// Interaction is one inbound, user-triggered request from the platform. It is converted once from the gateway
// payload and never mutated afterwards.
type Interaction struct {
	ID          string
	AppID       string
	Token       string
	Kind        InteractionKind
	CommandName string
	CustomID    string
	AuthorID    string
	AuthorName  string
	ChannelID   string
	GuildID     string
	Args        Args
	// Users maps the IDs of users passed as arguments to their display names.
	Users map[string]string
	// Embeds of the message a component is attached to.
	Embeds []Embed
}

// CreatedAt decodes the creation time embedded in the interaction snowflake.
func (i *Interaction) CreatedAt() (time.Time, error) {
	return SnowflakeTime(i.ID)
}

// Mention is a plain channel message that addressed the bot directly.
type Mention struct {
	MessageID  string
	ChannelID  string
	GuildID    string
	AuthorID   string
	AuthorName string
	Text       string
}

// Event is one item of the merged shard stream. Exactly one of Interaction and Mention is set.
type Event struct {
	Shard       int
	Interaction *Interaction
	Mention     *Mention
}

// Request is what a command receives on every invocation.
type Request struct {
	Shard       int
	Interaction *Interaction
	Ack         AckHandle
}

// AckHandle is the view a handler gets on the deferred acknowledgment of its interaction.
type AckHandle interface {
	State() AckState
	// Wait blocks until the acknowledgment has landed or failed.
	Wait(ctx context.Context) error
}

type ArgType int

const (
	ArgString ArgType = iota + 1
	ArgInteger
	ArgBoolean
	ArgUser
	ArgNumber
	ArgAttachment
)

type Arg struct {
	Name  string
	Type  ArgType
	Value any
}

// Args are the raw, already-resolved arguments of a command invocation.
type Args []Arg

func (a Args) find(name string, t ArgType) (any, bool) {
	for _, arg := range a {
		if arg.Name == name && arg.Type == t {
			return arg.Value, true
		}
	}

	return nil, false
}

func (a Args) String(name string) (string, bool) {
	v, ok := a.find(name, ArgString)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func (a Args) Int(name string) (int64, bool) {
	v, ok := a.find(name, ArgInteger)
	if !ok {
		return 0, false
	}
	i, ok := v.(int64)
	return i, ok
}

func (a Args) Bool(name string) (bool, bool) {
	v, ok := a.find(name, ArgBoolean)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// User returns the user ID passed for a user option.
func (a Args) User(name string) (string, bool) {
	v, ok := a.find(name, ArgUser)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Attachment returns the URL of an uploaded attachment option.
func (a Args) Attachment(name string) (AttachmentRef, bool) {
	v, ok := a.find(name, ArgAttachment)
	if !ok {
		return AttachmentRef{}, false
	}
	ref, ok := v.(AttachmentRef)
	return ref, ok
}

type AttachmentRef struct {
	URL      string
	Filename string
}

type OptionType int

const (
	OptionString OptionType = iota + 1
	OptionInteger
	OptionBoolean
	OptionUser
	OptionAttachment
)

// Schema is the platform-facing parameter spec of a command.
type Schema struct {
	Name        string
	Description string
	Options     []SchemaOption
}

type SchemaOption struct {
	Name        string
	Description string
	Type        OptionType
	Required    bool
	Choices     []string
	MinValue    *float64
}

// Content is everything a response can carry.
type Content struct {
	Text       string
	Embeds     []Embed
	Files      []File
	Components []Button
}

type Embed struct {
	Title       string
	Description string
	Footer      string
	// Image references an attachment by file name.
	Image string
	Color int
}

type File struct {
	Name        string
	ContentType string
	Data        []byte
}

type Button struct {
	CustomID string
	Label    string
	Emoji    string
}

// Response is the result of reading back an interaction's original response.
type Response struct {
	MessageID string
	Status    int
}

// OK reports whether the platform returned a 2xx status.
func (r Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

type DeliveryPath string

const (
	PathInitial   DeliveryPath = "initial"
	PathEdit      DeliveryPath = "edit"
	PathFollowup  DeliveryPath = "followup"
	PathChannel   DeliveryPath = "channel"
	PathAbandoned DeliveryPath = "abandoned"
)

type Author string

const (
	User   Author = "user"
	System Author = "system"
)

type Prompt struct {
	Prompt string
	Author Author
}

type ModelResponse struct {
	Response string
	Metadata ResponseMetadata
}

type ResponseMetadata struct {
	Model            string
	CompletionTokens int
	TotalTokens      int
}

const discordEpoch = 1420070400000

// SnowflakeTime extracts the millisecond timestamp a platform snowflake ID was minted at.
func SnowflakeTime(id string) (time.Time, error) {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return time.Time{}, err
	}

	return time.UnixMilli(int64(n>>22) + discordEpoch), nil
}
