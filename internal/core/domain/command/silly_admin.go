package command

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"takabot/internal/core/domain"
	"takabot/internal/core/port"
	"takabot/internal/core/service"
)

const (
	unknownSillyMessage   = "❌ This command does not exist"
	reloadReminder        = "You should now try to use /reload_commands to see it appear!"
	sillyTypeAuthorOnly   = "author_only"
	sillyTypeSingleUser   = "single_user"
	invalidNameMessage    = "❌ Command names have to be 1-32 lowercase letters, digits, dashes or underscores"
	builtinNameMessage    = "❌ A built-in command already uses that name"
	duplicateNameMessage  = "❌ This command already exists"
	missingExtMessage     = "❌ Couldn't find file extension."
	unknownPrefMessage    = "❌ Unknown preference, add it with /add_preference first"
	reservedPrefMessage   = "❌ ALL is reserved and matches every image"
	duplicatePrefMessage  = "❌ This preference already exists"
	missingOptionsMessage = "❌ Some options are missing"
)

var commandName = regexp.MustCompile(`^[-_\p{Ll}\p{N}]{1,32}$`)

// lookupSilly fetches a silly command and maps absence to a user-facing failure.
func lookupSilly(ctx context.Context, store port.SillyStore, name string) (*domain.SillyCommand, domain.Outcome,
	bool) {
	cmd, err := store.LookupByName(ctx, name)
	if err != nil {
		return nil, domain.Faultf(err, "failed to look up silly command %q", name), false
	}

	if cmd == nil {
		return nil, domain.Fail(unknownSillyMessage), false
	}

	return cmd, domain.Outcome{}, true
}

type CreateSillyCommand struct {
	responder port.Responder
	store     port.SillyStore
	registry  port.CommandRegistry
	auth      service.Authorizer
	command   string
}

func NewCreateSillyCommand(responder port.Responder, store port.SillyStore, registry port.CommandRegistry,
	auth service.Authorizer) *CreateSillyCommand {
	return &CreateSillyCommand{
		responder: responder,
		store:     store,
		registry:  registry,
		auth:      auth,
		command:   "create_silly_command",
	}
}

func (c *CreateSillyCommand) GetCommand() string {
	return c.command
}

func (c *CreateSillyCommand) Schema() domain.Schema {
	return domain.Schema{
		Name:        c.command,
		Description: "Create a silly command (owner only)",
		Options: []domain.SchemaOption{
			{
				Name:        "command_type",
				Description: "Type of command",
				Type:        domain.OptionString,
				Required:    true,
				Choices:     []string{sillyTypeAuthorOnly, sillyTypeSingleUser},
			},
			{Name: "name", Description: "The name of the command", Type: domain.OptionString, Required: true},
			{Name: "description", Description: "The description", Type: domain.OptionString, Required: true},
			{Name: "footer_text", Description: "The footer text", Type: domain.OptionString, Required: true},
		},
	}
}

func (c *CreateSillyCommand) Respond(ctx context.Context, req *domain.Request) domain.Outcome {
	if outcome, ok := ownerOnly(c.auth, req); !ok {
		return outcome
	}

	args := req.Interaction.Args
	kindName, okKind := args.String("command_type")
	name, okName := args.String("name")
	description, okDesc := args.String("description")
	footer, okFooter := args.String("footer_text")
	if !okKind || !okName || !okDesc || !okFooter {
		return domain.Fail(missingOptionsMessage)
	}

	var kind domain.SillyKind
	switch kindName {
	case sillyTypeAuthorOnly:
		kind = domain.AuthorOnly
	case sillyTypeSingleUser:
		kind = domain.SingleUser
	default:
		return domain.Failf("❌ Unknown command type %q", kindName)
	}

	if !commandName.MatchString(name) {
		return domain.Fail(invalidNameMessage)
	}

	if _, ok := c.registry.Get(name); ok {
		return domain.Fail(builtinNameMessage)
	}

	id, err := c.store.Create(ctx, domain.SillyCommand{
		Name:        name,
		Description: description,
		FooterText:  footer,
		Kind:        kind,
	})
	if errors.Is(err, domain.ErrDuplicateCommand) {
		return domain.Fail(duplicateNameMessage)
	}
	if err != nil {
		return domain.Faultf(err, "failed to create silly command")
	}

	return deliverText(ctx, c.responder, req, fmt.Sprintf("Command has been created with id %d\n%s", id,
		reloadReminder))
}

type AddSillyText struct {
	responder port.Responder
	store     port.SillyStore
	auth      service.Authorizer
	command   string
}

func NewAddSillyText(responder port.Responder, store port.SillyStore, auth service.Authorizer) *AddSillyText {
	return &AddSillyText{responder: responder, store: store, auth: auth, command: "add_silly_text"}
}

func (a *AddSillyText) GetCommand() string {
	return a.command
}

func (a *AddSillyText) Schema() domain.Schema {
	return domain.Schema{
		Name:        a.command,
		Description: "Add a silly text (owner only)",
		Options: []domain.SchemaOption{
			{Name: "name", Description: "The name of the command", Type: domain.OptionString, Required: true},
			{Name: "text", Description: "Text, may use {author} and {user}", Type: domain.OptionString,
				Required: true},
			{Name: "author", Description: "Used when targeting yourself", Type: domain.OptionBoolean,
				Required: true},
		},
	}
}

func (a *AddSillyText) Respond(ctx context.Context, req *domain.Request) domain.Outcome {
	if outcome, ok := ownerOnly(a.auth, req); !ok {
		return outcome
	}

	args := req.Interaction.Args
	name, okName := args.String("name")
	text, okText := args.String("text")
	self, okSelf := args.Bool("author")
	if !okName || !okText || !okSelf {
		return domain.Fail(missingOptionsMessage)
	}

	id, err := a.store.AddText(ctx, name, text, self)
	if errors.Is(err, domain.ErrCommandNotFound) {
		return domain.Fail(unknownSillyMessage)
	}
	if err != nil {
		return domain.Faultf(err, "failed to add silly text")
	}

	return deliverText(ctx, a.responder, req, fmt.Sprintf("Text has been created with id %d for command %s", id,
		name))
}

type AddSillyImage struct {
	responder port.Responder
	store     port.SillyStore
	assets    port.AssetStore
	auth      service.Authorizer
	command   string
}

func NewAddSillyImage(responder port.Responder, store port.SillyStore, assets port.AssetStore,
	auth service.Authorizer) *AddSillyImage {
	return &AddSillyImage{
		responder: responder,
		store:     store,
		assets:    assets,
		auth:      auth,
		command:   "add_silly_image",
	}
}

func (a *AddSillyImage) GetCommand() string {
	return a.command
}

func (a *AddSillyImage) Schema() domain.Schema {
	return domain.Schema{
		Name:        a.command,
		Description: "Add a silly image (owner only)",
		Options: []domain.SchemaOption{
			{Name: "name", Description: "The name of the command", Type: domain.OptionString, Required: true},
			{Name: "attachment", Description: "The image to add", Type: domain.OptionAttachment, Required: true},
			{Name: "author", Description: "Used when targeting yourself", Type: domain.OptionBoolean,
				Required: true},
			{Name: "preference", Description: "What the image shows", Type: domain.OptionString},
		},
	}
}

func (a *AddSillyImage) Respond(ctx context.Context, req *domain.Request) domain.Outcome {
	if outcome, ok := ownerOnly(a.auth, req); !ok {
		return outcome
	}

	l := commandLogger(a.command, req)

	args := req.Interaction.Args
	name, okName := args.String("name")
	attachment, okAttachment := args.Attachment("attachment")
	self, okSelf := args.Bool("author")
	if !okName || !okAttachment || !okSelf {
		return domain.Fail(missingOptionsMessage)
	}
	preference, _ := args.String("preference")

	extension := strings.TrimPrefix(filepath.Ext(attachment.Filename), ".")
	if extension == "" {
		return domain.Fail(missingExtMessage)
	}

	cmd, outcome, ok := lookupSilly(ctx, a.store, name)
	if !ok {
		return outcome
	}

	if preference != "" && preference != domain.PreferenceAll && !slices.Contains(cmd.Preferences, preference) {
		return domain.Fail(unknownPrefMessage)
	}

	data, err := a.assets.Download(ctx, attachment.URL)
	if err != nil {
		return domain.Faultf(err, "failed to download attachment")
	}

	path, err := a.assets.Save(data, extension)
	if err != nil {
		return domain.Faultf(err, "failed to store image")
	}

	l.Debug().Str("path", path).Int("bytes", len(data)).Msg("stored silly image")

	id, err := a.store.AddImage(ctx, name, path, preference, self)
	if err != nil {
		return domain.Faultf(err, "failed to add silly image")
	}

	return deliverText(ctx, a.responder, req, fmt.Sprintf("Image has been created with id %d for command %s", id,
		name))
}

type AddPreference struct {
	responder port.Responder
	store     port.SillyStore
	auth      service.Authorizer
	command   string
}

func NewAddPreference(responder port.Responder, store port.SillyStore, auth service.Authorizer) *AddPreference {
	return &AddPreference{responder: responder, store: store, auth: auth, command: "add_preference"}
}

func (a *AddPreference) GetCommand() string {
	return a.command
}

func (a *AddPreference) Schema() domain.Schema {
	return domain.Schema{
		Name:        a.command,
		Description: "Add a preference to a silly command (owner only)",
		Options: []domain.SchemaOption{
			{Name: "name", Description: "The name of the command", Type: domain.OptionString, Required: true},
			{Name: "preference", Description: "The preference", Type: domain.OptionString, Required: true},
		},
	}
}

func (a *AddPreference) Respond(ctx context.Context, req *domain.Request) domain.Outcome {
	if outcome, ok := ownerOnly(a.auth, req); !ok {
		return outcome
	}

	args := req.Interaction.Args
	name, okName := args.String("name")
	preference, okPref := args.String("preference")
	if !okName || !okPref || preference == "" {
		return domain.Fail(missingOptionsMessage)
	}

	if strings.EqualFold(preference, domain.PreferenceAll) {
		return domain.Fail(reservedPrefMessage)
	}

	cmd, outcome, ok := lookupSilly(ctx, a.store, name)
	if !ok {
		return outcome
	}

	if slices.Contains(cmd.Preferences, preference) {
		return domain.Fail(duplicatePrefMessage)
	}

	err := a.store.AddPreference(ctx, name, preference)
	if errors.Is(err, domain.ErrDuplicateEntry) {
		return domain.Fail(duplicatePrefMessage)
	}
	if err != nil {
		return domain.Faultf(err, "failed to add preference")
	}

	return deliverText(ctx, a.responder, req, "✅ Done! "+reloadReminder)
}

// SillyInfo summarises what a silly command has to offer.
type SillyInfo struct {
	responder port.Responder
	store     port.SillyStore
	command   string
}

func NewSillyInfo(responder port.Responder, store port.SillyStore) *SillyInfo {
	return &SillyInfo{responder: responder, store: store, command: "silly_command"}
}

func (s *SillyInfo) GetCommand() string {
	return s.command
}

func (s *SillyInfo) Schema() domain.Schema {
	return domain.Schema{
		Name:        s.command,
		Description: "Get all data of a silly command",
		Options: []domain.SchemaOption{
			{Name: "name", Description: "The name of the command", Type: domain.OptionString, Required: true},
		},
	}
}

const sillyInfoTemplate = "Command type: %s\nImages: %d\nSelf Images: %d\nTexts: %d\nSelf Texts: %d\nPreferences: %s"

func (s *SillyInfo) Respond(ctx context.Context, req *domain.Request) domain.Outcome {
	name, ok := req.Interaction.Args.String("name")
	if !ok {
		return domain.Fail(missingOptionsMessage)
	}

	cmd, outcome, ok := lookupSilly(ctx, s.store, name)
	if !ok {
		return outcome
	}

	kind := "Author only"
	if cmd.Kind == domain.SingleUser {
		kind = "Single User"
	}

	preferences := strings.Join(cmd.Preferences, ", ")
	if preferences == "" {
		preferences = "none"
	}

	embed := domain.Embed{
		Title: cmd.Name,
		Description: fmt.Sprintf(sillyInfoTemplate, kind, len(cmd.Images), len(cmd.SelfImages), len(cmd.Texts),
			len(cmd.SelfTexts), preferences),
		Color: colorDefault,
	}

	return deliver(ctx, s.responder, req, domain.Content{Embeds: []domain.Embed{embed}})
}
