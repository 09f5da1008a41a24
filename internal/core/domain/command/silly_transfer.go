package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
	"takabot/internal/core/domain"
	"takabot/internal/core/port"
	"takabot/internal/core/service"
)

const (
	exportFileName        = "data.json"
	importUnreadableMsg   = "❌ Couldn't read the silly command import directory"
	importDoneMessage     = "✅ Finished with no warnings! Imported %d images."
	importWarningsMessage = "Imported %d images with warnings:\n%s"
)

// exportedSilly is the JSON shape of one silly command in an export.
type exportedSilly struct {
	ID          int32           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	FooterText  string          `json:"footer_text"`
	Kind        string          `json:"command_type"`
	Texts       []string        `json:"texts"`
	SelfTexts   []string        `json:"self_texts"`
	Images      []exportedImage `json:"images"`
	SelfImages  []string        `json:"self_images"`
	Preferences []string        `json:"preferences"`
}

type exportedImage struct {
	Path       string `json:"path"`
	Preference string `json:"preference"`
}

func toExported(cmd domain.SillyCommand) exportedSilly {
	kind := sillyTypeAuthorOnly
	if cmd.Kind == domain.SingleUser {
		kind = sillyTypeSingleUser
	}

	images := make([]exportedImage, 0, len(cmd.Images))
	for _, image := range cmd.Images {
		images = append(images, exportedImage{Path: image.Path, Preference: image.Preference})
	}

	return exportedSilly{
		ID:          cmd.ID,
		Name:        cmd.Name,
		Description: cmd.Description,
		FooterText:  cmd.FooterText,
		Kind:        kind,
		Texts:       nonNil(cmd.Texts),
		SelfTexts:   nonNil(cmd.SelfTexts),
		Images:      images,
		SelfImages:  nonNil(cmd.SelfImages),
		Preferences: nonNil(cmd.Preferences),
	}
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}

	return list
}

// ExportSillyCommands sends every stored silly command as a JSON attachment.
type ExportSillyCommands struct {
	responder port.Responder
	store     port.SillyStore
	auth      service.Authorizer
	command   string
}

func NewExportSillyCommands(responder port.Responder, store port.SillyStore,
	auth service.Authorizer) *ExportSillyCommands {
	return &ExportSillyCommands{responder: responder, store: store, auth: auth, command: "export_silly_commands"}
}

func (e *ExportSillyCommands) GetCommand() string {
	return e.command
}

func (e *ExportSillyCommands) Schema() domain.Schema {
	return domain.Schema{Name: e.command, Description: "Get all silly commands (owner only)"}
}

func (e *ExportSillyCommands) Respond(ctx context.Context, req *domain.Request) domain.Outcome {
	if outcome, ok := ownerOnly(e.auth, req); !ok {
		return outcome
	}

	commands, err := e.store.List(ctx)
	if err != nil {
		return domain.Faultf(err, "failed to list silly commands")
	}

	exported := make([]exportedSilly, 0, len(commands))
	for _, cmd := range commands {
		exported = append(exported, toExported(cmd))
	}

	data, err := json.Marshal(exported)
	if err != nil {
		return domain.Faultf(err, "failed to encode silly commands")
	}

	l := commandLogger(e.command, req)
	l.Debug().Int("commands", len(exported)).Int("bytes", len(data)).Msg("exporting silly commands")

	awaitAck(ctx, e.command, req)

	return deliver(ctx, e.responder, req, domain.Content{
		Files: []domain.File{{Name: exportFileName, ContentType: "application/json", Data: data}},
	})
}

// preferenceAliases maps the short directory names used by older asset dumps.
var preferenceAliases = map[string]string{
	"BB": "Male x Male",
	"BG": "Male x Female",
	"GG": "Female x Female",
}

// LoadSillyCommandImages bulk-imports images from a directory laid out as <command>/<preference>/<image>.
// Unknown preferences are created on the way, anything that doesn't fit the layout is reported as a warning.
type LoadSillyCommandImages struct {
	responder port.Responder
	store     port.SillyStore
	assets    port.AssetStore
	source    fs.FS
	auth      service.Authorizer
	command   string
}

func NewLoadSillyCommandImages(responder port.Responder, store port.SillyStore, assets port.AssetStore,
	source fs.FS, auth service.Authorizer) *LoadSillyCommandImages {
	return &LoadSillyCommandImages{
		responder: responder,
		store:     store,
		assets:    assets,
		source:    source,
		auth:      auth,
		command:   "load_silly_command_images",
	}
}

func (c *LoadSillyCommandImages) GetCommand() string {
	return c.command
}

func (c *LoadSillyCommandImages) Schema() domain.Schema {
	return domain.Schema{Name: c.command, Description: "Create preferences and images (owner only)"}
}

func (c *LoadSillyCommandImages) Respond(ctx context.Context, req *domain.Request) domain.Outcome {
	if outcome, ok := ownerOnly(c.auth, req); !ok {
		return outcome
	}

	l := commandLogger(c.command, req)

	commands, err := c.store.List(ctx)
	if err != nil {
		return domain.Faultf(err, "failed to list silly commands")
	}

	entries, err := fs.ReadDir(c.source, ".")
	if err != nil {
		l.Warn().Err(err).Msg("couldn't read import directory")
		return domain.Fail(importUnreadableMsg)
	}

	run := &importRun{LoadSillyCommandImages: c}

	for _, entry := range entries {
		if err = ctx.Err(); err != nil {
			return domain.Faultf(err, "import interrupted")
		}

		if !entry.IsDir() {
			run.warn("Found file that wasn't a directory %s", entry.Name())
			continue
		}

		idx := slices.IndexFunc(commands, func(cmd domain.SillyCommand) bool { return cmd.Name == entry.Name() })
		if idx < 0 {
			run.warn("Found directory without an associated command %s", entry.Name())
			continue
		}

		err = run.importCommand(ctx, &commands[idx])
		if err != nil {
			return domain.Faultf(err, "failed to import images of %s", entry.Name())
		}
	}

	l.Info().Int("images", run.imported).Int("warnings", len(run.warnings)).Msg("imported silly command images")

	if len(run.warnings) == 0 {
		return deliverText(ctx, c.responder, req, fmt.Sprintf(importDoneMessage, run.imported))
	}

	text := fmt.Sprintf(importWarningsMessage, run.imported, strings.Join(run.warnings, "\n"))

	return deliverText(ctx, c.responder, req, truncate(text, maxMessageLength))
}

// importRun collects the results of one import.
type importRun struct {
	*LoadSillyCommandImages
	imported int
	warnings []string
}

func (r *importRun) warn(format string, args ...any) {
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

func (r *importRun) importCommand(ctx context.Context, cmd *domain.SillyCommand) error {
	entries, err := fs.ReadDir(r.source, cmd.Name)
	if err != nil {
		r.warn("Couldn't read directory %s", cmd.Name)
		return nil
	}

	for _, entry := range entries {
		dir := path.Join(cmd.Name, entry.Name())
		if !entry.IsDir() {
			r.warn("Found file that wasn't a preference directory %s", dir)
			continue
		}

		preference := entry.Name()
		if alias, ok := preferenceAliases[preference]; ok {
			preference = alias
		}

		err = r.ensurePreference(ctx, cmd, preference)
		if err != nil {
			return err
		}

		err = r.importImages(ctx, cmd.Name, dir, preference)
		if err != nil {
			return err
		}
	}

	return nil
}

func (r *importRun) ensurePreference(ctx context.Context, cmd *domain.SillyCommand, preference string) error {
	if preference == domain.PreferenceAll || slices.Contains(cmd.Preferences, preference) {
		return nil
	}

	err := r.store.AddPreference(ctx, cmd.Name, preference)
	if err != nil && !errors.Is(err, domain.ErrDuplicateEntry) {
		return fmt.Errorf("failed to add preference %q: %w", preference, err)
	}

	cmd.Preferences = append(cmd.Preferences, preference)

	return nil
}

func (r *importRun) importImages(ctx context.Context, command, dir, preference string) error {
	files, err := fs.ReadDir(r.source, dir)
	if err != nil {
		r.warn("Couldn't read directory %s", dir)
		return nil
	}

	for _, file := range files {
		name := path.Join(dir, file.Name())
		if file.IsDir() {
			r.warn("Found directory where an image was expected %s", name)
			continue
		}

		extension := strings.TrimPrefix(path.Ext(file.Name()), ".")
		if extension == "" {
			r.warn("Couldn't find extension of %s", name)
			continue
		}

		data, err := fs.ReadFile(r.source, name)
		if err != nil {
			r.warn("Couldn't read file %s", name)
			continue
		}

		stored, err := r.assets.Save(data, extension)
		if err != nil {
			return err
		}

		_, err = r.store.AddImage(ctx, command, stored, preference, false)
		if err != nil {
			return fmt.Errorf("failed to add image %s: %w", name, err)
		}

		r.imported++
	}

	return nil
}
