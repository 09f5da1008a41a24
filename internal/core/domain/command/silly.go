package command

import (
	"context"
	"fmt"
	"math/rand/v2"
	"mime"
	"path/filepath"
	"slices"
	"strconv"
	"takabot/internal/core/domain"
	"takabot/internal/core/port"
)

const (
	noImagesMessage      = "❌ No images have been added yet."
	staleCommandMessage  = "❌ Command has to be reloaded, tell the bot owner."
	unknownAuthorMessage = "❌ Couldn't find command author."
)

// SillyResolver serves silly commands straight from the store, so new commands work as soon as they are created.
type SillyResolver struct {
	store     port.SillyStore
	responder port.Responder
	assets    port.AssetStore
}

func NewSillyResolver(store port.SillyStore, responder port.Responder, assets port.AssetStore) *SillyResolver {
	return &SillyResolver{store: store, responder: responder, assets: assets}
}

func (r *SillyResolver) Resolve(ctx context.Context, name string) (port.Command, bool, error) {
	cmd, err := r.store.LookupByName(ctx, name)
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up silly command %q: %w", name, err)
	}

	if cmd == nil {
		return nil, false, nil
	}

	return &Silly{data: *cmd, store: r.store, responder: r.responder, assets: r.assets}, true, nil
}

// Silly answers with a random image and text of a data-defined command.
type Silly struct {
	data      domain.SillyCommand
	store     port.SillyStore
	responder port.Responder
	assets    port.AssetStore
}

func (s *Silly) GetCommand() string {
	return s.data.Name
}

func (s *Silly) Schema() domain.Schema {
	return s.data.Schema()
}

func (s *Silly) Respond(ctx context.Context, req *domain.Request) domain.Outcome {
	if req.Interaction.AuthorID == "" {
		return domain.Fail(unknownAuthorMessage)
	}

	switch s.data.Kind {
	case domain.AuthorOnly:
		return s.respondAuthor(ctx, req)
	case domain.SingleUser:
		return s.respondSingleUser(ctx, req)
	default:
		return domain.Fault(fmt.Errorf("silly command %q has unknown kind %d", s.data.Name, s.data.Kind))
	}
}

func (s *Silly) respondAuthor(ctx context.Context, req *domain.Request) domain.Outcome {
	author := domain.MentionUser(req.Interaction.AuthorID)

	images := append(slices.Clone(s.data.SelfImages), imagePaths(s.data.Images)...)
	if len(images) == 0 {
		return domain.Fail(noImagesMessage)
	}

	texts := append(slices.Clone(s.data.SelfTexts), s.data.Texts...)
	text := domain.ExpandTemplate(pick(texts), author, "", "")

	content, err := s.imageContent(pick(images), text, "")
	if err != nil {
		return domain.Faultf(err, "failed to load silly image")
	}

	awaitAck(ctx, s.data.Name, req)

	return deliver(ctx, s.responder, req, content)
}

func (s *Silly) respondSingleUser(ctx context.Context, req *domain.Request) domain.Outcome {
	it := req.Interaction

	target, ok := it.Args.User("user")
	if !ok {
		return domain.Fail(staleCommandMessage)
	}

	preference, ok := it.Args.String("preference")
	if !ok {
		return domain.Fail(staleCommandMessage)
	}

	author := domain.MentionUser(it.AuthorID)
	user := domain.MentionUser(target)

	if target == it.AuthorID {
		image := pick(s.data.SelfImages)
		if image == "" {
			image = pick(imagePaths(s.data.Images))
		}
		if image == "" {
			return domain.Fail(noImagesMessage)
		}

		text := pick(s.data.SelfTexts)
		if text == "" {
			text = pick(s.data.Texts)
		}

		content, err := s.imageContent(image, domain.ExpandTemplate(text, author, user, ""), "")
		if err != nil {
			return domain.Faultf(err, "failed to load silly image")
		}

		awaitAck(ctx, s.data.Name, req)

		return deliver(ctx, s.responder, req, content)
	}

	image := pick(imagePaths(filterImages(s.data.Images, preference)))
	if image == "" {
		return domain.Fail(noImagesMessage)
	}

	count, err := s.store.IncrementUsage(ctx, s.data.ID, it.AuthorID, target)
	if err != nil {
		return domain.Faultf(err, "failed to count silly command usage")
	}

	targetName, ok := it.Users[target]
	if !ok {
		targetName = target
	}

	footer := domain.ExpandTemplate(s.data.FooterText, it.AuthorName, targetName, strconv.Itoa(count))
	text := domain.ExpandTemplate(pick(s.data.Texts), author, user, strconv.Itoa(count))

	content, err := s.imageContent(image, text, footer)
	if err != nil {
		return domain.Faultf(err, "failed to load silly image")
	}

	awaitAck(ctx, s.data.Name, req)

	outcome := deliver(ctx, s.responder, req, content)
	if outcome.Kind != domain.Success {
		return outcome
	}

	_, err = s.responder.Followup(ctx, req, domain.Content{Text: user})
	if err != nil {
		return domain.Faultf(err, "failed to ping target user")
	}

	return domain.Ok()
}

func (s *Silly) imageContent(path, text, footer string) (domain.Content, error) {
	data, err := s.assets.Read(path)
	if err != nil {
		return domain.Content{}, err
	}

	name := filepath.Base(path)
	embed := domain.Embed{
		Description: text,
		Footer:      footer,
		Image:       name,
		Color:       colorDefault,
	}

	return domain.Content{
		Embeds: []domain.Embed{embed},
		Files:  []domain.File{{Name: name, ContentType: mime.TypeByExtension(filepath.Ext(name)), Data: data}},
	}, nil
}

// pick returns a random element, or the empty string for an empty list.
func pick(list []string) string {
	if len(list) == 0 {
		return ""
	}

	return list[rand.IntN(len(list))]
}

func imagePaths(images []domain.SillyImage) []string {
	paths := make([]string, 0, len(images))
	for _, image := range images {
		paths = append(paths, image.Path)
	}

	return paths
}

func filterImages(images []domain.SillyImage, preference string) []domain.SillyImage {
	if preference == domain.PreferenceAll {
		return images
	}

	var filtered []domain.SillyImage
	for _, image := range images {
		if image.Preference == preference {
			filtered = append(filtered, image)
		}
	}

	return filtered
}
