package command

import (
	"context"
	"fmt"
	"strings"
	"takabot/internal/core/domain"
	"takabot/internal/core/port"
)

const (
	HelpPrefix   = "help_"
	HelpPrevious = HelpPrefix + "previous"
	HelpNext     = HelpPrefix + "next"
)

// Help shows paginated command descriptions. It also handles the page buttons it attaches.
type Help struct {
	responder port.Responder
	platform  port.Platform
	registry  port.CommandRegistry
	store     port.SillyStore
	command   string
}

// NewHelp creates the help command. store may be nil, in which case the silly command page is left out.
func NewHelp(responder port.Responder, platform port.Platform, registry port.CommandRegistry,
	store port.SillyStore) *Help {
	return &Help{
		responder: responder,
		platform:  platform,
		registry:  registry,
		store:     store,
		command:   "help",
	}
}

func (h *Help) GetCommand() string {
	return h.command
}

func (h *Help) Schema() domain.Schema {
	return domain.Schema{Name: h.command, Description: "Get more information about commands!"}
}

func (h *Help) Prefix() string {
	return HelpPrefix
}

func (h *Help) Respond(ctx context.Context, req *domain.Request) domain.Outcome {
	pages, err := h.pages(ctx)
	if err != nil {
		return domain.Faultf(err, "failed to build help pages")
	}

	return deliver(ctx, h.responder, req, h.page(pages, 0))
}

// HandleComponent flips to the previous or next page, wrapping around. The current page is recognised by the
// footer of the message the buttons belong to; anything unrecognised is ignored.
func (h *Help) HandleComponent(ctx context.Context, req *domain.Request) domain.Outcome {
	it := req.Interaction
	l := commandLogger(h.command, req)

	if len(it.Embeds) == 0 {
		l.Debug().Msg("help button pressed on a message without embeds")
		return domain.Ok()
	}

	pages, err := h.pages(ctx)
	if err != nil {
		return domain.Faultf(err, "failed to build help pages")
	}

	current := -1
	for i, page := range pages {
		if page.Footer == it.Embeds[0].Footer {
			current = i
			break
		}
	}

	if current < 0 {
		l.Debug().Str("footer", it.Embeds[0].Footer).Msg("help page no longer exists")
		return domain.Ok()
	}

	var index int
	switch it.CustomID {
	case HelpPrevious:
		index = (current - 1 + len(pages)) % len(pages)
	case HelpNext:
		index = (current + 1) % len(pages)
	default:
		l.Debug().Str("customId", it.CustomID).Msg("unknown help button")
		return domain.Ok()
	}

	err = h.platform.UpdateComponentMessage(ctx, it, h.page(pages, index))
	if err != nil {
		return domain.Faultf(err, "failed to update help page")
	}

	return domain.Ok()
}

func (h *Help) page(pages []domain.Embed, index int) domain.Content {
	return domain.Content{
		Embeds: []domain.Embed{pages[index]},
		Components: []domain.Button{
			{CustomID: HelpPrevious, Label: "Previous", Emoji: "◀️"},
			{CustomID: HelpNext, Label: "Next", Emoji: "▶️"},
		},
	}
}

const helpFooter = "Page %d / %d"

func (h *Help) pages(ctx context.Context) ([]domain.Embed, error) {
	sb := &strings.Builder{}
	for _, cmd := range h.registry.All() {
		schema := cmd.Schema()
		_, _ = fmt.Fprintf(sb, "\n**%s**\n%s\n", schema.Name, schema.Description)
	}

	pages := []domain.Embed{{Title: "Commands", Description: sb.String(), Color: colorDefault}}

	if h.store != nil {
		silly, err := h.store.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list silly commands: %w", err)
		}

		sb.Reset()
		for _, cmd := range silly {
			_, _ = fmt.Fprintf(sb, "\n**%s**\n%s\n", cmd.Name, cmd.Description)
		}

		if len(silly) == 0 {
			sb.WriteString("No silly commands have been created yet.")
		}

		pages = append(pages, domain.Embed{Title: "Silly commands", Description: sb.String(), Color: colorDefault})
	}

	for i := range pages {
		pages[i].Footer = fmt.Sprintf(helpFooter, i+1, len(pages))
	}

	return pages, nil
}
