package domain

import "strings"

type SillyKind int

const (
	AuthorOnly SillyKind = 1
	SingleUser SillyKind = 2
)

// PreferenceAll matches every image of a command regardless of its preference tag.
const PreferenceAll = "ALL"

// SillyCommand is a data-defined command stored outside the binary.
type SillyCommand struct {
	ID          int32
	Name        string
	Description string
	FooterText  string
	Kind        SillyKind
	SelfTexts   []string
	SelfImages  []string
	Texts       []string
	Images      []SillyImage
	Preferences []string
}

type SillyImage struct {
	Path       string
	Preference string
}

// Schema renders the manifest entry of a silly command.
func (c *SillyCommand) Schema() Schema {
	s := Schema{Name: c.Name, Description: c.Description}
	if c.Kind != SingleUser {
		return s
	}

	choices := append([]string{PreferenceAll}, c.Preferences...)
	s.Options = []SchemaOption{
		{Name: "user", Description: "A user to target", Type: OptionUser, Required: true},
		{
			Name:        "preference",
			Description: "What kind of characters should be shown in the gif",
			Type:        OptionString,
			Required:    true,
			Choices:     choices,
		},
	}

	return s
}

// ExpandTemplate substitutes the {author}, {user} and {count} placeholders.
func ExpandTemplate(text, author, user, count string) string {
	r := strings.NewReplacer("{author}", author, "{user}", user, "{count}", count)
	return r.Replace(text)
}

// MentionUser formats a user ID as a platform mention.
func MentionUser(id string) string {
	return "<@" + id + ">"
}
