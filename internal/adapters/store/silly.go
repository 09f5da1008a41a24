package store

import (
	"context"
	"errors"
	"fmt"
	"takabot/internal/core/domain"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
)

const selectSilly = `
SELECT c.id_silly_command, c.name, c.description, c.footer_text, c.command_type,
       COALESCE((SELECT array_agg(t.content ORDER BY t.id_silly_command_self_action_text)
                 FROM silly_command_self_action_text t
                 WHERE t.id_silly_command = c.id_silly_command), '{}') AS self_texts,
       COALESCE((SELECT array_agg(a.image ORDER BY a.id_silly_command_self_action)
                 FROM silly_command_self_action a
                 WHERE a.id_silly_command = c.id_silly_command), '{}') AS self_images,
       COALESCE((SELECT array_agg(t.content ORDER BY t.id_silly_command_text)
                 FROM silly_command_text t
                 WHERE t.id_silly_command = c.id_silly_command), '{}') AS texts,
       COALESCE((SELECT array_agg(i.image ORDER BY i.id_silly_command_images)
                 FROM silly_command_images i
                 WHERE i.id_silly_command = c.id_silly_command), '{}') AS images,
       COALESCE((SELECT array_agg(i.preference ORDER BY i.id_silly_command_images)
                 FROM silly_command_images i
                 WHERE i.id_silly_command = c.id_silly_command), '{}') AS image_preferences,
       COALESCE((SELECT array_agg(p.preference ORDER BY p.id_silly_command_preference)
                 FROM silly_command_preference p
                 WHERE p.id_silly_command = c.id_silly_command), '{}') AS preferences
FROM silly_command c`

// SillyStore keeps data-defined commands in Postgres.
type SillyStore struct {
	db DB
}

func NewSillyStore(db DB) *SillyStore {
	return &SillyStore{db: db}
}

func (s *SillyStore) LookupByName(ctx context.Context, name string) (*domain.SillyCommand, error) {
	cmd, err := scanSilly(s.db.QueryRow(ctx, selectSilly+` WHERE c.name = $1`, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch silly command %q: %w", name, err)
	}

	return cmd, nil
}

func (s *SillyStore) List(ctx context.Context) ([]domain.SillyCommand, error) {
	rows, err := s.db.Query(ctx, selectSilly+` ORDER BY c.id_silly_command`)
	if err != nil {
		return nil, fmt.Errorf("failed to list silly commands: %w", err)
	}
	defer rows.Close()

	var commands []domain.SillyCommand
	for rows.Next() {
		cmd, err := scanSilly(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan silly command: %w", err)
		}
		if cmd.Kind != domain.AuthorOnly && cmd.Kind != domain.SingleUser {
			log.Warn().Str("command", cmd.Name).Int("kind", int(cmd.Kind)).Msg("skipping silly command of unknown kind")
			continue
		}
		commands = append(commands, *cmd)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list silly commands: %w", err)
	}

	return commands, nil
}

func (s *SillyStore) Create(ctx context.Context, cmd domain.SillyCommand) (int32, error) {
	var id int32
	err := s.db.QueryRow(ctx,
		`INSERT INTO silly_command (name, description, command_type, footer_text)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id_silly_command`,
		cmd.Name, cmd.Description, int32(cmd.Kind), cmd.FooterText).Scan(&id)
	if isUniqueViolation(err) {
		return 0, domain.ErrDuplicateCommand
	}
	if err != nil {
		return 0, fmt.Errorf("failed to create silly command: %w", err)
	}

	return id, nil
}

func (s *SillyStore) AddText(ctx context.Context, command string, text string, self bool) (int32, error) {
	query := `INSERT INTO silly_command_text (id_silly_command, content)
		 SELECT id_silly_command, $2 FROM silly_command WHERE name = $1
		 RETURNING id_silly_command_text`
	if self {
		query = `INSERT INTO silly_command_self_action_text (id_silly_command, content)
		 SELECT id_silly_command, $2 FROM silly_command WHERE name = $1
		 RETURNING id_silly_command_self_action_text`
	}

	return s.insertReturningID(ctx, query, command, text)
}

func (s *SillyStore) AddImage(ctx context.Context, command string, path string, preference string,
	self bool) (int32, error) {
	if self {
		return s.insertReturningID(ctx,
			`INSERT INTO silly_command_self_action (id_silly_command, image)
			 SELECT id_silly_command, $2 FROM silly_command WHERE name = $1
			 RETURNING id_silly_command_self_action`,
			command, path)
	}

	if preference == "" {
		preference = domain.PreferenceAll
	}

	return s.insertReturningID(ctx,
		`INSERT INTO silly_command_images (id_silly_command, image, preference)
		 SELECT id_silly_command, $2, $3 FROM silly_command WHERE name = $1
		 RETURNING id_silly_command_images`,
		command, path, preference)
}

func (s *SillyStore) AddPreference(ctx context.Context, command string, preference string) error {
	tag, err := s.db.Exec(ctx,
		`INSERT INTO silly_command_preference (id_silly_command, preference)
		 SELECT id_silly_command, $2 FROM silly_command WHERE name = $1`,
		command, preference)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateEntry
	}
	if err != nil {
		return fmt.Errorf("failed to add preference: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrCommandNotFound
	}

	return nil
}

func (s *SillyStore) IncrementUsage(ctx context.Context, commandID int32, authorID, targetID string) (int, error) {
	var usages int32
	err := s.db.QueryRow(ctx,
		`INSERT INTO silly_command_usage (id_silly_command, id_user_1, id_user_2, usages)
		 VALUES ($1, $2, $3, 1)
		 ON CONFLICT (id_silly_command, id_user_1, id_user_2)
		 DO UPDATE SET usages = silly_command_usage.usages + 1
		 RETURNING usages`,
		commandID, authorID, targetID).Scan(&usages)
	if err != nil {
		return 0, fmt.Errorf("failed to increment usage: %w", err)
	}

	return int(usages), nil
}

// insertReturningID runs an INSERT ... SELECT keyed on the command name. No returned row means the command
// does not exist.
func (s *SillyStore) insertReturningID(ctx context.Context, query string, args ...any) (int32, error) {
	var id int32
	err := s.db.QueryRow(ctx, query, args...).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrCommandNotFound
	}
	if isUniqueViolation(err) {
		return 0, domain.ErrDuplicateEntry
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert: %w", err)
	}

	return id, nil
}

func scanSilly(row pgx.Row) (*domain.SillyCommand, error) {
	var (
		cmd              domain.SillyCommand
		kind             int32
		images           []string
		imagePreferences []string
	)

	err := row.Scan(
		&cmd.ID,
		&cmd.Name,
		&cmd.Description,
		&cmd.FooterText,
		&kind,
		&cmd.SelfTexts,
		&cmd.SelfImages,
		&cmd.Texts,
		&images,
		&imagePreferences,
		&cmd.Preferences,
	)
	if err != nil {
		return nil, err
	}

	cmd.Kind = domain.SillyKind(kind)
	cmd.Images = zipImages(images, imagePreferences)

	return &cmd, nil
}

func zipImages(paths, preferences []string) []domain.SillyImage {
	if len(paths) == 0 {
		return nil
	}

	images := make([]domain.SillyImage, len(paths))
	for i, path := range paths {
		preference := domain.PreferenceAll
		if i < len(preferences) && preferences[i] != "" {
			preference = preferences[i]
		}
		images[i] = domain.SillyImage{Path: path, Preference: preference}
	}

	return images
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
