// Package materials implements the record-store collaborator: CRUD for
// shared study-material metadata, stored as JSON values keyed by ID with a
// set index for listing.
package materials

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	keyPrefix = "material:"
	indexKey  = "materials"
)

var ErrNotFound = errors.New("materials: record not found")

// Material is the metadata of one shared file.
type Material struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Subject     string    `json:"subject,omitempty"`
	ObjectKey   string    `json:"object_key,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store is the key/value surface the service needs. Implemented by the
// Redis infrastructure service; tests use a map-backed fake.
type Store interface {
	Set(ctx context.Context, key, value string, expiration time.Duration) error
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Del(ctx context.Context, key string) error
	SAdd(ctx context.Context, key, member string) error
	SRem(ctx context.Context, key, member string) error
	SMembers(ctx context.Context, key string) ([]string, error)
}

type Service struct {
	store Store
}

// NewService builds the material record service. Returns nil when the
// backing store is unavailable.
func NewService(store Store) *Service {
	if store == nil {
		log.Warn().Msg("Materials service not configured - record store unavailable")
		return nil
	}
	return &Service{store: store}
}

// Create assigns an ID and timestamp and persists the record.
func (s *Service) Create(ctx context.Context, m Material) (Material, error) {
	m.ID = uuid.NewString()
	m.CreatedAt = time.Now().UTC()

	if err := s.put(ctx, m); err != nil {
		return Material{}, err
	}
	if err := s.store.SAdd(ctx, indexKey, m.ID); err != nil {
		return Material{}, err
	}

	log.Info().Str("material_id", m.ID).Str("user_id", m.UserID).Msg("Material record created")
	return m, nil
}

// Get returns one record by ID.
func (s *Service) Get(ctx context.Context, id string) (Material, error) {
	raw, found, err := s.store.Get(ctx, keyPrefix+id)
	if err != nil {
		return Material{}, err
	}
	if !found {
		return Material{}, ErrNotFound
	}

	var m Material
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return Material{}, err
	}
	return m, nil
}

// List returns all records, newest first. Index entries whose record has
// gone missing are skipped.
func (s *Service) List(ctx context.Context) ([]Material, error) {
	ids, err := s.store.SMembers(ctx, indexKey)
	if err != nil {
		return nil, err
	}

	records := make([]Material, 0, len(ids))
	for _, id := range ids {
		m, err := s.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		records = append(records, m)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

// Update replaces the mutable fields of an existing record.
func (s *Service) Update(ctx context.Context, m Material) (Material, error) {
	existing, err := s.Get(ctx, m.ID)
	if err != nil {
		return Material{}, err
	}

	existing.Title = m.Title
	existing.Description = m.Description
	existing.Subject = m.Subject

	if err := s.put(ctx, existing); err != nil {
		return Material{}, err
	}
	return existing, nil
}

// Delete removes a record and its index entry.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.store.Del(ctx, keyPrefix+id); err != nil {
		return err
	}
	return s.store.SRem(ctx, indexKey, id)
}

func (s *Service) put(ctx context.Context, m Material) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, keyPrefix+m.ID, string(raw), 0)
}
