package clients

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"gopkg.in/yaml.v2"
)

type file struct {
	Clients []Client `yaml:"clients"`
}

// Service keeps the client list in memory and writes the YAML file after
// every change.
type Service struct {
	path string

	mu      sync.RWMutex
	clients []Client
}

// NewService loads path, falling back to Defaults when it does not exist.
func NewService(path string) (*Service, error) {
	s := &Service{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		s.clients = slices.Clone(Defaults)
		return s, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading clients file: %w", err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing clients file: %w", err)
	}

	for _, stored := range f.Clients {
		c := NewClient(stored.Name, stored.Color)
		if stored.ID != "" {
			c.ID = stored.ID
		}

		if err := c.Validate(); err != nil {
			slog.Warn("skipping invalid client", "name", c.Name, "error", err)
			continue
		}

		if s.indexOf(c.ID) >= 0 {
			continue
		}

		s.clients = append(s.clients, c)
	}

	return s, nil
}

func (s *Service) List() []Client {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.clients)
}

func (s *Service) Get(id string) (Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return Client{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}

	return s.clients[i], nil
}

// Add creates a client from a display name and color.
func (s *Service) Add(name, color string) (Client, error) {
	c := NewClient(name, color)
	if err := c.Validate(); err != nil {
		return Client{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(c.ID) >= 0 {
		return Client{}, fmt.Errorf("%w: %s", ErrDuplicate, c.Name)
	}

	s.clients = append(s.clients, c)

	if err := s.save(); err != nil {
		s.clients = s.clients[:len(s.clients)-1]
		return Client{}, err
	}

	slog.Info("client added", "id", c.ID)

	return c, nil
}

func (s *Service) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}

	prev := slices.Clone(s.clients)
	s.clients = slices.Delete(s.clients, i, i+1)

	if err := s.save(); err != nil {
		s.clients = prev
		return err
	}

	slog.Info("client removed", "id", id)

	return nil
}

func (s *Service) indexOf(id string) int {
	return slices.IndexFunc(s.clients, func(c Client) bool { return c.ID == id })
}

// save must be called with mu held.
func (s *Service) save() error {
	data, err := yaml.Marshal(file{Clients: s.clients})
	if err != nil {
		return fmt.Errorf("encoding clients: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating clients directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing clients file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing clients file: %w", err)
	}

	return nil
}
