package board

import (
	"context"
	"fmt"
	"sync"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

const (
	// DefaultSecretName is the name of the Secret storing a minefield.
	DefaultSecretName = "podsweeper-state"

	// DefaultNamespace is the default game namespace.
	DefaultNamespace = "podsweeper-game"

	// StateKey is the key in the Secret data map for the minefield JSON.
	StateKey = "state"
)

// Store persists a Minefield across reconciler restarts.
type Store interface {
	// Load retrieves the current minefield. Returns nil, nil if none exists.
	Load(ctx context.Context) (*Minefield, error)

	// Save persists m, creating or updating the underlying storage.
	Save(ctx context.Context, m *Minefield) error

	// Delete removes the stored minefield. Returns nil if none exists.
	Delete(ctx context.Context) error

	// Exists reports whether a minefield is currently stored.
	Exists(ctx context.Context) (bool, error)
}

// SecretStore persists a minefield in a Kubernetes Secret, JSON-encoded via
// Minefield's MarshalJSON/UnmarshalJSON.
type SecretStore struct {
	client    client.Client
	namespace string
	name      string
}

// SecretStoreOption configures a SecretStore.
type SecretStoreOption func(*SecretStore)

// WithNamespace sets the namespace for the Secret.
func WithNamespace(namespace string) SecretStoreOption {
	return func(s *SecretStore) { s.namespace = namespace }
}

// WithSecretName sets the name of the Secret.
func WithSecretName(name string) SecretStoreOption {
	return func(s *SecretStore) { s.name = name }
}

// NewSecretStore creates a new SecretStore.
func NewSecretStore(c client.Client, opts ...SecretStoreOption) *SecretStore {
	store := &SecretStore{
		client:    c,
		namespace: DefaultNamespace,
		name:      DefaultSecretName,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Load retrieves the minefield from the Secret.
func (s *SecretStore) Load(ctx context.Context) (*Minefield, error) {
	secret := &corev1.Secret{}
	key := client.ObjectKey{Namespace: s.namespace, Name: s.name}

	if err := s.client.Get(ctx, key, secret); err != nil {
		if errors.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("board: get secret: %w", err)
	}

	data, ok := secret.Data[StateKey]
	if !ok {
		return nil, fmt.Errorf("board: secret exists but missing %q key", StateKey)
	}

	m := &Minefield{}
	if err := m.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("board: parse minefield: %w", err)
	}
	return m, nil
}

// Save persists the minefield to the Secret.
func (s *SecretStore) Save(ctx context.Context, m *Minefield) error {
	data, err := m.MarshalJSON()
	if err != nil {
		return fmt.Errorf("board: serialize minefield: %w", err)
	}

	secret := &corev1.Secret{}
	key := client.ObjectKey{Namespace: s.namespace, Name: s.name}

	err = s.client.Get(ctx, key, secret)
	if err != nil {
		if errors.IsNotFound(err) {
			secret = &corev1.Secret{
				ObjectMeta: metav1.ObjectMeta{
					Name:      s.name,
					Namespace: s.namespace,
					Labels: map[string]string{
						"app.kubernetes.io/name":      "podsweeper",
						"app.kubernetes.io/component": "game-state",
					},
				},
				Type: corev1.SecretTypeOpaque,
				Data: map[string][]byte{StateKey: data},
			}
			if err := s.client.Create(ctx, secret); err != nil {
				return fmt.Errorf("board: create secret: %w", err)
			}
			return nil
		}
		return fmt.Errorf("board: get secret: %w", err)
	}

	secret.Data[StateKey] = data
	if err := s.client.Update(ctx, secret); err != nil {
		if errors.IsConflict(err) {
			return fmt.Errorf("board: conflict updating secret (concurrent modification): %w", err)
		}
		return fmt.Errorf("board: update secret: %w", err)
	}
	return nil
}

// Delete removes the minefield Secret.
func (s *SecretStore) Delete(ctx context.Context) error {
	secret := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{Name: s.name, Namespace: s.namespace},
	}
	if err := s.client.Delete(ctx, secret); err != nil {
		if errors.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("board: delete secret: %w", err)
	}
	return nil
}

// Exists checks if the minefield Secret exists.
func (s *SecretStore) Exists(ctx context.Context) (bool, error) {
	secret := &corev1.Secret{}
	key := client.ObjectKey{Namespace: s.namespace, Name: s.name}
	if err := s.client.Get(ctx, key, secret); err != nil {
		if errors.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("board: check secret: %w", err)
	}
	return true, nil
}

// Namespace returns the namespace where the Secret is stored.
func (s *SecretStore) Namespace() string { return s.namespace }

// SecretName returns the name of the Secret.
func (s *SecretStore) SecretName() string { return s.name }

// MemoryStore is an in-memory Store implementation for testing.
type MemoryStore struct {
	mu sync.RWMutex
	m  *Minefield
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load retrieves the minefield from memory.
func (s *MemoryStore) Load(ctx context.Context) (*Minefield, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.m == nil {
		return nil, nil
	}
	data, err := s.m.MarshalJSON()
	if err != nil {
		return nil, err
	}
	clone := &Minefield{}
	if err := clone.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return clone, nil
}

// Save stores the minefield in memory.
func (s *MemoryStore) Save(ctx context.Context, m *Minefield) error {
	data, err := m.MarshalJSON()
	if err != nil {
		return err
	}
	clone := &Minefield{}
	if err := clone.UnmarshalJSON(data); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m = clone
	return nil
}

// Delete removes the minefield from memory.
func (s *MemoryStore) Delete(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m = nil
	return nil
}

// Exists checks if a minefield exists in memory.
func (s *MemoryStore) Exists(ctx context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.m != nil, nil
}

// Reset clears the store (useful for testing).
func (s *MemoryStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m = nil
}
