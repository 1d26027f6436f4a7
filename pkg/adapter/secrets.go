package adapter

import (
	"context"
	"os"
	"sync"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/m-mizutani/goerr/v2"
)

// Secrets is fetch-by-name credential retrieval. Values are cached
// after the first fetch; Invalidate drops a cached entry.
type Secrets interface {
	Get(ctx context.Context, name string) (string, error)
	Invalidate(name string)
}

// secretManagerClient resolves secrets from the environment first
// (local development), then from Secret Manager.
type secretManagerClient struct {
	projectID string
	client    *secretmanager.Client

	mu    sync.RWMutex
	cache map[string]string
}

func NewSecrets(ctx context.Context, projectID string) (Secrets, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create secret manager client")
	}

	return &secretManagerClient{
		projectID: projectID,
		client:    client,
		cache:     map[string]string{},
	}, nil
}

func (s *secretManagerClient) Get(ctx context.Context, name string) (string, error) {
	s.mu.RLock()
	if v, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return v, nil
	}
	s.mu.RUnlock()

	if v := os.Getenv(name); v != "" {
		s.put(name, v)
		return v, nil
	}

	resp, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: "projects/" + s.projectID + "/secrets/" + name + "/versions/latest",
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to access secret version", goerr.Value("name", name))
	}

	v := string(resp.GetPayload().GetData())
	s.put(name, v)
	return v, nil
}

func (s *secretManagerClient) put(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[name] = value
}

func (s *secretManagerClient) Invalidate(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cache, name)
}
