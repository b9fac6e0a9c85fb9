package graphengine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dhruvmojila/memory-api/internal/platform/envutil"
	"github.com/dhruvmojila/memory-api/internal/platform/logger"
)

// RemoteEngine talks to an external graph service over HTTP. The
// service performs its own entity extraction and indexing; this client only
// maps the engine contract onto its endpoints.
type RemoteEngine struct {
	log        *logger.Logger
	baseURL    string
	httpClient *http.Client
}

func NewRemoteEngine(log *logger.Logger) (*RemoteEngine, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(envutil.String("GRAPH_ENGINE_URL", "")), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("remote engine: missing GRAPH_ENGINE_URL")
	}
	timeout := envutil.Seconds("GRAPH_ENGINE_TIMEOUT_SECONDS", 120*time.Second)

	return &RemoteEngine{
		log:        log.With("engine", "Remote"),
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func (e *RemoteEngine) BuildIndices(ctx context.Context) error {
	return e.post(ctx, "/indices", map[string]any{}, nil)
}

func (e *RemoteEngine) SubmitEpisode(ctx context.Context, ep Episode) (EpisodeRef, error) {
	var resp struct {
		EpisodeUUID string `json:"episode_uuid"`
	}
	err := e.post(ctx, "/episodes", map[string]any{
		"name":               ep.Name,
		"episode_body":       ep.Body,
		"source_description": ep.SourceDescription,
		"source":             ep.Kind,
		"reference_time":     ep.ReferenceTime.UTC().Format(time.RFC3339Nano),
		"group_id":           ep.Namespace,
	}, &resp)
	if err != nil {
		return EpisodeRef{}, err
	}
	return EpisodeRef{ID: resp.EpisodeUUID}, nil
}

func (e *RemoteEngine) Search(ctx context.Context, query string, namespaces []string, limit int) ([]EdgeRecord, error) {
	var out SearchOutput
	err := e.post(ctx, "/search", map[string]any{
		"query":       query,
		"group_ids":   namespaces,
		"num_results": limit,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.Records(), nil
}

func (e *RemoteEngine) NamespacesByPrefix(ctx context.Context, prefix string) ([]string, error) {
	var resp struct {
		GroupIDs []string `json:"group_ids"`
	}
	if err := e.get(ctx, "/namespaces", url.Values{"prefix": {prefix}}, &resp); err != nil {
		return nil, err
	}
	return resp.GroupIDs, nil
}

func (e *RemoteEngine) Entities(ctx context.Context, namespaces []string) ([]Entity, error) {
	var resp struct {
		Entities []struct {
			UUID       string         `json:"uuid"`
			GroupID    string         `json:"group_id"`
			Properties map[string]any `json:"properties"`
		} `json:"entities"`
	}
	if err := e.get(ctx, "/entities", url.Values{"group_id": namespaces}, &resp); err != nil {
		return nil, err
	}
	out := make([]Entity, 0, len(resp.Entities))
	for _, en := range resp.Entities {
		out = append(out, Entity{ID: en.UUID, Namespace: en.GroupID, Properties: en.Properties})
	}
	return out, nil
}

func (e *RemoteEngine) Relationships(ctx context.Context, namespaces []string) ([]Relationship, error) {
	var resp struct {
		Relationships []struct {
			UUID       string         `json:"uuid"`
			SourceUUID string         `json:"source_uuid"`
			TargetUUID string         `json:"target_uuid"`
			Name       string         `json:"name"`
			GroupID    string         `json:"group_id"`
			Properties map[string]any `json:"properties"`
		} `json:"relationships"`
	}
	if err := e.get(ctx, "/relationships", url.Values{"group_id": namespaces}, &resp); err != nil {
		return nil, err
	}
	out := make([]Relationship, 0, len(resp.Relationships))
	for _, r := range resp.Relationships {
		// The scoped query upstream should already exclude cross-namespace
		// edges; drop anything that slips through.
		if !contains(namespaces, r.GroupID) {
			continue
		}
		out = append(out, Relationship{
			ID:         r.UUID,
			SourceID:   r.SourceUUID,
			TargetID:   r.TargetUUID,
			Relation:   r.Name,
			Namespace:  r.GroupID,
			Properties: r.Properties,
		})
	}
	return out, nil
}

func (e *RemoteEngine) Close(ctx context.Context) error {
	e.httpClient.CloseIdleConnections()
	return nil
}

func (e *RemoteEngine) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("remote engine: marshal %s: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("remote engine: build %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return e.do(req, path, out)
}

func (e *RemoteEngine) get(ctx context.Context, path string, query url.Values, out any) error {
	target := e.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("remote engine: build %s: %w", path, err)
	}
	return e.do(req, path, out)
}

func (e *RemoteEngine) do(req *http.Request, path string, out any) error {
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("remote engine: %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("remote engine: read %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("remote engine: %s status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("remote engine: decode %s: %w", path, err)
	}
	return nil
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
