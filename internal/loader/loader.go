package loader

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"weekly-planner/internal/meal"
)

//go:embed data/*.json
var defaultData embed.FS

// Document names of the data set.
const (
	BreakfastDocument = "breakfast.json"
	LunchDocument     = "lunch.json"
	SnackDocument     = "snack.json"
	ConfigDocument    = "config.json"
)

var optionDocuments = map[meal.Type]string{
	meal.Breakfast: BreakfastDocument,
	meal.Lunch:     LunchDocument,
	meal.Snack:     SnackDocument,
}

// Source fetches a named document of the data set.
type Source interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// HTTPSource reads documents relative to a base URL.
type HTTPSource struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPSource creates a Source reading from baseURL.
func NewHTTPSource(baseURL string, httpClient *http.Client) *HTTPSource {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPSource{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Fetch performs a GET for baseURL/name.
func (s *HTTPSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	target := s.baseURL + "/" + url.PathEscape(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to load %s: status %d", target, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// FSSource reads documents from a filesystem.
type FSSource struct {
	fsys fs.FS
}

// NewFSSource creates a Source over fsys.
func NewFSSource(fsys fs.FS) *FSSource {
	return &FSSource{fsys: fsys}
}

// DefaultSource returns the data set compiled into the binary.
func DefaultSource() *FSSource {
	sub, err := fs.Sub(defaultData, "data")
	if err != nil {
		panic(err)
	}
	return NewFSSource(sub)
}

// Fetch reads the named file.
func (s *FSSource) Fetch(_ context.Context, name string) ([]byte, error) {
	data, err := fs.ReadFile(s.fsys, path.Clean(name))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

// Loader builds the meal catalog from a Source.
type Loader struct {
	source Source
	logger *zap.Logger
}

// New creates a Loader.
func New(source Source, logger *zap.Logger) *Loader {
	return &Loader{source: source, logger: logger}
}

// Load fetches all documents concurrently and waits for every one of them
// before building the catalog. A document that cannot be fetched or decoded
// is logged and treated as empty; Load itself only fails when ctx is done.
func (l *Loader) Load(ctx context.Context) (*meal.Catalog, error) {
	options := make([][]meal.Option, len(meal.Types))
	var settings meal.Settings

	g, gctx := errgroup.WithContext(ctx)
	for i, t := range meal.Types {
		g.Go(func() error {
			var opts []meal.Option
			if l.fetchJSON(gctx, optionDocuments[t], &opts) {
				options[i] = opts
			}
			return nil
		})
	}
	g.Go(func() error {
		var s meal.Settings
		if l.fetchJSON(gctx, ConfigDocument, &s) {
			settings = s
		}
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to load meal data: %w", err)
	}

	byType := make(map[meal.Type][]meal.Option, len(meal.Types))
	for i, t := range meal.Types {
		byType[t] = options[i]
		if len(options[i]) == 0 {
			l.logger.Warn("No meal options loaded", zap.String("meal_type", string(t)))
		}
	}
	for _, ck := range settings.CategoryKeywords {
		if !ck.Category.Valid() {
			l.logger.Warn("Ignoring unknown shopping category", zap.String("category", string(ck.Category)))
		}
	}

	catalog := meal.NewCatalog(byType, settings)
	l.logger.Info("Meal data loaded",
		zap.Int("breakfast", len(byType[meal.Breakfast])),
		zap.Int("lunch", len(byType[meal.Lunch])),
		zap.Int("snack", len(byType[meal.Snack])),
		zap.Int("categories", len(settings.CategoryKeywords)),
	)
	return catalog, nil
}

func (l *Loader) fetchJSON(ctx context.Context, name string, v any) bool {
	data, err := l.source.Fetch(ctx, name)
	if err != nil {
		l.logger.Error("Failed to fetch meal data", zap.String("document", name), zap.Error(err))
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		l.logger.Error("Failed to decode meal data", zap.String("document", name), zap.Error(err))
		return false
	}
	return true
}
