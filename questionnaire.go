package otfmaturity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/nsip/otf-maturity/internal/model"
	"github.com/pkg/errors"
)

const (
	urlPrefix    = "url:"
	uploadPrefix = "upload:"
)

// returned when an uploaded questionnaire is no longer cached
var errModelNotFound = errors.New("questionnaire not found")

//
// a loaded questionnaire as kept in the cache
//
type questionnaire struct {
	ID       string                 `json:"modelId"`
	Source   string                 `json:"source"`
	Rows     []model.RequirementRow `json:"rows"`
	Warnings []model.ParseWarning   `json:"warnings"`
}

func urlModelID(u string) string {
	return urlPrefix + u
}

func uploadModelID(data []byte) string {
	sum := sha256.Sum256(data)
	return uploadPrefix + hex.EncodeToString(sum[:])
}

//
// finds the questionnaire for a model id.
// url models are refetched once expired, uploads are only
// available while cached.
// an empty id means the configured default url; other urls
// must be the configured one or listed as allowed.
//
func (s *OtfMaturityService) questionnaire(ctx context.Context, id string) (*questionnaire, error) {
	if id == "" {
		if s.modelURL == "" {
			return nil, badRequest("no questionnaire url configured, upload the file instead")
		}
		id = urlModelID(s.modelURL)
	}
	if strings.HasPrefix(id, urlPrefix) && !s.allowedURL(strings.TrimPrefix(id, urlPrefix)) {
		return nil, badRequest("questionnaire url %q is not allowed, upload the file instead", strings.TrimPrefix(id, urlPrefix))
	}

	if q, ok := s.cached(ctx, id); ok {
		s.metrics.loads.WithLabelValues(sourceKind(id), loadCached).Inc()
		return q, nil
	}

	switch {
	case strings.HasPrefix(id, urlPrefix):
		return s.load(ctx, id, model.Source{URL: strings.TrimPrefix(id, urlPrefix)})
	case strings.HasPrefix(id, uploadPrefix):
		return nil, errModelNotFound
	default:
		return nil, badRequest("malformed model id %q", id)
	}
}

//
// reads an uploaded workbook, reusing a cached copy of
// identical content
//
func (s *OtfMaturityService) upload(ctx context.Context, data []byte) (*questionnaire, error) {
	id := uploadModelID(data)
	if q, ok := s.cached(ctx, id); ok {
		s.metrics.loads.WithLabelValues(sourceKind(id), loadCached).Inc()
		return q, nil
	}
	return s.load(ctx, id, model.Source{Data: data})
}

func (s *OtfMaturityService) load(ctx context.Context, id string, src model.Source) (*questionnaire, error) {
	kind := sourceKind(id)
	rows, warns, err := s.loader.Load(ctx, src)
	if err != nil {
		var se *model.SchemaError
		if errors.As(err, &se) {
			s.metrics.loads.WithLabelValues(kind, loadSchema).Inc()
		} else {
			s.metrics.loads.WithLabelValues(kind, loadFailed).Inc()
		}
		s.e.Logger.Error(err)
		return nil, err
	}
	s.metrics.loads.WithLabelValues(kind, loadOK).Inc()

	for _, w := range warns.Items() {
		s.e.Logger.Warnf("questionnaire %s: %s", src, w)
	}
	s.metrics.weightWarnings.Add(float64(warns.Len()))
	s.e.Logger.Infof("loaded questionnaire %s: %d requirements", src, len(rows))

	q := &questionnaire{ID: id, Source: src.String(), Rows: rows, Warnings: warns.Items()}
	s.store(ctx, q)
	return q, nil
}

// cache problems never fail a request
func (s *OtfMaturityService) cached(ctx context.Context, id string) (*questionnaire, bool) {
	b, ok, err := s.cache.Get(ctx, id)
	if err != nil {
		s.e.Logger.Warnf("questionnaire cache read %s: %v", id, err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	q := &questionnaire{}
	if err := json.Unmarshal(b, q); err != nil {
		s.e.Logger.Warnf("questionnaire cache decode %s: %v", id, err)
		return nil, false
	}
	return q, true
}

func (s *OtfMaturityService) store(ctx context.Context, q *questionnaire) {
	b, err := json.Marshal(q)
	if err != nil {
		s.e.Logger.Warnf("questionnaire cache encode %s: %v", q.ID, err)
		return
	}
	if err := s.cache.Set(ctx, q.ID, b, s.cacheTTL); err != nil {
		s.e.Logger.Warnf("questionnaire cache write %s: %v", q.ID, err)
	}
}

func (s *OtfMaturityService) allowedURL(u string) bool {
	if u == "" {
		return false
	}
	if u == s.modelURL {
		return true
	}
	_, ok := s.allowedModelURLs[u]
	return ok
}

func sourceKind(id string) string {
	if strings.HasPrefix(id, uploadPrefix) {
		return "upload"
	}
	return "url"
}
