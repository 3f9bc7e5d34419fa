package services

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-cellar-backend/internal/domain"
	"github.com/tbourn/go-cellar-backend/internal/observability"
	"github.com/tbourn/go-cellar-backend/internal/search"
	"github.com/tbourn/go-cellar-backend/internal/store"
)

var cellarTracer = observability.Tracer("services/CellarService")

// CellarService applies the cellar rules on top of a store.Store. Every
// method refuses to run without a user id.
type CellarService struct {
	// Store is the backing cellar store.
	Store store.Store

	// TopVarietals is the dashboard default when the caller passes topN <= 0.
	TopVarietals int
	// SearchLimit is the default number of search hits.
	SearchLimit int
}

// NewCellarService constructs a CellarService with dashboard and search
// defaults.
func NewCellarService(s store.Store) *CellarService {
	return &CellarService{Store: s, TopVarietals: 5, SearchLimit: 10}
}

// Subscribe opens a live view of the user's cellar.
func (s *CellarService) Subscribe(ctx context.Context, userID string) (*store.Subscription, error) {
	if userID == "" {
		return nil, ErrNoUser
	}
	return s.Store.Subscribe(ctx, userID)
}

// List returns the current cellar, newest first.
func (s *CellarService) List(ctx context.Context, userID string) ([]domain.Wine, error) {
	if userID == "" {
		return nil, ErrNoUser
	}
	ctx, span := cellarTracer.Start(ctx, "List")
	defer span.End()

	ws, err := s.Store.List(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("cellar.wines", len(ws)))
	return ws, nil
}

// Get returns one wine or ErrWineNotFound.
func (s *CellarService) Get(ctx context.Context, userID, id string) (*domain.Wine, error) {
	if userID == "" {
		return nil, ErrNoUser
	}
	w, err := s.Store.Get(ctx, userID, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrWineNotFound
	}
	return w, err
}

// Create validates f and stores a new record, returning its id.
func (s *CellarService) Create(ctx context.Context, userID string, f domain.WineFields) (string, error) {
	if userID == "" {
		return "", ErrNoUser
	}
	ctx, span := cellarTracer.Start(ctx, "Create")
	defer span.End()

	f = f.Normalize()
	if err := f.Validate(); err != nil {
		return "", err
	}
	id, err := s.Store.Create(ctx, userID, f)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create failed")
		return "", &WriteError{Op: "create", Err: err}
	}
	span.SetAttributes(attribute.String("wine.id", id))
	return id, nil
}

// Update merges p into the record. The id and creation time never change.
func (s *CellarService) Update(ctx context.Context, userID, id string, p domain.WinePatch) error {
	if userID == "" {
		return ErrNoUser
	}
	ctx, span := cellarTracer.Start(ctx, "Update")
	defer span.End()
	span.SetAttributes(attribute.String("wine.id", id))

	p = p.Normalize()
	if p.IsEmpty() {
		return ErrEmptyPatch
	}
	if err := p.Validate(); err != nil {
		return err
	}
	return s.write(span, "update", s.Store.Update(ctx, userID, id, p))
}

// Delete removes a record once the user confirmed it.
func (s *CellarService) Delete(ctx context.Context, userID, id string, confirmed bool) error {
	if userID == "" {
		return ErrNoUser
	}
	if !confirmed {
		return ErrConfirmationRequired
	}
	ctx, span := cellarTracer.Start(ctx, "Delete")
	defer span.End()
	span.SetAttributes(attribute.String("wine.id", id))

	return s.write(span, "delete", s.Store.Delete(ctx, userID, id))
}

// AdjustQuantity adds delta to the bottle count. When the result is zero the
// user's choice decides whether the record is kept or removed; without a
// choice nothing is written and ErrChoiceRequired is returned.
func (s *CellarService) AdjustQuantity(ctx context.Context, userID, id string, delta int, choice ZeroChoice) (Adjustment, error) {
	if userID == "" {
		return Adjustment{}, ErrNoUser
	}
	ctx, span := cellarTracer.Start(ctx, "AdjustQuantity")
	defer span.End()
	span.SetAttributes(attribute.String("wine.id", id), attribute.Int("delta", delta))

	w, err := s.Store.Get(ctx, userID, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Adjustment{}, ErrWineNotFound
		}
		return Adjustment{}, err
	}

	adj := Adjust(*w, delta)
	if !adj.NeedsChoice {
		return adj, s.write(span, "update", s.Store.Update(ctx, userID, id, domain.QuantityPatch(adj.Quantity)))
	}
	switch choice {
	case ZeroRetain:
		return adj, s.write(span, "update", s.Store.Update(ctx, userID, id, domain.QuantityPatch(0)))
	case ZeroDiscard:
		return adj, s.write(span, "delete", s.Store.Delete(ctx, userID, id))
	default:
		return adj, ErrChoiceRequired
	}
}

// Summary computes the dashboard aggregates of the current cellar.
func (s *CellarService) Summary(ctx context.Context, userID string, topN int) (domain.CellarSummary, error) {
	if topN <= 0 {
		topN = s.TopVarietals
	}
	ws, err := s.List(ctx, userID)
	if err != nil {
		return domain.CellarSummary{}, err
	}
	return Summarize(ws, topN), nil
}

// SearchHit is a wine with its relevance score.
type SearchHit struct {
	domain.Wine
	Score float64 `json:"score"`
}

// Search ranks the user's wines against a free-text query.
func (s *CellarService) Search(ctx context.Context, userID, q string, k int) ([]SearchHit, error) {
	if userID == "" {
		return nil, ErrNoUser
	}
	if strings.TrimSpace(q) == "" {
		return nil, ErrEmptyQuery
	}
	if k <= 0 {
		k = s.SearchLimit
	}
	ws, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]domain.Wine, len(ws))
	for _, w := range ws {
		byID[w.ID] = w
	}
	res := search.NewWineIndex(ws).TopK(q, k)
	out := make([]SearchHit, 0, len(res))
	for _, r := range res {
		out = append(out, SearchHit{Wine: byID[r.ID], Score: r.Score})
	}
	return out, nil
}

// write maps a store write result onto service errors.
func (s *CellarService) write(span trace.Span, op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return ErrWineNotFound
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, op+" failed")
	return &WriteError{Op: op, Err: err}
}

// Summarize computes totals, bottles per type (types holding at least one
// bottle) and the topN varietals by bottle count. Wines without a varietal
// count as "Unknown"; equal counts keep first-seen order.
func Summarize(ws []domain.Wine, topN int) domain.CellarSummary {
	sum := domain.CellarSummary{
		DistinctLabels: len(ws),
		ByType:         map[string]int{},
		TopVarietals:   []domain.VarietalStat{},
	}

	var order []string
	byVarietal := map[string]int{}
	for _, w := range ws {
		sum.TotalBottles += w.Quantity
		sum.TotalValue += float64(w.Quantity) * w.Valuation
		if w.Quantity > 0 {
			sum.ByType[string(w.Type)] += w.Quantity
		}

		v := w.Varietal
		if v == "" {
			v = "Unknown"
		}
		if _, seen := byVarietal[v]; !seen {
			order = append(order, v)
		}
		byVarietal[v] += w.Quantity
	}

	for _, v := range order {
		sum.TopVarietals = append(sum.TopVarietals, domain.VarietalStat{Varietal: v, Bottles: byVarietal[v]})
	}
	sort.SliceStable(sum.TopVarietals, func(i, j int) bool {
		return sum.TopVarietals[i].Bottles > sum.TopVarietals[j].Bottles
	})
	if topN > 0 && len(sum.TopVarietals) > topN {
		sum.TopVarietals = sum.TopVarietals[:topN]
	}
	return sum
}
