package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/tbourn/go-cellar-backend/internal/config"
	"github.com/tbourn/go-cellar-backend/internal/domain"
)

// wineDoc is the Firestore document layout for a wine. The id is the
// document id and the owner is the parent path, so neither is stored.
type wineDoc struct {
	Name      string  `firestore:"name"`
	Producer  string  `firestore:"producer"`
	Varietal  string  `firestore:"varietal"`
	Vintage   string  `firestore:"vintage"`
	Region    string  `firestore:"region"`
	Type      string  `firestore:"type"`
	Quantity  int64   `firestore:"quantity"`
	Valuation float64 `firestore:"valuation"`
	Notes     string  `firestore:"notes,omitempty"`
	AddedAt   int64   `firestore:"addedAt"`
}

func docFromFields(f domain.WineFields, addedAt int64) wineDoc {
	return wineDoc{
		Name:      f.Name,
		Producer:  f.Producer,
		Varietal:  f.Varietal,
		Vintage:   f.Vintage,
		Region:    f.Region,
		Type:      string(f.Type),
		Quantity:  int64(f.Quantity),
		Valuation: f.Valuation,
		Notes:     f.Notes,
		AddedAt:   addedAt,
	}
}

// toWine converts a stored document. Documents written by other clients may
// spell the type differently, so it is parsed leniently.
func (d wineDoc) toWine(userID, id string) domain.Wine {
	typ := domain.WineType(d.Type)
	if t, ok := domain.ParseWineType(d.Type); ok {
		typ = t
	}
	return domain.Wine{
		ID:        id,
		UserID:    userID,
		Name:      d.Name,
		Producer:  d.Producer,
		Varietal:  d.Varietal,
		Vintage:   d.Vintage,
		Region:    d.Region,
		Type:      typ,
		Quantity:  int(d.Quantity),
		Valuation: d.Valuation,
		Notes:     d.Notes,
		AddedAt:   d.AddedAt,
	}
}

// patchUpdates lists field paths for the non-nil members of p.
func patchUpdates(p domain.WinePatch) []firestore.Update {
	var ups []firestore.Update
	add := func(path string, v any) { ups = append(ups, firestore.Update{Path: path, Value: v}) }
	if p.Name != nil {
		add("name", *p.Name)
	}
	if p.Producer != nil {
		add("producer", *p.Producer)
	}
	if p.Varietal != nil {
		add("varietal", *p.Varietal)
	}
	if p.Vintage != nil {
		add("vintage", *p.Vintage)
	}
	if p.Region != nil {
		add("region", *p.Region)
	}
	if p.Type != nil {
		add("type", string(*p.Type))
	}
	if p.Quantity != nil {
		add("quantity", int64(*p.Quantity))
	}
	if p.Valuation != nil {
		add("valuation", *p.Valuation)
	}
	if p.Notes != nil {
		add("notes", *p.Notes)
	}
	return ups
}

// FirestoreStore is the Cloud Firestore driver. Records live at
// users/{uid}/wines/{id}. Setting FIRESTORE_EMULATOR_HOST points the client
// at a local emulator.
type FirestoreStore struct {
	client *firestore.Client
	now    func() time.Time
}

// NewFirestoreStore validates the Firebase parameters and opens a client.
// An incomplete configuration fails with ErrIncompleteConfig naming the
// missing variables.
func NewFirestoreStore(ctx context.Context, cfg config.FirebaseConfig) (*FirestoreStore, error) {
	if !cfg.Complete() {
		return nil, fmt.Errorf("%w: missing %s", ErrIncompleteConfig, strings.Join(cfg.Missing(), ", "))
	}
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := firestore.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore client for %s: %w", cfg.ProjectID, err)
	}
	return &FirestoreStore{client: client, now: time.Now}, nil
}

func (s *FirestoreStore) wines(userID string) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(userID).Collection("wines")
}

func (s *FirestoreStore) ordered(userID string) firestore.Query {
	return s.wines(userID).OrderBy("addedAt", firestore.Desc)
}

// Subscribe attaches a snapshot listener to the ordered collection query.
func (s *FirestoreStore) Subscribe(ctx context.Context, userID string) (*Subscription, error) {
	sub := newSubscription(ctx)
	it := s.ordered(userID).Snapshots(sub.ctx)

	go func() {
		defer it.Stop()
		for {
			snap, err := it.Next()
			if err != nil {
				if sub.ctx.Err() != nil || status.Code(err) == codes.Canceled {
					sub.finish(nil)
					return
				}
				log.Error().Err(err).Str("user_id", userID).Msg("firestore listener failed")
				sub.finish(err)
				return
			}
			docs, err := snap.Documents.GetAll()
			if err != nil {
				sub.finish(err)
				return
			}
			sub.publish(decodeAll(userID, docs))
		}
	}()
	return sub, nil
}

func (s *FirestoreStore) List(ctx context.Context, userID string) ([]domain.Wine, error) {
	docs, err := s.ordered(userID).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	return decodeAll(userID, docs), nil
}

func (s *FirestoreStore) Get(ctx context.Context, userID, id string) (*domain.Wine, error) {
	snap, err := s.wines(userID).Doc(id).Get(ctx)
	if err != nil {
		return nil, mapFirestoreErr(err)
	}
	var d wineDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, fmt.Errorf("decode wine %s: %w", id, err)
	}
	w := d.toWine(userID, id)
	return &w, nil
}

func (s *FirestoreStore) Create(ctx context.Context, userID string, f domain.WineFields) (string, error) {
	ref, _, err := s.wines(userID).Add(ctx, docFromFields(f, s.now().UnixMilli()))
	if err != nil {
		return "", err
	}
	return ref.ID, nil
}

// Update fails with ErrNotFound when the document does not exist; Firestore
// rejects updates of missing documents.
func (s *FirestoreStore) Update(ctx context.Context, userID, id string, p domain.WinePatch) error {
	ups := patchUpdates(p)
	if len(ups) == 0 {
		_, err := s.Get(ctx, userID, id)
		return err
	}
	_, err := s.wines(userID).Doc(id).Update(ctx, ups)
	return mapFirestoreErr(err)
}

// Delete requires the document to exist.
func (s *FirestoreStore) Delete(ctx context.Context, userID, id string) error {
	_, err := s.wines(userID).Doc(id).Delete(ctx, firestore.Exists)
	return mapFirestoreErr(err)
}

func (s *FirestoreStore) Close() error { return s.client.Close() }

func decodeAll(userID string, docs []*firestore.DocumentSnapshot) []domain.Wine {
	out := make([]domain.Wine, 0, len(docs))
	for _, ds := range docs {
		var d wineDoc
		if err := ds.DataTo(&d); err != nil {
			log.Warn().Err(err).Str("doc", ds.Ref.Path).Msg("skipping undecodable wine document")
			continue
		}
		out = append(out, d.toWine(userID, ds.Ref.ID))
	}
	return out
}

func mapFirestoreErr(err error) error {
	if err == nil {
		return nil
	}
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	return err
}
