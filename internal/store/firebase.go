package store

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/db"
	"google.golang.org/api/option"

	"github.com/2beens/blogsave/internal/blog"
)

// FirebaseStore keeps records in a Firebase Realtime Database node,
// one child per record ID.
type FirebaseStore struct {
	client *db.Client
	root   string
}

type NewFirebaseStoreParams struct {
	DatabaseURL     string
	CredentialsFile string
	RecordsPath     string
}

func NewFirebaseStore(ctx context.Context, params NewFirebaseStoreParams) (*FirebaseStore, error) {
	var opts []option.ClientOption
	if params.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(params.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{
		DatabaseURL: params.DatabaseURL,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}

	client, err := app.Database(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase database client: %w", err)
	}

	return &FirebaseStore{
		client: client,
		root:   params.RecordsPath,
	}, nil
}

func (s *FirebaseStore) Put(ctx context.Context, record *blog.Record) error {
	if err := validRecord(record); err != nil {
		return err
	}
	if err := s.client.NewRef(recordPath(s.root, record.ID)).Set(ctx, record); err != nil {
		return fmt.Errorf("firebase set %s: %w", record.ID, err)
	}
	return nil
}

// All reads the whole records node. A missing node decodes to an empty map.
func (s *FirebaseStore) All(ctx context.Context) (map[string]*blog.Record, error) {
	var records map[string]*blog.Record
	if err := s.client.NewRef(s.root).Get(ctx, &records); err != nil {
		return nil, fmt.Errorf("firebase get %s: %w", s.root, err)
	}
	if records == nil {
		records = make(map[string]*blog.Record)
	}
	return records, nil
}
