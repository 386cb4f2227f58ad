package domain

import "context"

// Category is a subject category a publication is filed under.
type Category struct {
	ID          string `bson:"_id,omitempty" json:"-"`
	ExposedID   string `bson:"exposed_id" json:"id"`
	DisplayName string `bson:"display_name" json:"displayName"`
}

// CategoryRepository defines operations for reading and seeding categories
type CategoryRepository interface {
	// GetByExposedID returns nil, nil when the category does not exist
	GetByExposedID(ctx context.Context, id string) (*Category, error)
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) ([]*Category, error)
	Upsert(ctx context.Context, category *Category) error
}
