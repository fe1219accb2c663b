// Package repo defines a small generic repository interface over keyed
// records, with a Neo4j-backed implementation.
package repo

import "context"

// Repository is a generic keyed-record store. Put upserts by id.
type Repository[T any, ID comparable] interface {
	Get(ctx context.Context, id ID) (T, error)
	Put(ctx context.Context, entity T) error
	List(ctx context.Context, opts ListOpts) ([]T, error)
	Delete(ctx context.Context, id ID) error
}

// ListOpts controls pagination for List operations.
type ListOpts struct {
	Offset int
	Limit  int
}
