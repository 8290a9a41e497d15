package xid

import "go.mongodb.org/mongo-driver/bson/primitive"

// New returns a fresh record identity. Identities are ObjectID hex strings on
// every backend so records can move between stores unchanged.
func New() string {
	return primitive.NewObjectID().Hex()
}

// Valid reports whether id has the shape produced by New.
func Valid(id string) bool {
	return primitive.IsValidObjectID(id)
}
