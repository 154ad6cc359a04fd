package redis

// Redis key naming conventions for written documents.
// All keys are prefixed with "batchwrite:" to avoid collisions.

const keyPrefix = "batchwrite:"

// docKey returns the key for a document: batchwrite:doc:{uri}
func docKey(uri string) string { return keyPrefix + "doc:" + uri }

// uriIndexKey is the Set tracking all written URIs for enumeration.
const uriIndexKey = keyPrefix + "uris"
