// Package kvdb provides a local key-value store for the psrs run history.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package kvdb

import (
	"strconv"
	"strings"

	"github.com/regsample/psrs/cmn/cos"
)

// ## Collection ##
//   The collection is virtual: a key prefix separated from the key by
//   CollectionSepa.
// ## List ##
//   An empty pattern lists the whole collection. A pattern may include '*'
//   and '?'; a pattern without wildcards is a prefix.
// ## Errors ##
//   Drivers convert their own errors to kvdb errors.

const CollectionSepa = "##"

type (
	Driver interface {
		// sync data to disk on close
		Close() error
		// objects are stored as JSON
		Set(collection, key string, object any) error
		Get(collection, key string, object any) error
		SetString(collection, key, data string) error
		GetString(collection, key string) (string, error)
		Delete(collection, key string) error
		DeleteCollection(collection string) error
		// sorted keys of a collection matching pattern
		List(collection, pattern string) ([]string, error)
		// map[key]value of a collection matching pattern
		GetAll(collection, pattern string) (map[string]string, error)
	}

	// collection name, as the "where" of cos.ErrNotFound
	collName string
)

func makePath(collection, key string) string { return collection + CollectionSepa + key }

// ParsePath extracts collection and key names from a full key path.
func ParsePath(path string) (string, string) {
	pos := strings.Index(path, CollectionSepa)
	if pos < 0 {
		return path, ""
	}
	return path[:pos], path[pos+len(CollectionSepa):]
}

func hasWildcards(pattern string) bool { return strings.ContainsAny(pattern, "*?") }

func (c collName) String() string { return "collection " + strconv.Quote(string(c)) }

func NewErrNotFound(collection, key string) *cos.ErrNotFound {
	return cos.NewErrNotFound(collName(collection), "key "+strconv.Quote(key))
}

func IsErrNotFound(err error) bool { return cos.IsErrNotFound(err) }
