// Package kvdb provides a local key-value store for the psrs run history.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package kvdb

import (
	"path"
	"sort"
	"strings"
	"sync"

	jsoniter "github.com/json-iterator/go"
)

type DBMock struct {
	values map[string]string
	mtx    sync.RWMutex
}

// interface guard
var _ Driver = (*DBMock)(nil)

func NewDBMock() *DBMock     { return &DBMock{values: make(map[string]string)} }
func (*DBMock) Close() error { return nil }

func (bd *DBMock) Set(collection, key string, object any) error {
	b, err := jsoniter.Marshal(object)
	if err != nil {
		return err
	}
	return bd.SetString(collection, key, string(b))
}

func (bd *DBMock) Get(collection, key string, object any) error {
	s, err := bd.GetString(collection, key)
	if err != nil {
		return err
	}
	return jsoniter.Unmarshal([]byte(s), object)
}

func (bd *DBMock) SetString(collection, key, data string) error {
	bd.mtx.Lock()
	bd.values[makePath(collection, key)] = data
	bd.mtx.Unlock()
	return nil
}

func (bd *DBMock) GetString(collection, key string) (string, error) {
	bd.mtx.RLock()
	defer bd.mtx.RUnlock()
	value, ok := bd.values[makePath(collection, key)]
	if !ok {
		return "", NewErrNotFound(collection, key)
	}
	return value, nil
}

func (bd *DBMock) Delete(collection, key string) error {
	bd.mtx.Lock()
	defer bd.mtx.Unlock()
	name := makePath(collection, key)
	if _, ok := bd.values[name]; !ok {
		return NewErrNotFound(collection, key)
	}
	delete(bd.values, name)
	return nil
}

func (bd *DBMock) DeleteCollection(collection string) error {
	bd.mtx.Lock()
	defer bd.mtx.Unlock()
	for k := range bd.values {
		if c, _ := ParsePath(k); c == collection {
			delete(bd.values, k)
		}
	}
	return nil
}

func (bd *DBMock) List(collection, pattern string) ([]string, error) {
	keys := make([]string, 0)
	bd.iterate(collection, pattern, func(key, _ string) { keys = append(keys, key) })
	sort.Strings(keys)
	return keys, nil
}

func (bd *DBMock) GetAll(collection, pattern string) (map[string]string, error) {
	values := make(map[string]string)
	bd.iterate(collection, pattern, func(key, value string) { values[key] = value })
	return values, nil
}

func (bd *DBMock) iterate(collection, pattern string, cb func(key, value string)) {
	bd.mtx.RLock()
	defer bd.mtx.RUnlock()
	for k, v := range bd.values {
		c, key := ParsePath(k)
		if c != collection || key == "" {
			continue
		}
		if hasWildcards(pattern) {
			// path.Match: '*' and '?' never match '/'
			if ok, _ := path.Match(pattern, key); !ok {
				continue
			}
		} else if !strings.HasPrefix(key, pattern) {
			continue
		}
		cb(key, v)
	}
}
