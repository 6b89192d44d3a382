// Package kvdb provides a local key-value store for the psrs run history.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package kvdb

import (
	"sort"

	"github.com/regsample/psrs/cmn/nlog"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/tidwall/buntdb"
)

const (
	// auto-shrink the file when it grows by this percentage since the last shrink
	autoShrinkPercentage = 50
	autoShrinkMinSize    = 1024 * 1024
)

type BuntDriver struct {
	driver *buntdb.DB
}

// interface guard
var _ Driver = (*BuntDriver)(nil)

// NewBuntDB opens (or creates) the database file; ":memory:" for in-memory.
func NewBuntDB(path string) (*BuntDriver, error) {
	driver, err := buntdb.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %q", path)
	}
	var conf buntdb.Config
	if err := driver.ReadConfig(&conf); err != nil {
		driver.Close()
		return nil, err
	}
	conf.AutoShrinkPercentage = autoShrinkPercentage
	conf.AutoShrinkMinSize = autoShrinkMinSize
	conf.SyncPolicy = buntdb.EverySecond
	if err := driver.SetConfig(conf); err != nil {
		driver.Close()
		return nil, err
	}
	return &BuntDriver{driver: driver}, nil
}

func (bd *BuntDriver) Close() error { return bd.driver.Close() }

func (bd *BuntDriver) Set(collection, key string, object any) error {
	b, err := jsoniter.Marshal(object)
	if err != nil {
		return err
	}
	return bd.SetString(collection, key, string(b))
}

func (bd *BuntDriver) Get(collection, key string, object any) error {
	s, err := bd.GetString(collection, key)
	if err != nil {
		return err
	}
	return jsoniter.Unmarshal([]byte(s), object)
}

func (bd *BuntDriver) SetString(collection, key, data string) error {
	err := bd.driver.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(makePath(collection, key), data, nil)
		return err
	})
	return err
}

func (bd *BuntDriver) GetString(collection, key string) (value string, err error) {
	err = bd.driver.View(func(tx *buntdb.Tx) error {
		var err error
		value, err = tx.Get(makePath(collection, key))
		return err
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		err = NewErrNotFound(collection, key)
	}
	return value, err
}

func (bd *BuntDriver) Delete(collection, key string) error {
	err := bd.driver.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Delete(makePath(collection, key))
		return err
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return NewErrNotFound(collection, key)
	}
	return err
}

func (bd *BuntDriver) DeleteCollection(collection string) error {
	keys, err := bd.List(collection, "")
	if err != nil || len(keys) == 0 {
		return err
	}
	return bd.driver.Update(func(tx *buntdb.Tx) error {
		for _, k := range keys {
			if _, err := tx.Delete(makePath(collection, k)); err != nil && !errors.Is(err, buntdb.ErrNotFound) {
				nlog.Warningf("failed to delete %s/%s: %v", collection, k, err)
				return err
			}
		}
		return nil
	})
}

func (bd *BuntDriver) List(collection, pattern string) ([]string, error) {
	keys := make([]string, 0)
	err := bd.iterate(collection, pattern, func(key, _ string) {
		keys = append(keys, key)
	})
	sort.Strings(keys)
	return keys, err
}

func (bd *BuntDriver) GetAll(collection, pattern string) (map[string]string, error) {
	values := make(map[string]string)
	err := bd.iterate(collection, pattern, func(key, value string) {
		values[key] = value
	})
	return values, err
}

func (bd *BuntDriver) iterate(collection, pattern string, cb func(key, value string)) error {
	if !hasWildcards(pattern) {
		pattern += "*"
	}
	return bd.driver.View(func(tx *buntdb.Tx) error {
		return tx.AscendKeys(makePath(collection, pattern), func(path, value string) bool {
			if _, key := ParsePath(path); key != "" {
				cb(key, value)
			}
			return true
		})
	})
}
