// Package jsp (JSON persistence) provides utilities to store and load arbitrary
// JSON-encoded structures with optional checksumming and compression.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package jsp

import (
	"os"
	"path/filepath"

	"github.com/regsample/psrs/cmn/cos"
)

const (
	signature = "psrs" // file signature
	version   = 1
	//                              0 ---------------- 63  64 ------ 95 | 96 ------ 127
	prefLen = 2 * cos.SizeofI64 // [ signature | jsp ver | meta version |   bit flags  ]
)

func Save(fpath string, v any, opts Options) (err error) {
	var (
		file *os.File
		tmp  = fpath + ".tmp." + cos.RandString(6)
	)
	if err = os.MkdirAll(filepath.Dir(fpath), 0o755); err != nil {
		return
	}
	if file, err = os.Create(tmp); err != nil {
		return
	}
	defer func() {
		if err != nil {
			os.Remove(tmp)
		}
	}()
	if err = Encode(file, v, opts); err != nil {
		file.Close()
		return
	}
	if err = file.Close(); err != nil {
		return
	}
	return os.Rename(tmp, fpath)
}

// Load leaves a corrupted file in place: the caller decides what to do with it.
func Load(fpath string, v any, opts Options) error {
	file, err := os.Open(fpath)
	if err != nil {
		return err
	}
	err = Decode(file, v, opts, fpath)
	file.Close()
	return err
}
