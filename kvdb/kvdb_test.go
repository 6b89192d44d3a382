// Package kvdb provides a local key-value store for the psrs run history.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package kvdb_test

import (
	"path/filepath"

	"github.com/regsample/psrs/kvdb"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type record struct {
	ID    string  `json:"id"`
	Sizes []int   `json:"sizes"`
	Skew  float64 `json:"skew"`
}

var _ = Describe("Driver", func() {
	drivers := []struct {
		open func() kvdb.Driver
		name string
	}{
		{name: "mock", open: func() kvdb.Driver { return kvdb.NewDBMock() }},
		{name: "buntdb", open: func() kvdb.Driver {
			db, err := kvdb.NewBuntDB(":memory:")
			Expect(err).NotTo(HaveOccurred())
			return db
		}},
	}
	for _, drv := range drivers {
		Context(drv.name, func() {
			var db kvdb.Driver

			BeforeEach(func() {
				db = drv.open()
			})
			AfterEach(func() {
				Expect(db.Close()).To(Succeed())
			})

			It("should set and get objects and strings", func() {
				in := record{ID: "j1", Sizes: []int{7, 4, 4, 1}, Skew: 1.75}
				Expect(db.Set("jobs", in.ID, in)).To(Succeed())
				var out record
				Expect(db.Get("jobs", in.ID, &out)).To(Succeed())
				Expect(out).To(Equal(in))

				Expect(db.SetString("meta", "last", "j1")).To(Succeed())
				s, err := db.GetString("meta", "last")
				Expect(err).NotTo(HaveOccurred())
				Expect(s).To(Equal("j1"))
			})

			It("should report missing keys", func() {
				_, err := db.GetString("jobs", "nope")
				Expect(kvdb.IsErrNotFound(err)).To(BeTrue())
				Expect(err.Error()).To(Equal(`collection "jobs": key "nope" does not exist`))
				Expect(kvdb.IsErrNotFound(db.Delete("jobs", "nope"))).To(BeTrue())
				var out record
				Expect(kvdb.IsErrNotFound(db.Get("jobs", "nope", &out))).To(BeTrue())
			})

			It("should list by prefix and pattern within a collection", func() {
				for _, key := range []string{"b-2", "a-1", "a-2", "c-10"} {
					Expect(db.SetString("jobs", key, key)).To(Succeed())
				}
				Expect(db.SetString("other", "a-3", "x")).To(Succeed())

				keys, err := db.List("jobs", "")
				Expect(err).NotTo(HaveOccurred())
				Expect(keys).To(Equal([]string{"a-1", "a-2", "b-2", "c-10"}))

				keys, err = db.List("jobs", "a")
				Expect(err).NotTo(HaveOccurred())
				Expect(keys).To(Equal([]string{"a-1", "a-2"}))

				keys, err = db.List("jobs", "?-2")
				Expect(err).NotTo(HaveOccurred())
				Expect(keys).To(Equal([]string{"a-2", "b-2"}))

				all, err := db.GetAll("jobs", "c")
				Expect(err).NotTo(HaveOccurred())
				Expect(all).To(Equal(map[string]string{"c-10": "c-10"}))
			})

			It("should delete keys and collections", func() {
				Expect(db.SetString("jobs", "a", "1")).To(Succeed())
				Expect(db.SetString("jobs", "b", "2")).To(Succeed())
				Expect(db.SetString("keep", "a", "3")).To(Succeed())

				Expect(db.Delete("jobs", "a")).To(Succeed())
				keys, _ := db.List("jobs", "")
				Expect(keys).To(Equal([]string{"b"}))

				Expect(db.DeleteCollection("jobs")).To(Succeed())
				keys, _ = db.List("jobs", "")
				Expect(keys).To(BeEmpty())
				s, err := db.GetString("keep", "a")
				Expect(err).NotTo(HaveOccurred())
				Expect(s).To(Equal("3"))
			})
		})
	}

	It("should persist to file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "history.db")
		db, err := kvdb.NewBuntDB(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(db.SetString("jobs", "j1", "done")).To(Succeed())
		Expect(db.Close()).To(Succeed())

		db, err = kvdb.NewBuntDB(path)
		Expect(err).NotTo(HaveOccurred())
		defer db.Close()
		s, err := db.GetString("jobs", "j1")
		Expect(err).NotTo(HaveOccurred())
		Expect(s).To(Equal("done"))
	})

	It("should split paths", func() {
		c, k := kvdb.ParsePath("jobs##j1")
		Expect(c).To(Equal("jobs"))
		Expect(k).To(Equal("j1"))
		c, k = kvdb.ParsePath("jobs")
		Expect(c).To(Equal("jobs"))
		Expect(k).To(BeEmpty())
	})
})
