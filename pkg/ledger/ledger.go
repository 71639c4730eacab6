/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package ledger

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-memdb"

	"github.com/Juice-Labs/borrow/pkg/errors"
	"github.com/Juice-Labs/borrow/pkg/logger"
	"github.com/Juice-Labs/borrow/pkg/slot"
	"github.com/Juice-Labs/borrow/pkg/utilities"
)

const (
	StateLive  = "live"
	StateEnded = "ended"

	DefaultLimit = 64

	table = "eras"
)

var (
	ErrNotFound = errors.New("ledger: era not found")
)

// Era is the record of one resource instance's lifetime in a slot.
type Era struct {
	Id   string
	Slot string
	Era  uint64

	State      string
	Started    time.Time
	Ended      time.Time
	Reason     string
	CloseError string

	Acquisitions int
	PeakActive   int
}

// Ledger records the eras of one or more slots in memory. It is a
// slot.Observer and keeps the live era plus the last limit ended eras of
// every slot.
type Ledger struct {
	db    *memdb.MemDB
	limit int
	now   func() time.Time
}

func New(limit int) (*Ledger, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	schema := &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			table: {
				Name: table,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.UUIDFieldIndex{Field: "Id"},
					},
					"era": {
						Name:   "era",
						Unique: true,
						Indexer: &memdb.CompoundIndex{
							Indexes: []memdb.Indexer{
								&memdb.StringFieldIndex{Field: "Slot"},
								&memdb.UintFieldIndex{Field: "Era"},
							},
						},
					},
					"slot": {
						Name:    "slot",
						Unique:  false,
						Indexer: &memdb.StringFieldIndex{Field: "Slot"},
					},
				},
			},
		},
	}

	db, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, err
	}

	return &Ledger{
		db:    db,
		limit: limit,
		now:   time.Now,
	}, nil
}

func (ledger *Ledger) Get(id string) (Era, error) {
	txn := ledger.db.Txn(false)
	defer txn.Abort()

	obj, err := txn.First(table, "id", id)
	if err != nil {
		return Era{}, err
	}
	if obj == nil {
		return Era{}, ErrNotFound
	}

	return utilities.Require[Era](obj), nil
}

// Eras returns the recorded eras of a slot, oldest first.
func (ledger *Ledger) Eras(slotName string) ([]Era, error) {
	txn := ledger.db.Txn(false)
	defer txn.Abort()

	return eras(txn, slotName)
}

// Current returns the live era of a slot, if any.
func (ledger *Ledger) Current(slotName string) (Era, bool, error) {
	all, err := ledger.Eras(slotName)
	if err != nil {
		return Era{}, false, err
	}

	for _, era := range all {
		if era.State == StateLive {
			return era, true, nil
		}
	}

	return Era{}, false, nil
}

func eras(txn *memdb.Txn, slotName string) ([]Era, error) {
	iterator, err := txn.Get(table, "slot", slotName)
	if err != nil {
		return nil, err
	}

	var result []Era
	for obj := iterator.Next(); obj != nil; obj = iterator.Next() {
		result = append(result, utilities.Require[Era](obj))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Era < result[j].Era
	})

	return result, nil
}

func (ledger *Ledger) Created(slotName string, era uint64) {
	record := Era{
		Id:      uuid.NewString(),
		Slot:    slotName,
		Era:     era,
		State:   StateLive,
		Started: ledger.now(),
	}

	txn := ledger.db.Txn(true)
	if err := txn.Insert(table, record); err != nil {
		txn.Abort()
		logger.Warningf("ledger: failed to record era %d of %s, %v", era, slotName, err)
		return
	}

	txn.Commit()
}

func (ledger *Ledger) Acquired(slotName string, era uint64, active int) {
	ledger.update(slotName, era, func(record *Era) {
		record.Acquisitions++
		if active > record.PeakActive {
			record.PeakActive = active
		}
	})
}

func (ledger *Ledger) Released(slotName string, era uint64, active int) {}

func (ledger *Ledger) Ended(slotName string, era uint64, reason slot.CloseReason, err error) {
	ledger.update(slotName, era, func(record *Era) {
		record.State = StateEnded
		record.Ended = ledger.now()
		record.Reason = reason.String()
		if err != nil {
			record.CloseError = err.Error()
		}
	})

	if err := ledger.prune(slotName); err != nil {
		logger.Warningf("ledger: failed to prune eras of %s, %v", slotName, err)
	}
}

func (ledger *Ledger) update(slotName string, era uint64, callback func(record *Era)) {
	txn := ledger.db.Txn(true)

	obj, err := txn.First(table, "era", slotName, era)
	if err == nil && obj == nil {
		err = ErrNotFound
	}
	if err != nil {
		txn.Abort()
		logger.Warningf("ledger: failed to update era %d of %s, %v", era, slotName, err)
		return
	}

	record := utilities.Require[Era](obj)
	callback(&record)

	if err = txn.Insert(table, record); err != nil {
		txn.Abort()
		logger.Warningf("ledger: failed to update era %d of %s, %v", era, slotName, err)
		return
	}

	txn.Commit()
}

func (ledger *Ledger) prune(slotName string) error {
	txn := ledger.db.Txn(true)

	all, err := eras(txn, slotName)
	if err != nil {
		txn.Abort()
		return err
	}

	var ended []Era
	for _, era := range all {
		if era.State == StateEnded {
			ended = append(ended, era)
		}
	}

	for len(ended) > ledger.limit {
		if err = txn.Delete(table, ended[0]); err != nil {
			txn.Abort()
			return err
		}
		ended = ended[1:]
	}

	txn.Commit()
	return nil
}
