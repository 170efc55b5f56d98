package batch

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/avikko/labelrun-go/internal/conf"
	"github.com/avikko/labelrun-go/internal/datastore"
	"github.com/avikko/labelrun-go/internal/dialect"
	"github.com/avikko/labelrun-go/internal/errors"
	"github.com/avikko/labelrun-go/internal/printer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMarkup = "^XA^FD{SERIAL3}^FS^XZ"

func newTestStore(t *testing.T) *datastore.SQLiteStore {
	t.Helper()
	settings := &conf.Settings{}
	settings.Output.SQLite.Enabled = true
	settings.Output.SQLite.Path = ":memory:"

	store := &datastore.SQLiteStore{Settings: settings}
	require.NoError(t, store.Open())
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedDesign(t *testing.T, store *datastore.SQLiteStore) uint {
	t.Helper()
	design := &datastore.Design{Name: "batch-test", Markup: testMarkup,
		WidthInches: 4, HeightInches: 6, Dpmm: 8}
	require.NoError(t, store.SaveDesign(design))
	return design.ID
}

func ledgerSerials(t *testing.T, store *datastore.SQLiteStore) []int {
	t.Helper()
	records, err := store.SearchPrintLogs(datastore.PrintLogFilter{})
	require.NoError(t, err)
	serials := make([]int, 0, len(records))
	for _, r := range records {
		serials = append(serials, r.Serial)
	}
	return serials
}

func TestRunAllUnitsSucceed(t *testing.T) {
	store := newTestStore(t)
	designID := seedDesign(t, store)
	transport := printer.NewMemory([]string{"zebra"}, "zebra")
	o := New(store, transport)

	res, err := o.Run(context.Background(), Request{
		DesignID:    designID,
		Markup:      testMarkup,
		StartSerial: 10,
		Quantity:    5,
		Device:      "zebra",
	})
	require.NoError(t, err)
	assert.Equal(t, 5, res.Printed)
	assert.Equal(t, dialect.ZPL, res.Dialect)

	assert.ElementsMatch(t, []int{10, 11, 12, 13, 14}, ledgerSerials(t, store),
		"ledger must hold exactly the contiguous serial range")

	jobs := transport.Jobs()
	require.Len(t, jobs, 5)
	assert.Contains(t, string(jobs[0].Payload), "^FD0010^FS",
		"payload must carry the expanded serial, not the token")
}

func TestRunAbortsOnDispatchFailure(t *testing.T) {
	store := newTestStore(t)
	designID := seedDesign(t, store)
	transport := printer.NewMemory([]string{"zebra"}, "zebra")
	transport.FailAt = 3 // third unit
	o := New(store, transport)

	res, err := o.Run(context.Background(), Request{
		DesignID:    designID,
		Markup:      testMarkup,
		StartSerial: 10,
		Quantity:    5,
		Device:      "zebra",
	})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryDeviceWrite))
	assert.Equal(t, 2, res.Printed)

	assert.ElementsMatch(t, []int{10, 11}, ledgerSerials(t, store),
		"no entry may exist for the failed unit or any later unit")
}

func TestRunUnknownDeviceFailsBeforeFirstEntry(t *testing.T) {
	store := newTestStore(t)
	designID := seedDesign(t, store)
	o := New(store, printer.NewMemory([]string{"zebra"}, ""))

	res, err := o.Run(context.Background(), Request{
		DesignID:    designID,
		Markup:      testMarkup,
		StartSerial: 1,
		Quantity:    3,
		Device:      "ghost",
	})
	require.Error(t, err)
	assert.True(t, errors.IsDeviceNotFound(err))
	assert.Zero(t, res.Printed)
	assert.Empty(t, ledgerSerials(t, store))
}

func TestRunReprintFlagPropagates(t *testing.T) {
	store := newTestStore(t)
	designID := seedDesign(t, store)
	o := New(store, printer.NewMemory([]string{"zebra"}, "zebra"))

	// Original issuance up to serial 5, then a reprint of serial 2.
	_, err := o.Run(context.Background(), Request{
		DesignID: designID, Markup: testMarkup, StartSerial: 1, Quantity: 5, Device: "zebra",
	})
	require.NoError(t, err)

	_, err = o.Run(context.Background(), Request{
		DesignID: designID, Markup: testMarkup, StartSerial: 2, Quantity: 1,
		Device: "zebra", Reprint: true,
	})
	require.NoError(t, err)

	records, err := store.SearchPrintLogs(datastore.PrintLogFilter{})
	require.NoError(t, err)
	var reprints int
	for _, r := range records {
		if r.Reprint {
			reprints++
			assert.Equal(t, 2, r.Serial)
		}
	}
	assert.Equal(t, 1, reprints)

	// The reprint must not move the resume point.
	next, err := o.ResumeSerial(designID)
	require.NoError(t, err)
	assert.Equal(t, 6, next)
}

func TestResumeSerialEmptyLedger(t *testing.T) {
	store := newTestStore(t)
	designID := seedDesign(t, store)
	o := New(store, printer.NewMemory([]string{"zebra"}, "zebra"))

	next, err := o.ResumeSerial(designID)
	require.NoError(t, err)
	assert.Equal(t, 1, next, "fresh design starts at serial 1")
}

func TestRunHonorsCancellationBetweenUnits(t *testing.T) {
	store := newTestStore(t)
	designID := seedDesign(t, store)
	o := New(store, printer.NewMemory([]string{"zebra"}, "zebra"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := o.Run(ctx, Request{
		DesignID: designID, Markup: testMarkup, StartSerial: 1, Quantity: 3, Device: "zebra",
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, res.Printed)
	assert.Empty(t, ledgerSerials(t, store))
}

func TestRunValidation(t *testing.T) {
	store := newTestStore(t)
	o := New(store, printer.NewMemory([]string{"zebra"}, "zebra"))

	cases := []Request{
		{Markup: "", StartSerial: 1, Quantity: 1, Device: "zebra"},
		{Markup: testMarkup, StartSerial: -1, Quantity: 1, Device: "zebra"},
		{Markup: testMarkup, StartSerial: 1, Quantity: 0, Device: "zebra"},
	}
	for _, req := range cases {
		_, err := o.Run(context.Background(), req)
		require.Error(t, err)
		assert.True(t, errors.IsCategory(err, errors.CategoryValidation), "request %+v", req)
	}
}

// appendFailingStore breaks the ledger after a configurable number of
// successful appends.
type appendFailingStore struct {
	datastore.Interface
	failAfter int
	appends   int
}

func (s *appendFailingStore) Append(entry *datastore.PrintLog) error {
	if s.appends >= s.failAfter {
		return errors.Newf("simulated ledger outage").
			Category(errors.CategoryLedgerWrite).
			Build()
	}
	s.appends++
	return s.Interface.Append(entry)
}

func TestRunSurfacesLedgerWriteFailure(t *testing.T) {
	store := newTestStore(t)
	designID := seedDesign(t, store)
	failing := &appendFailingStore{Interface: store, failAfter: 2}
	transport := printer.NewMemory([]string{"zebra"}, "zebra")
	o := New(failing, transport)

	res, err := o.Run(context.Background(), Request{
		DesignID: designID, Markup: testMarkup, StartSerial: 1, Quantity: 5, Device: "zebra",
	})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryLedgerWrite),
		"a lost ledger row after dispatch must surface loudly")
	assert.Equal(t, 2, res.Printed)
	assert.Len(t, transport.Jobs(), 3, "the third label was dispatched before the ledger failed")
}

func TestRunStampsDistinctTimestampsWithinBatch(t *testing.T) {
	store := newTestStore(t)
	designID := seedDesign(t, store)
	o := New(store, printer.NewMemory([]string{"zebra"}, "zebra"))

	base := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	o.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	_, err := o.Run(context.Background(), Request{
		DesignID: designID, Markup: "{TIME}", StartSerial: 1, Quantity: 2, Device: "zebra",
	})
	require.NoError(t, err)

	jobs := o.transport.(*printer.Memory).Jobs()
	require.Len(t, jobs, 2)
	assert.False(t, strings.EqualFold(string(jobs[0].Payload), string(jobs[1].Payload)),
		"each unit expands against its own clock reading")
}
