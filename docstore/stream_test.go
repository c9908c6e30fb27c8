package docstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/typed-criteria-docstore-go/criteria"
	"github.com/AntonStoeckl/typed-criteria-docstore-go/docstore"
	"github.com/AntonStoeckl/typed-criteria-docstore-go/testutil/fixtures"
	. "github.com/AntonStoeckl/typed-criteria-docstore-go/testutil/helper"
)

func Test_Stream_CancelStopsDeliveryAndClosesCursor(t *testing.T) {
	// setup
	driver := newFakeDriver(100)
	repository := GivenPersonRepository(t, driver)

	// arrange
	stream, err := repository.Query(context.Background(), criteria.All[fixtures.Person]())
	require.NoError(t, err)
	require.True(t, stream.Next())
	assert.Equal(t, "person 0", stream.Entity().Name)

	// act
	stream.Cancel()

	// assert
	cursor := driver.lastCursor()
	require.NotNil(t, cursor)
	assert.True(t, cursor.closed.Load(), "cursor must be closed when Cancel returns")
	assert.False(t, stream.Next(), "no entity may be delivered after Cancel")
	assert.ErrorIs(t, stream.Err(), docstore.ErrCancelled)
	assert.Less(t, cursor.reads.Load(), int32(100))
}

func Test_Stream_CancelIsIdempotent(t *testing.T) {
	// setup
	repository := GivenPersonRepository(t, newFakeDriver(3))

	// arrange
	stream, err := repository.Query(context.Background(), criteria.All[fixtures.Person]())
	require.NoError(t, err)

	// act
	stream.Cancel()
	stream.Cancel()

	// assert
	assert.False(t, stream.Next())
	assert.ErrorIs(t, stream.Err(), docstore.ErrCancelled)
}

func Test_Stream_CancelWithBufferedEntitiesIsCancelled(t *testing.T) {
	// setup
	repository := GivenPersonRepository(t, newFakeDriver(3), docstore.WithPrefetch(10))

	// arrange
	stream, err := repository.Query(context.Background(), criteria.All[fixtures.Person]())
	require.NoError(t, err)
	require.True(t, stream.Next())

	select {
	case <-stream.Done():
	case <-time.After(time.Second):
		t.Fatal("producer did not finish")
	}

	// act
	stream.Cancel()

	// assert
	assert.False(t, stream.Next())
	assert.ErrorIs(t, stream.Err(), docstore.ErrCancelled)
}

func Test_Stream_CancelAfterLastEntityKeepsSuccess(t *testing.T) {
	// setup
	repository := GivenPersonRepository(t, newFakeDriver(2), docstore.WithPrefetch(10))

	// arrange
	stream, err := repository.Query(context.Background(), criteria.All[fixtures.Person]())
	require.NoError(t, err)
	require.True(t, stream.Next())
	require.True(t, stream.Next())
	<-stream.Done()

	// act
	stream.Cancel()

	// assert
	assert.NoError(t, stream.Err())
}

func Test_Stream_CancelFromAnotherGoroutine(t *testing.T) {
	// setup
	driver := newFakeDriver(100)
	repository := GivenPersonRepository(t, driver)

	// arrange
	stream, err := repository.Query(context.Background(), criteria.All[fixtures.Person]())
	require.NoError(t, err)
	require.True(t, stream.Next())

	// act
	cancelled := make(chan struct{})
	go func() {
		stream.Cancel()
		close(cancelled)
	}()
	<-cancelled

	// assert
	assert.False(t, stream.Next())
	assert.True(t, driver.lastCursor().closed.Load())
	assert.ErrorIs(t, stream.Err(), docstore.ErrCancelled)
}

func Test_Stream_CollectDeliversInStoreOrder(t *testing.T) {
	// setup
	repository := GivenPersonRepository(t, newFakeDriver(5))

	// arrange
	stream, err := repository.Query(context.Background(), criteria.All[fixtures.Person]())
	require.NoError(t, err)

	// act
	persons, err := stream.Collect()

	// assert
	require.NoError(t, err)
	require.Len(t, persons, 5)
	for i, person := range persons {
		assert.Equal(t, int64(i), person.Age)
	}

	select {
	case <-stream.Done():
	default:
		t.Fatal("stream must be done after it was drained")
	}
}

func Test_Stream_ExhaustedStreamHasNoError(t *testing.T) {
	// setup
	repository := GivenPersonRepository(t, newFakeDriver(0))

	// arrange
	stream, err := repository.Query(context.Background(), criteria.All[fixtures.Person]())
	require.NoError(t, err)

	// act
	hasNext := stream.Next()

	// assert
	assert.False(t, hasNext)
	assert.NoError(t, stream.Err())
}

func Test_Stream_ProducerWaitsForConsumer(t *testing.T) {
	// setup
	driver := newFakeDriver(100)
	repository := GivenPersonRepository(t, driver)

	// arrange
	stream, err := repository.Query(context.Background(), criteria.All[fixtures.Person]())
	require.NoError(t, err)
	defer stream.Cancel()

	// act
	require.True(t, stream.Next())
	time.Sleep(50 * time.Millisecond)

	// assert
	assert.LessOrEqual(t, driver.lastCursor().reads.Load(), int32(2))
}

func Test_Stream_PrefetchBoundsReadAhead(t *testing.T) {
	// setup
	driver := newFakeDriver(100)
	repository := GivenPersonRepository(t, driver, docstore.WithPrefetch(10))

	// arrange
	stream, err := repository.Query(context.Background(), criteria.All[fixtures.Person]())
	require.NoError(t, err)
	defer stream.Cancel()

	// act
	require.True(t, stream.Next())
	time.Sleep(50 * time.Millisecond)

	// assert
	assert.LessOrEqual(t, driver.lastCursor().reads.Load(), int32(12))
}

func Test_Stream_AllCancelsOnEarlyBreak(t *testing.T) {
	// setup
	driver := newFakeDriver(100)
	repository := GivenPersonRepository(t, driver)

	// arrange
	stream, err := repository.Query(context.Background(), criteria.All[fixtures.Person]())
	require.NoError(t, err)

	// act
	var names []string
	for person, iterErr := range stream.All() {
		require.NoError(t, iterErr)
		names = append(names, person.Name)
		if len(names) == 2 {
			break
		}
	}

	// assert
	assert.Equal(t, []string{"person 0", "person 1"}, names)
	assert.True(t, driver.lastCursor().closed.Load())
	assert.ErrorIs(t, stream.Err(), docstore.ErrCancelled)
}

func Test_Stream_AllYieldsFailureLast(t *testing.T) {
	// setup
	driver := newFakeDriver(1)
	driver.documents = append(driver.documents, []byte(`not json`))
	repository := GivenPersonRepository(t, driver)

	// arrange
	stream, err := repository.Query(context.Background(), criteria.All[fixtures.Person]())
	require.NoError(t, err)

	// act
	var errs []error
	count := 0
	for _, iterErr := range stream.All() {
		if iterErr != nil {
			errs = append(errs, iterErr)
			continue
		}
		count++
	}

	// assert
	assert.Equal(t, 1, count)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], docstore.ErrDriver)
	assert.ErrorIs(t, errs[0], docstore.ErrDecodingDocumentFailed)
}

func Test_Stream_ContextCancellationEndsStream(t *testing.T) {
	// setup
	driver := newFakeDriver(100)
	repository := GivenPersonRepository(t, driver)

	// arrange
	ctx, cancel := context.WithCancel(context.Background())
	stream, err := repository.Query(ctx, criteria.All[fixtures.Person]())
	require.NoError(t, err)
	require.True(t, stream.Next())

	// act
	cancel()

	// assert
	assert.False(t, stream.Next())
	assert.ErrorIs(t, stream.Err(), docstore.ErrCancelled)
	assert.True(t, driver.lastCursor().closed.Load())
}

func Test_Stream_DeadlineEndsStreamWithTimeout(t *testing.T) {
	// setup
	driver := newFakeDriver(0)
	driver.waitOnCtx = true
	repository := GivenPersonRepository(t, driver)

	// arrange
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	stream, err := repository.Query(ctx, criteria.All[fixtures.Person]())
	require.NoError(t, err)

	// act
	hasNext := stream.Next()

	// assert
	assert.False(t, hasNext)
	assert.ErrorIs(t, stream.Err(), docstore.ErrTimeout)
	assert.NotErrorIs(t, stream.Err(), docstore.ErrCancelled)
}

func Test_Stream_DriverFailureIsDriverError(t *testing.T) {
	// setup
	driver := newFakeDriver(0)
	driver.findErr = assert.AnError
	repository := GivenPersonRepository(t, driver)

	// arrange
	stream, err := repository.Query(context.Background(), criteria.All[fixtures.Person]())
	require.NoError(t, err)

	// act
	hasNext := stream.Next()

	// assert
	assert.False(t, hasNext)
	assert.ErrorIs(t, stream.Err(), docstore.ErrDriver)
	assert.ErrorIs(t, stream.Err(), assert.AnError)

	var driverErr *docstore.DriverError
	require.ErrorAs(t, stream.Err(), &driverErr)
	assert.Equal(t, "find", driverErr.Op)
}
