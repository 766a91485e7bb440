package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stubSequence struct {
	next int64
	err  error
}

func (s *stubSequence) NextSequence(ctx context.Context) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.next++
	return s.next, nil
}

func TestDisputeNumberGenerator_Next(t *testing.T) {
	gen := NewDisputeNumberGenerator(&stubSequence{next: 41})
	at := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	gen.now = func() time.Time { return at }

	number := gen.Next(context.Background())

	assert.Equal(t, fmt.Sprintf("DSP-%d-000042", at.UnixMilli()), number)
}

func TestDisputeNumberGenerator_SequenceWrapsAtMillion(t *testing.T) {
	gen := NewDisputeNumberGenerator(&stubSequence{next: 1000041})
	at := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	gen.now = func() time.Time { return at }

	number := gen.Next(context.Background())

	assert.Equal(t, fmt.Sprintf("DSP-%d-000042", at.UnixMilli()), number)
}

func TestDisputeNumberGenerator_FallbackOnSequenceError(t *testing.T) {
	gen := NewDisputeNumberGenerator(&stubSequence{err: errors.New("база недоступна")})
	at := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	gen.now = func() time.Time { return at }

	first := gen.Next(context.Background())
	second := gen.Next(context.Background())

	prefix := fmt.Sprintf("DSP-%d-", at.UnixMilli())
	assert.Len(t, first, len(prefix)+6)
	assert.Contains(t, first, prefix)
	assert.NotEqual(t, first, second)
}

func TestDisputeNumberGenerator_FallbackConcurrentUnique(t *testing.T) {
	gen := NewDisputeNumberGenerator(&stubSequence{err: errors.New("база недоступна")})

	const workers = 1000
	numbers := make(chan string, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			numbers <- gen.Next(context.Background())
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]struct{}, workers)
	for number := range numbers {
		seen[number] = struct{}{}
	}
	assert.Len(t, seen, workers)
}

func TestDisputeNumberGenerator_SequentialNumbersDiffer(t *testing.T) {
	gen := NewDisputeNumberGenerator(&stubSequence{})

	first := gen.Next(context.Background())
	second := gen.Next(context.Background())

	assert.NotEqual(t, first, second)
}
