package future

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/smnsjas/go-uaproxy/ua"
)

func TestFuture_CompleteOnce(t *testing.T) {
	f := New[int]()
	if f.IsDone() {
		t.Fatal("new future should be pending")
	}

	if !f.Complete(1) {
		t.Error("first Complete should succeed")
	}
	if f.Complete(2) {
		t.Error("second Complete should be ignored")
	}
	if f.Fail(errors.New("late")) {
		t.Error("Fail after Complete should be ignored")
	}

	v, err := f.Wait()
	if err != nil || v != 1 {
		t.Errorf("Wait() = %d, %v; want 1, nil", v, err)
	}
}

func TestFuture_ConcurrentWaiters(t *testing.T) {
	f := New[string]()

	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, _ := f.Wait()
			results[i] = v
		}(i)
	}

	f.Complete("ready")
	wg.Wait()

	for i, r := range results {
		if r != "ready" {
			t.Errorf("waiter %d got %q", i, r)
		}
	}
}

func TestFuture_Await(t *testing.T) {
	f := New[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := f.Await(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}
	if f.IsDone() {
		t.Error("Await timeout must not complete the future")
	}
}

func TestGo_Panic(t *testing.T) {
	f := Go(func() (int, error) {
		panic("boom")
	})

	_, err := f.Wait()
	if !errors.Is(err, ErrPanic) {
		t.Errorf("expected ErrPanic, got %v", err)
	}
}

func TestThen(t *testing.T) {
	tests := []struct {
		name    string
		src     *Future[int]
		fn      func(int) (string, error)
		want    string
		wantErr bool
	}{
		{
			name: "Success",
			src:  Completed(21),
			fn:   func(v int) (string, error) { return fmt.Sprint(v * 2), nil },
			want: "42",
		},
		{
			name:    "SourceFails",
			src:     Failed[int](errors.New("read failed")),
			fn:      func(int) (string, error) { t.Error("fn must not run"); return "", nil },
			wantErr: true,
		},
		{
			name:    "ContinuationFails",
			src:     Completed(1),
			fn:      func(int) (string, error) { return "", errors.New("decode failed") },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Then(tt.src, tt.fn).Wait()
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompose(t *testing.T) {
	f := Compose(Completed(2), func(v int) *Future[int] {
		return Go(func() (int, error) { return v + 1, nil })
	})

	v, err := f.Wait()
	if err != nil || v != 3 {
		t.Errorf("Compose = %d, %v; want 3, nil", v, err)
	}

	f = Compose(Completed(2), func(int) *Future[int] { return nil })
	if _, err := f.Wait(); err == nil {
		t.Error("nil continuation future should fail")
	}
}

func TestBlock_TranslatesErrors(t *testing.T) {
	status := ua.NewStatusError(ua.StatusBadNotReadable, "")
	plain := errors.New("connection reset")

	tests := []struct {
		name     string
		err      error
		wantCode ua.StatusCode
	}{
		{"StatusFault", fmt.Errorf("read: %w", status), ua.StatusBadNotReadable},
		{"ExecutionFault", plain, ua.StatusBadUnexpectedError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Block(context.Background(), Failed[int](tt.err))
			var se *ua.StatusError
			if !errors.As(err, &se) {
				t.Fatalf("expected *ua.StatusError, got %T", err)
			}
			if se.Code != tt.wantCode {
				t.Errorf("Code = %v, want %v", se.Code, tt.wantCode)
			}
		})
	}

	_, err := Block(context.Background(), Failed[int](plain))
	if !errors.Is(err, plain) {
		t.Error("execution fault cause should be chained")
	}
}

func TestBlock_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Block(ctx, New[int]())
	if ua.Code(err) != ua.StatusBadUnexpectedError {
		t.Errorf("cancellation should map to Bad_UnexpectedError, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Error("context.Canceled should be chained")
	}
}

func TestBlock_Success(t *testing.T) {
	v, err := Block(context.Background(), Completed("ok"))
	if err != nil {
		t.Fatalf("Block failed: %v", err)
	}
	if v != "ok" {
		t.Errorf("got %q", v)
	}
}
