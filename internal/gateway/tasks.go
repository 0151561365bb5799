package gateway

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/khrees2412/cvbuilder/pkg/models"
)

// Runner runs gateway calls as cancellable tasks. At most one task is in
// flight per key: submitting a new one cancels the previous task.
type Runner struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	inflight map[string]inflightTask
	wg       sync.WaitGroup
}

type inflightTask struct {
	token  string
	cancel context.CancelFunc
}

func NewRunner(parent context.Context) *Runner {
	ctx, cancel := context.WithCancel(parent)
	return &Runner{ctx: ctx, cancel: cancel, inflight: make(map[string]inflightTask)}
}

// Close cancels every in-flight task and waits for them to return
func (r *Runner) Close() {
	r.cancel()
	r.wg.Wait()
}

// Task is the handle of one submitted call
type Task[T any] struct {
	token  string
	key    string
	done   chan struct{}
	cancel context.CancelFunc
	value  T
	err    error
}

// Token is unique per submission
func (t *Task[T]) Token() string { return t.token }

func (t *Task[T]) Key() string { return t.key }

// Done is closed once the task has finished
func (t *Task[T]) Done() <-chan struct{} { return t.done }

func (t *Task[T]) Cancel() { t.cancel() }

// Wait blocks until the task finishes or ctx ends. A cancelled or
// superseded task reports context.Canceled and a zero value.
func (t *Task[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-t.done:
		return t.value, t.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Submit runs fn in its own goroutine under key. fn receives a context
// carrying the values of ctx that is cancelled when the task is
// cancelled, superseded, or the runner closes.
func Submit[T any](ctx context.Context, r *Runner, key string, fn func(context.Context) (T, error)) *Task[T] {
	taskCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(r.ctx, cancel)

	t := &Task[T]{
		token:  uuid.NewString(),
		key:    key,
		done:   make(chan struct{}),
		cancel: cancel,
	}

	r.mu.Lock()
	if prev, ok := r.inflight[key]; ok {
		prev.cancel()
	}
	r.inflight[key] = inflightTask{token: t.token, cancel: cancel}
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		defer close(t.done)
		defer stop()
		defer cancel()

		value, err := fn(taskCtx)
		if ctxErr := taskCtx.Err(); ctxErr != nil {
			// results of a cancelled task are never delivered
			var zero T
			value, err = zero, ctxErr
		}
		t.value, t.err = value, err

		r.mu.Lock()
		if cur, ok := r.inflight[key]; ok && cur.token == t.token {
			delete(r.inflight, key)
		}
		r.mu.Unlock()
	}()

	return t
}

// SaveKey is the task key of a save; unsaved documents share "save:new"
func SaveKey(doc models.CVDocument) string {
	if doc.ID == "" {
		return "save:new"
	}
	return "save:" + doc.ID
}

func (g *Gateway) SaveAsync(ctx context.Context, r *Runner, title string, doc models.CVDocument) *Task[models.SavedCV] {
	return Submit(ctx, r, SaveKey(doc), func(ctx context.Context) (models.SavedCV, error) {
		return g.Save(ctx, title, doc)
	})
}

func (g *Gateway) LoadAsync(ctx context.Context, r *Runner, id string) *Task[models.SavedCV] {
	return Submit(ctx, r, "load:"+id, func(ctx context.Context) (models.SavedCV, error) {
		return g.LoadByID(ctx, id)
	})
}

func (g *Gateway) DeleteAsync(ctx context.Context, r *Runner, id string) *Task[struct{}] {
	return Submit(ctx, r, "delete:"+id, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, g.Delete(ctx, id)
	})
}

// ListAsync lists under a single key, so a newer listing replaces an older one
func (g *Gateway) ListAsync(ctx context.Context, r *Runner) *Task[[]models.SavedCV] {
	return Submit(ctx, r, "list", func(ctx context.Context) ([]models.SavedCV, error) {
		return g.List(ctx)
	})
}
