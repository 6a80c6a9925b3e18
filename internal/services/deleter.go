package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"foliosh/folio-api/internal/repositories"
)

// DeletionWorker removes everything a user owns (stored file, resume row,
// username row) off the request path. The webhook handler acknowledges
// receipt immediately and hands the user id to this queue; each job gets one
// retry before the failure is logged and dropped. Deletion is idempotent end
// to end, so at-least-once delivery of user-deleted events is safe.
type DeletionWorker interface {
	Start(ctx context.Context)
	Stop()
	Enqueue(userID string)
	DeleteUserData(ctx context.Context, userID string) error
}

type deletionWorker struct {
	resumeRepo   repositories.ResumeRepository
	usernameRepo repositories.UsernameRepository
	storage      StorageService
	jobQueue     chan string
	retries      int
	wg           sync.WaitGroup
	stopChan     chan struct{}
	stopOnce     sync.Once
}

func NewDeletionWorker(
	resumeRepo repositories.ResumeRepository,
	usernameRepo repositories.UsernameRepository,
	storage StorageService,
	queueSize int,
	retries int,
) DeletionWorker {
	if queueSize <= 0 {
		queueSize = 100
	}
	return &deletionWorker{
		resumeRepo:   resumeRepo,
		usernameRepo: usernameRepo,
		storage:      storage,
		jobQueue:     make(chan string, queueSize),
		retries:      retries,
		stopChan:     make(chan struct{}),
	}
}

// Start implements DeletionWorker.
func (w *deletionWorker) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.processJobs(ctx)
}

// Stop implements DeletionWorker. Blocks until the in-flight job finishes.
func (w *deletionWorker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopChan)
	})
	w.wg.Wait()
}

// Enqueue implements DeletionWorker.
func (w *deletionWorker) Enqueue(userID string) {
	select {
	case w.jobQueue <- userID:
		slog.Info("user deletion enqueued", "userId", userID)
	case <-w.stopChan:
		slog.Warn("worker stopped, deletion dropped", "userId", userID)
	}
}

func (w *deletionWorker) processJobs(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			// Drain what was already accepted before shutting down.
			for {
				select {
				case userID := <-w.jobQueue:
					w.runJob(ctx, userID)
				default:
					return
				}
			}
		case userID := <-w.jobQueue:
			w.runJob(ctx, userID)
		}
	}
}

func (w *deletionWorker) runJob(ctx context.Context, userID string) {
	var err error
	for attempt := 0; attempt <= w.retries; attempt++ {
		if err = w.DeleteUserData(ctx, userID); err == nil {
			return
		}
		slog.Warn("user deletion attempt failed",
			"userId", userID, "attempt", attempt+1, "error", err)
	}
	slog.Error("user deletion failed permanently", "userId", userID, "error", err)
}

// DeleteUserData implements DeletionWorker. Also callable synchronously for
// the authenticated self-delete endpoint. Safe to run twice.
func (w *deletionWorker) DeleteUserData(ctx context.Context, userID string) error {
	record, err := w.resumeRepo.FindByUserID(userID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return err
	}

	if record != nil && record.FileURL != nil {
		if key, ok := w.storage.ObjectKeyFromURL(*record.FileURL); ok {
			if err := w.storage.Delete(ctx, key); err != nil {
				// Orphaned blobs are preferable to blocking account deletion.
				slog.Warn("failed to delete stored file", "userId", userID, "error", err)
			}
		}
	}

	if err := w.resumeRepo.DeleteByUserID(userID); err != nil {
		return err
	}
	if err := w.usernameRepo.DeleteByUserID(userID); err != nil {
		return err
	}

	slog.Info("user data deleted", "userId", userID)
	return nil
}
