// Package spawner creates the initial game pods when a new game starts.
package spawner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/wait"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"golang.org/x/time/rate"

	"github.com/podsweeper/engine/pkg/board"
	"github.com/podsweeper/engine/pkg/geometry"
)

const (
	// CellImage is the default container image for game cell pods.
	// These pods just sit there waiting to be deleted by the player.
	CellImage = "busybox:latest"

	// LabelApp is the app label for game pods.
	LabelApp = "app.kubernetes.io/name"

	// LabelComponent is the component label.
	LabelComponent = "app.kubernetes.io/component"

	// LabelCoordX is the X coordinate label.
	LabelCoordX = "podsweeper.io/x"

	// LabelCoordY is the Y coordinate label.
	LabelCoordY = "podsweeper.io/y"

	// LabelGameID is the game session identifier.
	LabelGameID = "podsweeper.io/game-id"

	// DefaultBatchSize is the default number of pods per batch. Pods within
	// a batch are created one after another; batches group progress logging.
	DefaultBatchSize = 10

	// DefaultRetryAttempts is the default number of retry attempts for pod creation.
	DefaultRetryAttempts = 3

	// DefaultRetryRate is the default steady-state rate of pod-creation
	// retries, in retries per second.
	DefaultRetryRate = 2.0

	// DefaultRetryBurst is the default retry token bucket burst size.
	DefaultRetryBurst = 3
)

// GridSpawner creates game pods for a new game.
type GridSpawner struct {
	client        client.Client
	namespace     string
	cellImage     string
	batchSize     int
	retryAttempts int
	retryLimiter  *rate.Limiter
}

// GridSpawnerConfig holds configuration for the GridSpawner.
type GridSpawnerConfig struct {
	Namespace     string
	CellImage     string
	BatchSize     int
	RetryAttempts int

	// RetryLimiter paces retried pod-creation calls; defaults to
	// DefaultRetryRate/DefaultRetryBurst when nil.
	RetryLimiter *rate.Limiter
}

// SpawnResult contains the result of a spawn operation.
type SpawnResult struct {
	TotalPods    int
	CreatedPods  int
	FailedPods   int
	FailedCoords []geometry.Location
	Duration     time.Duration
}

// NewGridSpawner creates a new GridSpawner.
func NewGridSpawner(c client.Client, config GridSpawnerConfig) *GridSpawner {
	if config.CellImage == "" {
		config.CellImage = CellImage
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultBatchSize
	}
	if config.RetryAttempts <= 0 {
		config.RetryAttempts = DefaultRetryAttempts
	}
	if config.Namespace == "" {
		config.Namespace = board.DefaultNamespace
	}
	if config.RetryLimiter == nil {
		config.RetryLimiter = rate.NewLimiter(rate.Limit(DefaultRetryRate), DefaultRetryBurst)
	}

	return &GridSpawner{
		client:        c,
		namespace:     config.Namespace,
		cellImage:     config.CellImage,
		batchSize:     config.BatchSize,
		retryAttempts: config.RetryAttempts,
		retryLimiter:  config.RetryLimiter,
	}
}

// SpawnGrid creates one cell pod per location of mf. It creates pods in
// batches to avoid overwhelming the API server. Every pod in the batch
// carries the same game-session ID, a fresh uuid minted for this spawn.
func (s *GridSpawner) SpawnGrid(ctx context.Context, mf *board.Minefield) (*SpawnResult, error) {
	logger := log.FromContext(ctx)
	start := time.Now()

	result := &SpawnResult{
		TotalPods: mf.Width() * mf.Height(),
	}

	locs := make([]geometry.Location, 0, result.TotalPods)
	for _, lv := range mf.LocIter() {
		locs = append(locs, lv.Loc)
	}

	gameID := uuid.NewString()

	for i := 0; i < len(locs); i += s.batchSize {
		end := i + s.batchSize
		if end > len(locs) {
			end = len(locs)
		}
		batch := locs[i:end]

		logger.Info("spawning batch", "start", i, "end", end, "total", len(locs))

		for _, loc := range batch {
			if err := s.createPodWithRetry(ctx, loc, gameID); err != nil {
				logger.Error(err, "failed to create pod", "loc", loc)
				result.FailedPods++
				result.FailedCoords = append(result.FailedCoords, loc)
			} else {
				result.CreatedPods++
			}
		}
	}

	result.Duration = time.Since(start)

	logger.Info("grid spawn complete",
		"gameID", gameID,
		"created", result.CreatedPods,
		"failed", result.FailedPods,
		"duration", result.Duration)

	if result.FailedPods > 0 {
		return result, fmt.Errorf("failed to create %d pods", result.FailedPods)
	}

	return result, nil
}

// createPodWithRetry creates a single pod with retry logic, pacing retries
// through retryLimiter instead of a fixed sleep so a burst of failures
// doesn't hammer the API server.
func (s *GridSpawner) createPodWithRetry(ctx context.Context, loc geometry.Location, gameID string) error {
	var lastErr error

	for attempt := 0; attempt < s.retryAttempts; attempt++ {
		if attempt > 0 {
			if err := s.retryLimiter.Wait(ctx); err != nil {
				return err
			}
		}

		pod := s.buildCellPod(loc, gameID)
		if err := s.client.Create(ctx, pod); err != nil {
			if errors.IsAlreadyExists(err) {
				// Pod already exists, that's fine
				return nil
			}
			lastErr = err
			continue
		}
		return nil
	}

	return fmt.Errorf("after %d attempts: %w", s.retryAttempts, lastErr)
}

// buildCellPod creates the pod spec for a game cell.
func (s *GridSpawner) buildCellPod(loc geometry.Location, gameID string) *corev1.Pod {
	x, y, _ := loc.XY()
	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      cellPodName(x, y),
			Namespace: s.namespace,
			Labels: map[string]string{
				LabelApp:       "podsweeper",
				LabelComponent: "cell",
				LabelCoordX:    fmt.Sprintf("%d", x),
				LabelCoordY:    fmt.Sprintf("%d", y),
				LabelGameID:    gameID,
			},
		},
		Spec: corev1.PodSpec{
			RestartPolicy: corev1.RestartPolicyNever,
			Containers: []corev1.Container{
				{
					Name:  "cell",
					Image: s.cellImage,
					// The pod just sleeps - it's waiting to be deleted
					Command: []string{"sh", "-c", "echo 'PodSweeper cell ready' && sleep infinity"},
				},
			},
		},
	}
}

func cellPodName(x, y int) string { return fmt.Sprintf("pod-%d-%d", x, y) }

// CleanupGrid removes all game pods from the namespace.
func (s *GridSpawner) CleanupGrid(ctx context.Context) error {
	logger := log.FromContext(ctx)

	podList := &corev1.PodList{}
	if err := s.client.List(ctx, podList,
		client.InNamespace(s.namespace),
		client.MatchingLabels{LabelApp: "podsweeper"},
	); err != nil {
		return fmt.Errorf("failed to list pods: %w", err)
	}

	logger.Info("cleaning up game pods", "count", len(podList.Items))

	var lastErr error
	deleted := 0

	for i := range podList.Items {
		pod := &podList.Items[i]
		if err := s.client.Delete(ctx, pod); err != nil {
			if !errors.IsNotFound(err) {
				logger.Error(err, "failed to delete pod", "name", pod.Name)
				lastErr = err
			}
		} else {
			deleted++
		}
	}

	logger.Info("cleanup complete", "deleted", deleted)

	return lastErr
}

// WaitForPodsReady waits for all game pods to be in Running phase.
func (s *GridSpawner) WaitForPodsReady(ctx context.Context, expectedCount int, timeout time.Duration) error {
	logger := log.FromContext(ctx)

	return wait.PollUntilContextTimeout(ctx, time.Second, timeout, true, func(ctx context.Context) (bool, error) {
		podList := &corev1.PodList{}
		if err := s.client.List(ctx, podList,
			client.InNamespace(s.namespace),
			client.MatchingLabels{
				LabelApp:       "podsweeper",
				LabelComponent: "cell",
			},
		); err != nil {
			return false, err
		}

		runningCount := 0
		for _, pod := range podList.Items {
			if pod.Status.Phase == corev1.PodRunning {
				runningCount++
			}
		}

		logger.V(1).Info("waiting for pods", "running", runningCount, "expected", expectedCount)

		return runningCount >= expectedCount, nil
	})
}

// Namespace returns the namespace where pods are spawned.
func (s *GridSpawner) Namespace() string {
	return s.namespace
}
